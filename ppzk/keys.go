// Package ppzk implements a preprocessing zk-SNARK for rank-1 constraint
// systems over bn254: keypair generation from a QAP, proving by
// multi-exponentiation against the proving key, and verification by five
// pairing checks against the verification key.
package ppzk

import (
	"sort"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// SparseVectorG1 stores knowledge-commitment pairs (P, α·P) in G1 keyed by
// query index. Indices are sorted; absent indices read as the identity.
type SparseVectorG1 struct {
	Indices []uint64
	P       []curve.G1Affine
	AlphaP  []curve.G1Affine
	Size    uint64
}

// Get returns the pair at global index i, identity pairs for absent keys
func (v *SparseVectorG1) Get(i uint64) (p, alphaP curve.G1Affine) {
	k := sort.Search(len(v.Indices), func(j int) bool { return v.Indices[j] >= i })
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.P[k], v.AlphaP[k]
	}
	return p, alphaP
}

// Equal compares two sparse vectors entry-wise
func (v *SparseVectorG1) Equal(o *SparseVectorG1) bool {
	if v.Size != o.Size || len(v.Indices) != len(o.Indices) {
		return false
	}
	for i := range v.Indices {
		if v.Indices[i] != o.Indices[i] ||
			!v.P[i].Equal(&o.P[i]) ||
			!v.AlphaP[i].Equal(&o.AlphaP[i]) {
			return false
		}
	}
	return true
}

// SparseVectorG2 stores knowledge-commitment pairs whose base lives in G2
// and whose knowledge component lives in G1
type SparseVectorG2 struct {
	Indices []uint64
	P       []curve.G2Affine
	AlphaP  []curve.G1Affine
	Size    uint64
}

// Get returns the pair at global index i, identity pairs for absent keys
func (v *SparseVectorG2) Get(i uint64) (p curve.G2Affine, alphaP curve.G1Affine) {
	k := sort.Search(len(v.Indices), func(j int) bool { return v.Indices[j] >= i })
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.P[k], v.AlphaP[k]
	}
	return p, alphaP
}

// Equal compares two sparse vectors entry-wise
func (v *SparseVectorG2) Equal(o *SparseVectorG2) bool {
	if v.Size != o.Size || len(v.Indices) != len(o.Indices) {
		return false
	}
	for i := range v.Indices {
		if v.Indices[i] != o.Indices[i] ||
			!v.P[i].Equal(&o.P[i]) ||
			!v.AlphaP[i].Equal(&o.AlphaP[i]) {
			return false
		}
	}
	return true
}

// ProvingKey holds the five encoded query vectors
type ProvingKey struct {
	A SparseVectorG1 // (rA·At[i], rA·αA·At[i]) in G1×G1
	B SparseVectorG2 // (rB·Bt[i], rB·αB·Bt[i]) in G2×G1
	C SparseVectorG1 // (rC·Ct[i], rC·αC·Ct[i]) in G1×G1
	H []curve.G1Affine
	K []curve.G1Affine
}

// Equal compares two proving keys
func (pk *ProvingKey) Equal(o *ProvingKey) bool {
	if !pk.A.Equal(&o.A) || !pk.B.Equal(&o.B) || !pk.C.Equal(&o.C) {
		return false
	}
	if len(pk.H) != len(o.H) || len(pk.K) != len(o.K) {
		return false
	}
	for i := range pk.H {
		if !pk.H[i].Equal(&o.H[i]) {
			return false
		}
	}
	for i := range pk.K {
		if !pk.K[i].Equal(&o.K[i]) {
			return false
		}
	}
	return true
}

// ICQuery encodes the contribution of the public input to the A query:
// base + Σ input[i]·encoded[i] enters pairing check 4 next to the proof's A.
type ICQuery struct {
	Base    curve.G1Affine
	Encoded []curve.G1Affine
}

// InputSize returns how many input elements are still to be accumulated
func (ic *ICQuery) InputSize() int {
	return len(ic.Encoded)
}

// Accumulate folds input values into the base. A shorter input leaves the
// unconsumed encoded terms in the returned query for later accumulation; a
// longer input is truncated.
func (ic *ICQuery) Accumulate(input []fr.Element) (ICQuery, error) {
	n := len(input)
	if n > len(ic.Encoded) {
		n = len(ic.Encoded)
	}

	var acc curve.G1Jac
	acc.FromAffine(&ic.Base)
	if n > 0 {
		var sum curve.G1Jac
		if _, err := sum.MultiExp(ic.Encoded[:n], input[:n], ecc.MultiExpConfig{}); err != nil {
			return ICQuery{}, err
		}
		acc.AddAssign(&sum)
	}

	var res ICQuery
	res.Base.FromJacobian(&acc)
	res.Encoded = append([]curve.G1Affine(nil), ic.Encoded[n:]...)
	return res, nil
}

// Equal compares two IC queries
func (ic *ICQuery) Equal(o *ICQuery) bool {
	if !ic.Base.Equal(&o.Base) || len(ic.Encoded) != len(o.Encoded) {
		return false
	}
	for i := range ic.Encoded {
		if !ic.Encoded[i].Equal(&o.Encoded[i]) {
			return false
		}
	}
	return true
}

// VerifyingKey holds the trapdoor commitments the pairing checks run
// against, plus the input-consistency query
type VerifyingKey struct {
	AlphaAG2    curve.G2Affine
	AlphaBG1    curve.G1Affine
	AlphaCG2    curve.G2Affine
	GammaG2     curve.G2Affine
	GammaBetaG1 curve.G1Affine
	GammaBetaG2 curve.G2Affine
	RCZG2       curve.G2Affine // rC·Z(τ) in G2

	IC ICQuery
}

// Equal compares two verifying keys
func (vk *VerifyingKey) Equal(o *VerifyingKey) bool {
	return vk.AlphaAG2.Equal(&o.AlphaAG2) &&
		vk.AlphaBG1.Equal(&o.AlphaBG1) &&
		vk.AlphaCG2.Equal(&o.AlphaCG2) &&
		vk.GammaG2.Equal(&o.GammaG2) &&
		vk.GammaBetaG1.Equal(&o.GammaBetaG1) &&
		vk.GammaBetaG2.Equal(&o.GammaBetaG2) &&
		vk.RCZG2.Equal(&o.RCZG2) &&
		vk.IC.Equal(&o.IC)
}

// Keypair bundles the proving and verifying keys produced by one Setup
type Keypair struct {
	PK ProvingKey
	VK VerifyingKey
}

// Equal compares two keypairs
func (kp *Keypair) Equal(o *Keypair) bool {
	return kp.PK.Equal(&o.PK) && kp.VK.Equal(&o.VK)
}
