package ppzk

import (
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
)

// G1Commitment is a knowledge commitment (P, α·P) in G1
type G1Commitment struct {
	P      curve.G1Affine
	AlphaP curve.G1Affine
}

// G2Commitment is a knowledge commitment with the base in G2 and the
// knowledge component in G1
type G2Commitment struct {
	P      curve.G2Affine
	AlphaP curve.G1Affine
}

// Proof is the five-component proof (A, B, C, H, K)
type Proof struct {
	A G1Commitment
	B G2Commitment
	C G1Commitment
	H curve.G1Affine
	K curve.G1Affine
}

// WellFormed checks every proof point is on-curve and in the prime-order
// subgroup. The identity is accepted; the pairing checks reject it.
func (p *Proof) WellFormed() bool {
	return wellFormedG1(&p.A.P) && wellFormedG1(&p.A.AlphaP) &&
		wellFormedG2(&p.B.P) && wellFormedG1(&p.B.AlphaP) &&
		wellFormedG1(&p.C.P) && wellFormedG1(&p.C.AlphaP) &&
		wellFormedG1(&p.H) &&
		wellFormedG1(&p.K)
}

// Equal compares two proofs
func (p *Proof) Equal(o *Proof) bool {
	return p.A.P.Equal(&o.A.P) && p.A.AlphaP.Equal(&o.A.AlphaP) &&
		p.B.P.Equal(&o.B.P) && p.B.AlphaP.Equal(&o.B.AlphaP) &&
		p.C.P.Equal(&o.C.P) && p.C.AlphaP.Equal(&o.C.AlphaP) &&
		p.H.Equal(&o.H) &&
		p.K.Equal(&o.K)
}

func wellFormedG1(p *curve.G1Affine) bool {
	if p.IsInfinity() {
		return true
	}
	return p.IsOnCurve() && p.IsInSubGroup()
}

func wellFormedG2(p *curve.G2Affine) bool {
	if p.IsInfinity() {
		return true
	}
	return p.IsOnCurve() && p.IsInSubGroup()
}
