// Package qap converts rank-1 constraint systems into quadratic arithmetic
// programs. The generator side evaluates the QAP queries at a secret point
// τ; the prover side reduces a witness to the quotient polynomial H.
//
// Query vectors have numVariables+4 slots: slots 0, 1, 2 are blinding slots
// carrying Z(τ) in the A, B and C queries respectively, slot 3 is the
// constant-one wire, and slot 3+i is variable i.
package qap

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/devourillusion/snarklib/r1cs"
)

// number of extra query slots in front of the constant wire
const blindingSlots = 3

// Instance carries the FFT domain and the dimensions of the system being
// converted. It holds no secret state.
type Instance struct {
	Domain *fft.Domain

	NbVariables   int
	NbInputs      int
	NbConstraints int
}

// NewInstance validates the system and sizes the FFT domain (next power of
// two at least the number of constraints)
func NewInstance(cs r1cs.ConstraintSource) (*Instance, error) {
	if err := r1cs.Validate(cs); err != nil {
		return nil, err
	}
	return &Instance{
		Domain:        fft.NewDomain(uint64(cs.NumConstraints())),
		NbVariables:   cs.NumVariables(),
		NbInputs:      cs.NumInputs(),
		NbConstraints: cs.NumConstraints(),
	}, nil
}

// Degree returns the QAP degree, the cardinality of the FFT domain
func (q *Instance) Degree() uint64 {
	return q.Domain.Cardinality
}

// QuerySize returns the length of the A, B, C and K query vectors
func (q *Instance) QuerySize() int {
	return q.NbVariables + blindingSlots + 1
}

// VanishingValue evaluates the domain's vanishing polynomial τ^n - 1
func (q *Instance) VanishingValue(tau fr.Element) fr.Element {
	var z, one fr.Element
	one.SetOne()
	z.Exp(tau, big.NewInt(int64(q.Degree()))).Sub(&z, &one)
	return z
}

// EvaluateABC evaluates the variable polynomials of the three queries at τ:
// At[3+i] = Σ_k a_{k,i}·L_k(τ), and likewise for B and C. The blinding
// slots receive Z(τ) in their owning query. The constraint source is
// streamed once; the Lagrange values L_k(τ) are produced by the recurrence
// L_{k+1} = ω·L_k·(τ-ω^k)/(τ-ω^{k+1}).
func (q *Instance) EvaluateABC(cs r1cs.ConstraintSource, tau fr.Element) (At, Bt, Ct []fr.Element, err error) {
	size := q.QuerySize()
	At = make([]fr.Element, size)
	Bt = make([]fr.Element, size)
	Ct = make([]fr.Element, size)

	zt := q.VanishingValue(tau)
	At[0], Bt[1], Ct[2] = zt, zt, zt

	var one fr.Element
	one.SetOne()

	// L_0(τ) = (τ^n - 1) / (n·(τ - 1))
	var lk, tmp fr.Element
	lk.Set(&zt)
	tmp.Sub(&tau, &one)
	lk.Div(&lk, &tmp).Mul(&lk, &q.Domain.CardinalityInv)

	w := q.Domain.Generator
	var wk fr.Element
	wk.SetOne()

	accumulate := func(lc r1cs.LinearCombination, dst []fr.Element) {
		var t fr.Element
		for _, term := range lc {
			t.Mul(&lk, &term.Coeff)
			slot := blindingSlots + term.Variable
			dst[slot].Add(&dst[slot], &t)
		}
	}

	err = cs.ForEachConstraint(func(c *r1cs.Constraint) error {
		accumulate(c.A, At)
		accumulate(c.B, Bt)
		accumulate(c.C, Ct)

		// L_{k+1} = ω·L_k·(τ-ω^k)/(τ-ω^{k+1})
		lk.Mul(&lk, &w)
		tmp.Sub(&tau, &wk)
		lk.Mul(&lk, &tmp)
		wk.Mul(&wk, &w)
		tmp.Sub(&tau, &wk)
		lk.Div(&lk, &tmp)
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return At, Bt, Ct, nil
}

// EvaluateH returns the powers τ^0 … τ^degree backing the H query
func (q *Instance) EvaluateH(tau fr.Element) []fr.Element {
	Ht := make([]fr.Element, q.Degree()+1)
	Ht[0].SetOne()
	for j := 1; j < len(Ht); j++ {
		Ht[j].Mul(&Ht[j-1], &tau)
	}
	return Ht
}

// KCoefficients computes the same-coefficient query
// Kt[i] = β·(rA·At[i] + rB·Bt[i] + rC·Ct[i]) over all slots, blinding slots
// included. Must run before FoldIC zeroes the input slots of At.
func KCoefficients(At, Bt, Ct []fr.Element, rA, rB, beta fr.Element) []fr.Element {
	var rC fr.Element
	rC.Mul(&rA, &rB)

	Kt := make([]fr.Element, len(At))
	var t fr.Element
	for i := range Kt {
		Kt[i].Mul(&rA, &At[i])
		t.Mul(&rB, &Bt[i])
		Kt[i].Add(&Kt[i], &t)
		t.Mul(&rC, &Ct[i])
		Kt[i].Add(&Kt[i], &t).Mul(&Kt[i], &beta)
	}
	return Kt
}

// FoldIC moves the public-input slots of the A query into the
// input-consistency coefficients: base = rA·At[3] (constant wire),
// coeffs[i] = rA·At[4+i]. The folded slots of At are zeroed so they vanish
// from the encoded A query.
func FoldIC(At []fr.Element, nbInputs int, rA fr.Element) (base fr.Element, coeffs []fr.Element) {
	base.Mul(&rA, &At[blindingSlots])
	coeffs = make([]fr.Element, nbInputs)
	for i := 0; i < nbInputs; i++ {
		coeffs[i].Mul(&rA, &At[blindingSlots+1+i])
	}
	for i := 0; i <= nbInputs; i++ {
		At[blindingSlots+i].SetZero()
	}
	return base, coeffs
}
