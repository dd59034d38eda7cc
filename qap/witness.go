package qap

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/devourillusion/snarklib/common"
	"github.com/devourillusion/snarklib/r1cs"
)

// WitnessEvaluations streams the constraints once and returns the vectors
// a_k = ⟨A_k, z⟩, b_k = ⟨B_k, z⟩, c_k = ⟨C_k, z⟩ padded with zeros to the
// domain cardinality. These are the evaluations of the witness-combined
// QAP polynomials on the FFT domain.
func (q *Instance) WitnessEvaluations(cs r1cs.ConstraintSource, w r1cs.Witness) (a, b, c []fr.Element, err error) {
	n := int(q.Degree())
	a = make([]fr.Element, n)
	b = make([]fr.Element, n)
	c = make([]fr.Element, n)

	k := 0
	err = cs.ForEachConstraint(func(cons *r1cs.Constraint) error {
		a[k] = w.Eval(cons.A)
		b[k] = w.Eval(cons.B)
		c[k] = w.Eval(cons.C)
		k++
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

// WitnessH computes the coefficients of the blinded quotient polynomial
//
//	aH(X) = (aA·aB - aC)/Z (X) + d1·aB(X) + d2·aA(X) + d1·d2·Z(X) - d3
//
// of degree ≤ n, so the returned vector has n+1 entries matching the H
// query. The quotient is exact iff the witness satisfies the system; it is
// computed pointwise on the shifted coset, where Z is the nonzero constant
// shift^n - 1. The inputs are the domain evaluations from
// WitnessEvaluations and are consumed.
func (q *Instance) WitnessH(a, b, c []fr.Element, d1, d2, d3 fr.Element) []fr.Element {
	d := q.Domain
	n := int(d.Cardinality)

	// coefficient forms of aA and aB, needed for the blinding terms
	ca := append([]fr.Element(nil), a...)
	cb := append([]fr.Element(nil), b...)
	d.FFTInverse(ca, fft.DIF)
	d.FFTInverse(cb, fft.DIF)
	fft.BitReverse(ca)
	fft.BitReverse(cb)

	// evaluations over the coset
	d.FFTInverse(a, fft.DIF)
	d.FFTInverse(b, fft.DIF)
	d.FFTInverse(c, fft.DIF)
	d.FFT(a, fft.DIT, fft.OnCoset())
	d.FFT(b, fft.DIT, fft.OnCoset())
	d.FFT(c, fft.DIT, fft.OnCoset())

	// on the coset, Z ≡ shift^n - 1
	var zInv, one fr.Element
	one.SetOne()
	zInv.Exp(d.FrMultiplicativeGen, big.NewInt(int64(n))).
		Sub(&zInv, &one).
		Inverse(&zInv)

	// q = (aA·aB - aC)/Z, reusing a
	common.Parallelize(n, func(start, stop int) {
		for i := start; i < stop; i++ {
			a[i].Mul(&a[i], &b[i]).
				Sub(&a[i], &c[i]).
				Mul(&a[i], &zInv)
		}
	})

	// back to coefficients
	d.FFTInverse(a, fft.DIF, fft.OnCoset())
	fft.BitReverse(a)

	h := make([]fr.Element, n+1)
	copy(h, a)

	// blinding: + d1·aB + d2·aA + d1·d2·(X^n - 1) - d3
	var t fr.Element
	for i := 0; i < n; i++ {
		t.Mul(&d1, &cb[i])
		h[i].Add(&h[i], &t)
		t.Mul(&d2, &ca[i])
		h[i].Add(&h[i], &t)
	}
	var d1d2 fr.Element
	d1d2.Mul(&d1, &d2)
	h[n].Add(&h[n], &d1d2)
	h[0].Sub(&h[0], &d1d2).Sub(&h[0], &d3)

	return h
}
