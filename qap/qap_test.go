package qap

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devourillusion/snarklib/common"
	"github.com/devourillusion/snarklib/r1cs"
)

func one() fr.Element {
	var o fr.Element
	o.SetOne()
	return o
}

// andWithBooleanity builds { x·y = z, x·(1-x) = 0, y·(1-y) = 0 } with two
// public inputs and the satisfying witness (1, 1, 1)
func andWithBooleanity() (*r1cs.System, r1cs.Witness) {
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)

	sys := r1cs.New(2)
	sys.AddConstraint(
		r1cs.LinearCombination{{Variable: 1, Coeff: one()}},
		r1cs.LinearCombination{{Variable: 2, Coeff: one()}},
		r1cs.LinearCombination{{Variable: 3, Coeff: one()}},
	)
	for _, x := range []uint64{1, 2} {
		sys.AddConstraint(
			r1cs.LinearCombination{{Variable: x, Coeff: one()}},
			r1cs.LinearCombination{{Variable: 0, Coeff: one()}, {Variable: x, Coeff: minusOne}},
			nil,
		)
	}

	w := make(r1cs.Witness, sys.NumVariables())
	w.AssignUint64(1, 1)
	w.AssignUint64(2, 1)
	w.AssignUint64(3, 1)
	return sys, w
}

// combine evaluates the witness combination of a query vector at τ:
// v[3] + Σ w[i]·v[4+i]
func combine(v []fr.Element, w r1cs.Witness) fr.Element {
	res := v[3]
	var t fr.Element
	for i := range w {
		t.Mul(&w[i], &v[4+i])
		res.Add(&res, &t)
	}
	return res
}

// evalPoly evaluates the coefficient vector at τ by Horner's rule
func evalPoly(coeffs []fr.Element, tau fr.Element) fr.Element {
	var res fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		res.Mul(&res, &tau)
		res.Add(&res, &coeffs[i])
	}
	return res
}

func TestInstanceDimensions(t *testing.T) {
	sys, _ := andWithBooleanity()
	q, err := NewInstance(sys)
	require.NoError(t, err)

	assert.Equal(t, 3, q.NbVariables)
	assert.Equal(t, 2, q.NbInputs)
	assert.Equal(t, 3, q.NbConstraints)
	assert.EqualValues(t, common.NextPowerOfTwo(q.NbConstraints), q.Degree(), "domain rounds to the next power of two")
	assert.EqualValues(t, 4, q.Degree())
	assert.Equal(t, 7, q.QuerySize())
}

func TestEvaluateHIsPowers(t *testing.T) {
	sys, _ := andWithBooleanity()
	q, err := NewInstance(sys)
	require.NoError(t, err)

	var tau fr.Element
	_, err = tau.SetRandom()
	require.NoError(t, err)

	Ht := q.EvaluateH(tau)
	require.Len(t, Ht, int(q.Degree())+1)

	var expected fr.Element
	expected.SetOne()
	for j := range Ht {
		assert.True(t, expected.Equal(&Ht[j]), "power %d", j)
		expected.Mul(&expected, &tau)
	}
}

func TestBlindingSlotsCarryZ(t *testing.T) {
	sys, _ := andWithBooleanity()
	q, err := NewInstance(sys)
	require.NoError(t, err)

	var tau fr.Element
	_, err = tau.SetRandom()
	require.NoError(t, err)

	At, Bt, Ct, err := q.EvaluateABC(sys, tau)
	require.NoError(t, err)

	zt := q.VanishingValue(tau)
	assert.True(t, At[0].Equal(&zt))
	assert.True(t, Bt[1].Equal(&zt))
	assert.True(t, Ct[2].Equal(&zt))
	assert.True(t, At[1].IsZero())
	assert.True(t, At[2].IsZero())
	assert.True(t, Bt[0].IsZero())
	assert.True(t, Ct[0].IsZero())
}

func TestWitnessDivisibility(t *testing.T) {
	sys, w := andWithBooleanity()
	q, err := NewInstance(sys)
	require.NoError(t, err)

	var tau fr.Element
	_, err = tau.SetRandom()
	require.NoError(t, err)

	At, Bt, Ct, err := q.EvaluateABC(sys, tau)
	require.NoError(t, err)

	a, b, c, err := q.WitnessEvaluations(sys, w)
	require.NoError(t, err)

	var zero fr.Element
	h := q.WitnessH(a, b, c, zero, zero, zero)
	require.Len(t, h, int(q.Degree())+1)

	// aA(τ)·aB(τ) - aC(τ) = h(τ)·Z(τ)
	aTau := combine(At, w)
	bTau := combine(Bt, w)
	cTau := combine(Ct, w)

	var lhs fr.Element
	lhs.Mul(&aTau, &bTau).Sub(&lhs, &cTau)

	zt := q.VanishingValue(tau)
	rhs := evalPoly(h, tau)
	rhs.Mul(&rhs, &zt)

	assert.True(t, lhs.Equal(&rhs))
}

func TestWitnessDivisibilityBlinded(t *testing.T) {
	sys, w := andWithBooleanity()
	q, err := NewInstance(sys)
	require.NoError(t, err)

	var tau, d1, d2, d3 fr.Element
	for _, s := range []*fr.Element{&tau, &d1, &d2, &d3} {
		_, err = s.SetRandom()
		require.NoError(t, err)
	}

	At, Bt, Ct, err := q.EvaluateABC(sys, tau)
	require.NoError(t, err)

	a, b, c, err := q.WitnessEvaluations(sys, w)
	require.NoError(t, err)
	h := q.WitnessH(a, b, c, d1, d2, d3)

	zt := q.VanishingValue(tau)

	// (d1·Z + aA)(d2·Z + aB) - (d3·Z + aC) = h(τ)·Z(τ)
	aTau := combine(At, w)
	bTau := combine(Bt, w)
	cTau := combine(Ct, w)

	var t1, t2, lhs fr.Element
	t1.Mul(&d1, &zt).Add(&t1, &aTau)
	t2.Mul(&d2, &zt).Add(&t2, &bTau)
	lhs.Mul(&t1, &t2)
	t1.Mul(&d3, &zt).Add(&t1, &cTau)
	lhs.Sub(&lhs, &t1)

	rhs := evalPoly(h, tau)
	rhs.Mul(&rhs, &zt)

	assert.True(t, lhs.Equal(&rhs))
}

func TestKCoefficients(t *testing.T) {
	sys, _ := andWithBooleanity()
	q, err := NewInstance(sys)
	require.NoError(t, err)

	var tau, rA, rB, beta fr.Element
	for _, s := range []*fr.Element{&tau, &rA, &rB, &beta} {
		_, err = s.SetRandom()
		require.NoError(t, err)
	}

	At, Bt, Ct, err := q.EvaluateABC(sys, tau)
	require.NoError(t, err)
	Kt := KCoefficients(At, Bt, Ct, rA, rB, beta)
	require.Len(t, Kt, q.QuerySize())

	var rC fr.Element
	rC.Mul(&rA, &rB)
	for i := range Kt {
		var expected, tmp fr.Element
		expected.Mul(&rA, &At[i])
		tmp.Mul(&rB, &Bt[i])
		expected.Add(&expected, &tmp)
		tmp.Mul(&rC, &Ct[i])
		expected.Add(&expected, &tmp).Mul(&expected, &beta)
		assert.True(t, expected.Equal(&Kt[i]), "slot %d", i)
	}
}

func TestFoldIC(t *testing.T) {
	sys, _ := andWithBooleanity()
	q, err := NewInstance(sys)
	require.NoError(t, err)

	var tau, rA fr.Element
	_, err = tau.SetRandom()
	require.NoError(t, err)
	_, err = rA.SetRandom()
	require.NoError(t, err)

	At, _, _, err := q.EvaluateABC(sys, tau)
	require.NoError(t, err)

	before := append([]fr.Element(nil), At...)
	base, coeffs := FoldIC(At, q.NbInputs, rA)
	require.Len(t, coeffs, q.NbInputs)

	var expected fr.Element
	expected.Mul(&rA, &before[3])
	assert.True(t, base.Equal(&expected))
	for i := 0; i < q.NbInputs; i++ {
		expected.Mul(&rA, &before[4+i])
		assert.True(t, coeffs[i].Equal(&expected), "input %d", i)
	}

	// folded slots are zero, the rest untouched
	for i := 3; i <= 3+q.NbInputs; i++ {
		assert.True(t, At[i].IsZero(), "slot %d", i)
	}
	for i := 4 + q.NbInputs; i < len(At); i++ {
		assert.True(t, At[i].Equal(&before[i]), "slot %d", i)
	}
}
