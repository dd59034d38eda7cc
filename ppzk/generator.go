package ppzk

import (
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"

	"github.com/devourillusion/snarklib/logger"
	"github.com/devourillusion/snarklib/progress"
	"github.com/devourillusion/snarklib/qap"
	"github.com/devourillusion/snarklib/r1cs"
	"github.com/devourillusion/snarklib/windowexp"
)

// trapdoors are the setup secrets. They live on the generator's stack for
// the duration of one Setup and are zeroised before it returns, on every
// path.
type trapdoors struct {
	tau    fr.Element
	alphaA fr.Element
	alphaB fr.Element
	alphaC fr.Element
	rA     fr.Element
	rB     fr.Element
	rC     fr.Element
	beta   fr.Element
	gamma  fr.Element
}

func sampleTrapdoors() (td trapdoors, err error) {
	for _, s := range []*fr.Element{
		&td.tau, &td.alphaA, &td.alphaB, &td.alphaC,
		&td.rA, &td.rB, &td.beta, &td.gamma,
	} {
		if _, err = s.SetRandom(); err != nil {
			td.destroy()
			return td, errors.Wrap(err, "ppzk: sampling trapdoors")
		}
	}
	td.rC.Mul(&td.rA, &td.rB)
	return td, nil
}

func (td *trapdoors) destroy() {
	td.tau.SetZero()
	td.alphaA.SetZero()
	td.alphaB.SetZero()
	td.alphaC.SetZero()
	td.rA.SetZero()
	td.rB.SetZero()
	td.rC.SetZero()
	td.beta.SetZero()
	td.gamma.SetZero()
}

// zeroize wipes scalar vectors derived from the trapdoors
func zeroize(vs ...[]fr.Element) {
	for _, v := range vs {
		for i := range v {
			v[i].SetZero()
		}
	}
}

// Setup produces a keypair for the constraint system. Seven major steps:
// G1 table, G2 table, K query, A query, B query, C query, H query.
func Setup(cs r1cs.ConstraintSource, opts ...Option) (*Keypair, error) {
	opt := newOptions(opts...)
	obs := opt.obs
	log := logger.Logger()
	start := time.Now()

	q, err := qap.NewInstance(cs)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("nbConstraints", q.NbConstraints).
		Int("nbVariables", q.NbVariables).
		Int("nbInputs", q.NbInputs).
		Uint64("degree", q.Degree()).
		Msg("setup started")

	td, err := sampleTrapdoors()
	if err != nil {
		return nil, err
	}
	defer td.destroy()

	At, Bt, Ct, err := q.EvaluateABC(cs, td.tau)
	if err != nil {
		return nil, err
	}
	defer zeroize(At, Bt, Ct)

	Ht := q.EvaluateH(td.tau)
	defer zeroize(Ht)

	zt := q.VanishingValue(td.tau)

	obs.MajorSteps(7)
	step := func() error {
		if !obs.Major() {
			return progress.ErrAborted
		}
		return nil
	}

	// step 1: G1 window table, sized for every G1 exponentiation below
	if err := step(); err != nil {
		return nil, err
	}
	g1Count := 2*(countNonZero(At)+countNonZero(Ct)) + countNonZero(Bt) +
		len(Ht) + len(At) + q.NbInputs + 1
	g1Table := windowexp.NewG1(uint64(g1Count))

	// step 2: G2 window table for the B query bases
	if err := step(); err != nil {
		return nil, err
	}
	g2Table := windowexp.NewG2(uint64(countNonZero(Bt)))

	// step 3: K query, over the pre-folding A query
	if err := step(); err != nil {
		return nil, err
	}
	Kt := qap.KCoefficients(At, Bt, Ct, td.rA, td.rB, td.beta)
	defer zeroize(Kt)
	kp := &Keypair{}
	kp.PK.K = windowexp.NormalizeG1(g1Table.BatchExp(Kt))

	// fold the public-input slots out of the A query
	icBase, icCoeffs := qap.FoldIC(At, q.NbInputs, td.rA)
	defer zeroize(icCoeffs)

	// step 4: A query
	if err := step(); err != nil {
		return nil, err
	}
	var rAlpha fr.Element
	rAlpha.Mul(&td.rA, &td.alphaA)
	kp.PK.A = encodeSparseG1(g1Table, At, td.rA, rAlpha)

	// step 5: B query
	if err := step(); err != nil {
		return nil, err
	}
	rAlpha.Mul(&td.rB, &td.alphaB)
	kp.PK.B = encodeSparseG2(g2Table, g1Table, Bt, td.rB, rAlpha)

	// step 6: C query
	if err := step(); err != nil {
		return nil, err
	}
	rAlpha.Mul(&td.rC, &td.alphaC)
	kp.PK.C = encodeSparseG1(g1Table, Ct, td.rC, rAlpha)

	// step 7: H query
	if err := step(); err != nil {
		return nil, err
	}
	kp.PK.H = windowexp.NormalizeG1(g1Table.BatchExp(Ht))

	// verification key
	var bi big.Int
	kp.VK.AlphaAG2.ScalarMultiplicationBase(td.alphaA.BigInt(&bi))
	kp.VK.AlphaBG1.ScalarMultiplicationBase(td.alphaB.BigInt(&bi))
	kp.VK.AlphaCG2.ScalarMultiplicationBase(td.alphaC.BigInt(&bi))
	kp.VK.GammaG2.ScalarMultiplicationBase(td.gamma.BigInt(&bi))

	var gammaBeta fr.Element
	gammaBeta.Mul(&td.gamma, &td.beta)
	kp.VK.GammaBetaG1.ScalarMultiplicationBase(gammaBeta.BigInt(&bi))
	kp.VK.GammaBetaG2.ScalarMultiplicationBase(gammaBeta.BigInt(&bi))
	gammaBeta.SetZero()

	var rcz fr.Element
	rcz.Mul(&td.rC, &zt)
	kp.VK.RCZG2.ScalarMultiplicationBase(rcz.BigInt(&bi))
	rcz.SetZero()

	icJac := g1Table.Exp(icBase)
	kp.VK.IC.Base.FromJacobian(&icJac)
	kp.VK.IC.Encoded = windowexp.NormalizeG1(g1Table.BatchExp(icCoeffs))
	icBase.SetZero()

	log.Info().
		Dur("took", time.Since(start)).
		Int("pkA", len(kp.PK.A.Indices)).
		Int("pkB", len(kp.PK.B.Indices)).
		Int("pkH", len(kp.PK.H)).
		Msg("setup done")
	return kp, nil
}

// encodeSparseG1 encodes the nonzero coefficients as pairs
// (r·coeff·G1, rAlpha·coeff·G1)
func encodeSparseG1(t *windowexp.G1Table, coeffs []fr.Element, r, rAlpha fr.Element) SparseVectorG1 {
	indices := make([]uint64, 0, len(coeffs))
	base := make([]fr.Element, 0, len(coeffs))
	knowledge := make([]fr.Element, 0, len(coeffs))

	var s fr.Element
	for i := range coeffs {
		if coeffs[i].IsZero() {
			continue
		}
		indices = append(indices, uint64(i))
		s.Mul(&r, &coeffs[i])
		base = append(base, s)
		s.Mul(&rAlpha, &coeffs[i])
		knowledge = append(knowledge, s)
	}

	v := SparseVectorG1{
		Indices: indices,
		P:       windowexp.NormalizeG1(t.BatchExp(base)),
		AlphaP:  windowexp.NormalizeG1(t.BatchExp(knowledge)),
		Size:    uint64(len(coeffs)),
	}
	zeroize(base, knowledge)
	return v
}

// encodeSparseG2 encodes the nonzero coefficients as pairs
// (r·coeff·G2, rAlpha·coeff·G1)
func encodeSparseG2(g2 *windowexp.G2Table, g1 *windowexp.G1Table, coeffs []fr.Element, r, rAlpha fr.Element) SparseVectorG2 {
	indices := make([]uint64, 0, len(coeffs))
	base := make([]fr.Element, 0, len(coeffs))
	knowledge := make([]fr.Element, 0, len(coeffs))

	var s fr.Element
	for i := range coeffs {
		if coeffs[i].IsZero() {
			continue
		}
		indices = append(indices, uint64(i))
		s.Mul(&r, &coeffs[i])
		base = append(base, s)
		s.Mul(&rAlpha, &coeffs[i])
		knowledge = append(knowledge, s)
	}

	v := SparseVectorG2{
		Indices: indices,
		P:       windowexp.NormalizeG2(g2.BatchExp(base)),
		AlphaP:  windowexp.NormalizeG1(g1.BatchExp(knowledge)),
		Size:    uint64(len(coeffs)),
	}
	zeroize(base, knowledge)
	return v
}

func countNonZero(v []fr.Element) int {
	n := 0
	for i := range v {
		if !v[i].IsZero() {
			n++
		}
	}
	return n
}
