package ppzk

import (
	"math/big"
	"time"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"

	"github.com/devourillusion/snarklib/logger"
	"github.com/devourillusion/snarklib/progress"
	"github.com/devourillusion/snarklib/qap"
	"github.com/devourillusion/snarklib/r1cs"
)

// Prove builds a proof that the witness satisfies the constraint system,
// using a proving key generated for that system. Five major steps: the A,
// B, C, H and K proof components.
func Prove(cs r1cs.ConstraintSource, pk *ProvingKey, w r1cs.Witness, opts ...Option) (*Proof, error) {
	opt := newOptions(opts...)
	obs := opt.obs
	log := logger.Logger()
	start := time.Now()

	q, err := qap.NewInstance(cs)
	if err != nil {
		return nil, err
	}
	if len(w) != q.NbVariables {
		return nil, errors.Errorf("ppzk: witness size %d, expected %d", len(w), q.NbVariables)
	}
	if pk.A.Size != uint64(q.QuerySize()) || pk.B.Size != uint64(q.QuerySize()) || pk.C.Size != uint64(q.QuerySize()) {
		return nil, errors.New("ppzk: proving key does not match the constraint system")
	}
	if uint64(len(pk.H)) != q.Degree()+1 || len(pk.K) != q.QuerySize() {
		return nil, errors.New("ppzk: proving key does not match the constraint system")
	}

	// blinding scalars
	var d1, d2, d3 fr.Element
	for _, s := range []*fr.Element{&d1, &d2, &d3} {
		if _, err := s.SetRandom(); err != nil {
			return nil, errors.Wrap(err, "ppzk: sampling blinding")
		}
	}

	a, b, c, err := q.WitnessEvaluations(cs, w)
	if err != nil {
		return nil, err
	}
	aH := q.WitnessH(a, b, c, d1, d2, d3)

	reserve := 0
	if opt.reserveTune > 0 {
		reserve = q.NbVariables / opt.reserveTune
	}

	obs.MajorSteps(5)
	step := func() error {
		if !obs.Major() {
			return progress.ErrAborted
		}
		return nil
	}

	var d1bi, d2bi, d3bi big.Int
	d1.BigInt(&d1bi)
	d2.BigInt(&d2bi)
	d3.BigInt(&d3bi)

	proof := &Proof{}

	// A = d1·A[0] + A[3] + Σ w[i-4]·A[i]
	if err := step(); err != nil {
		return nil, err
	}
	var aP, aAlpha curve.G1Jac
	addScaledG1(&aP, &aAlpha, &pk.A, 0, &d1bi)
	addIndexG1(&aP, &aAlpha, &pk.A, 3)
	mp, mpa, err := multiExp01SparseG1(&pk.A, w, reserve)
	if err != nil {
		return nil, err
	}
	aP.AddAssign(&mp)
	aAlpha.AddAssign(&mpa)
	proof.A.P.FromJacobian(&aP)
	proof.A.AlphaP.FromJacobian(&aAlpha)

	// B = d2·B[1] + B[3] + Σ w[i-4]·B[i]
	if err := step(); err != nil {
		return nil, err
	}
	var bP curve.G2Jac
	var bAlpha curve.G1Jac
	pB, pBa := pk.B.Get(1)
	var tmp2 curve.G2Affine
	tmp2.ScalarMultiplication(&pB, &d2bi)
	bP.AddMixed(&tmp2)
	var tmp1 curve.G1Affine
	tmp1.ScalarMultiplication(&pBa, &d2bi)
	bAlpha.AddMixed(&tmp1)
	pB, pBa = pk.B.Get(3)
	bP.AddMixed(&pB)
	bAlpha.AddMixed(&pBa)
	mb, mba, err := multiExp01SparseG2(&pk.B, w, reserve)
	if err != nil {
		return nil, err
	}
	bP.AddAssign(&mb)
	bAlpha.AddAssign(&mba)
	proof.B.P.FromJacobian(&bP)
	proof.B.AlphaP.FromJacobian(&bAlpha)

	// C = d3·C[2] + C[3] + Σ w[i-4]·C[i]
	if err := step(); err != nil {
		return nil, err
	}
	var cP, cAlpha curve.G1Jac
	addScaledG1(&cP, &cAlpha, &pk.C, 2, &d3bi)
	addIndexG1(&cP, &cAlpha, &pk.C, 3)
	mc, mca, err := multiExp01SparseG1(&pk.C, w, reserve)
	if err != nil {
		return nil, err
	}
	cP.AddAssign(&mc)
	cAlpha.AddAssign(&mca)
	proof.C.P.FromJacobian(&cP)
	proof.C.AlphaP.FromJacobian(&cAlpha)

	// H = Σ aH[j]·H[j]
	if err := step(); err != nil {
		return nil, err
	}
	var hJac curve.G1Jac
	if _, err := hJac.MultiExp(pk.H, aH, multiExpConfig()); err != nil {
		return nil, err
	}
	proof.H.FromJacobian(&hJac)

	// K = d1·K[0] + d2·K[1] + d3·K[2] + K[3] + Σ w[i]·K[i+4]
	if err := step(); err != nil {
		return nil, err
	}
	var kJac curve.G1Jac
	tmp1.ScalarMultiplication(&pk.K[0], &d1bi)
	kJac.AddMixed(&tmp1)
	tmp1.ScalarMultiplication(&pk.K[1], &d2bi)
	kJac.AddMixed(&tmp1)
	tmp1.ScalarMultiplication(&pk.K[2], &d3bi)
	kJac.AddMixed(&tmp1)
	kJac.AddMixed(&pk.K[3])
	kRest, err := multiExp01DenseG1(pk.K[4:], w, reserve)
	if err != nil {
		return nil, err
	}
	kJac.AddAssign(&kRest)
	proof.K.FromJacobian(&kJac)

	log.Info().Dur("took", time.Since(start)).Msg("prover done")
	return proof, nil
}

// addScaledG1 accumulates s·v[idx] into both halves of a pair accumulator
func addScaledG1(p, alphaP *curve.G1Jac, v *SparseVectorG1, idx uint64, s *big.Int) {
	pt, pta := v.Get(idx)
	var tmp curve.G1Affine
	tmp.ScalarMultiplication(&pt, s)
	p.AddMixed(&tmp)
	tmp.ScalarMultiplication(&pta, s)
	alphaP.AddMixed(&tmp)
}

// addIndexG1 accumulates v[idx] into both halves of a pair accumulator
func addIndexG1(p, alphaP *curve.G1Jac, v *SparseVectorG1, idx uint64) {
	pt, pta := v.Get(idx)
	p.AddMixed(&pt)
	alphaP.AddMixed(&pta)
}
