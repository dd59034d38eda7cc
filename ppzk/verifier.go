package ppzk

import (
	"time"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"

	"github.com/devourillusion/snarklib/logger"
	"github.com/devourillusion/snarklib/progress"
)

// g2Lines are precomputed Miller-loop line evaluations of a fixed G2 point
type g2Lines = [2][66]curve.LineEvaluationAff

// PrecomputedVerifyingKey carries the Miller-loop lines of every fixed G2
// element of a verifying key, amortising their cost across verifications.
type PrecomputedVerifyingKey struct {
	g2One     g2Lines
	alphaA    g2Lines
	alphaC    g2Lines
	rcZ       g2Lines
	gamma     g2Lines
	gammaBeta g2Lines

	alphaBG1    curve.G1Affine
	gammaBetaG1 curve.G1Affine

	ic ICQuery
}

// Precompute prepares the verifying key for repeated verification
func (vk *VerifyingKey) Precompute() *PrecomputedVerifyingKey {
	_, _, _, g2 := curve.Generators()
	return &PrecomputedVerifyingKey{
		g2One:       curve.PrecomputeLines(g2),
		alphaA:      curve.PrecomputeLines(vk.AlphaAG2),
		alphaC:      curve.PrecomputeLines(vk.AlphaCG2),
		rcZ:         curve.PrecomputeLines(vk.RCZG2),
		gamma:       curve.PrecomputeLines(vk.GammaG2),
		gammaBeta:   curve.PrecomputeLines(vk.GammaBetaG2),
		alphaBG1:    vk.AlphaBG1,
		gammaBetaG1: vk.GammaBetaG1,
		ic:          vk.IC,
	}
}

// InputSize returns the expected public input length
func (pvk *PrecomputedVerifyingKey) InputSize() int {
	return pvk.ic.InputSize()
}

// StrongVerify accepts the proof iff the public input has exactly the
// expected length and every pairing check holds
func StrongVerify(pvk *PrecomputedVerifyingKey, input []fr.Element, proof *Proof, opts ...Option) (bool, error) {
	if len(input) != pvk.ic.InputSize() {
		return false, nil
	}
	return WeakVerify(pvk, input, proof, opts...)
}

// WeakVerify runs the pairing checks with whatever public input was
// supplied; a shorter input leaves part of the IC query unaccumulated.
// Rejections are reported as (false, nil); the error reports internal
// pairing or input-accumulation failures, and progress.ErrAborted when the
// observer cancels.
func WeakVerify(pvk *PrecomputedVerifyingKey, input []fr.Element, proof *Proof, opts ...Option) (bool, error) {
	opt := newOptions(opts...)
	obs := opt.obs
	log := logger.Logger()
	start := time.Now()

	obs.MajorSteps(5)
	step := func() error {
		if !obs.Major() {
			return progress.ErrAborted
		}
		return nil
	}

	if !proof.WellFormed() {
		return false, nil
	}

	acc, err := pvk.ic.Accumulate(input)
	if err != nil {
		return false, errors.Wrap(err, "ppzk: accumulating input")
	}

	var one curve.GT
	one.SetOne()

	// knowledge commitment for A: e(A, αA·G2) = e(αA·A, G2)
	if err := step(); err != nil {
		return false, err
	}
	num, err := curve.MillerLoopFixedQ(
		[]curve.G1Affine{proof.A.P},
		[]g2Lines{pvk.alphaA},
	)
	if err != nil {
		return false, err
	}
	den, err := curve.MillerLoopFixedQ(
		[]curve.G1Affine{proof.A.AlphaP},
		[]g2Lines{pvk.g2One},
	)
	if err != nil {
		return false, err
	}
	den.Conjugate(&den)
	if kcA := curve.FinalExponentiation(&num, &den); !kcA.Equal(&one) {
		return false, nil
	}

	// knowledge commitment for B: e(αB·G1, B) = e(αB·B, G2)
	if err := step(); err != nil {
		return false, err
	}
	num, err = curve.MillerLoop(
		[]curve.G1Affine{pvk.alphaBG1},
		[]curve.G2Affine{proof.B.P},
	)
	if err != nil {
		return false, err
	}
	den, err = curve.MillerLoopFixedQ(
		[]curve.G1Affine{proof.B.AlphaP},
		[]g2Lines{pvk.g2One},
	)
	if err != nil {
		return false, err
	}
	den.Conjugate(&den)
	if kcB := curve.FinalExponentiation(&num, &den); !kcB.Equal(&one) {
		return false, nil
	}

	// knowledge commitment for C: e(C, αC·G2) = e(αC·C, G2)
	if err := step(); err != nil {
		return false, err
	}
	num, err = curve.MillerLoopFixedQ(
		[]curve.G1Affine{proof.C.P},
		[]g2Lines{pvk.alphaC},
	)
	if err != nil {
		return false, err
	}
	den, err = curve.MillerLoopFixedQ(
		[]curve.G1Affine{proof.C.AlphaP},
		[]g2Lines{pvk.g2One},
	)
	if err != nil {
		return false, err
	}
	den.Conjugate(&den)
	if kcC := curve.FinalExponentiation(&num, &den); !kcC.Equal(&one) {
		return false, nil
	}

	// QAP divisibility: e(A+acc, B) = e(H, rC·Z·G2)·e(C, G2)
	if err := step(); err != nil {
		return false, err
	}
	var aAcc curve.G1Affine
	aAcc.Add(&proof.A.P, &acc.Base)
	num, err = curve.MillerLoop(
		[]curve.G1Affine{aAcc},
		[]curve.G2Affine{proof.B.P},
	)
	if err != nil {
		return false, err
	}
	den, err = curve.MillerLoopFixedQ(
		[]curve.G1Affine{proof.H, proof.C.P},
		[]g2Lines{pvk.rcZ, pvk.g2One},
	)
	if err != nil {
		return false, err
	}
	den.Conjugate(&den)
	if qapCheck := curve.FinalExponentiation(&num, &den); !qapCheck.Equal(&one) {
		return false, nil
	}

	// same coefficients: e(K, γ·G2) = e(A+acc+C, γβ·G2)·e(γβ·G1, B)
	if err := step(); err != nil {
		return false, err
	}
	var aAccC curve.G1Affine
	aAccC.Add(&aAcc, &proof.C.P)
	num, err = curve.MillerLoopFixedQ(
		[]curve.G1Affine{proof.K},
		[]g2Lines{pvk.gamma},
	)
	if err != nil {
		return false, err
	}
	den, err = curve.MillerLoopFixedQ(
		[]curve.G1Affine{aAccC},
		[]g2Lines{pvk.gammaBeta},
	)
	if err != nil {
		return false, err
	}
	den2, err := curve.MillerLoop(
		[]curve.G1Affine{pvk.gammaBetaG1},
		[]curve.G2Affine{proof.B.P},
	)
	if err != nil {
		return false, err
	}
	den.Mul(&den, &den2)
	den.Conjugate(&den)
	if kCheck := curve.FinalExponentiation(&num, &den); !kCheck.Equal(&one) {
		return false, nil
	}

	log.Debug().Dur("took", time.Since(start)).Msg("verifier done")
	return true, nil
}

// StrongVerifyKey is StrongVerify without reusable precomputation
func StrongVerifyKey(vk *VerifyingKey, input []fr.Element, proof *Proof, opts ...Option) (bool, error) {
	return StrongVerify(vk.Precompute(), input, proof, opts...)
}

// WeakVerifyKey is WeakVerify without reusable precomputation
func WeakVerifyKey(vk *VerifyingKey, input []fr.Element, proof *Proof, opts ...Option) (bool, error) {
	return WeakVerify(vk.Precompute(), input, proof, opts...)
}
