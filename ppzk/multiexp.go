package ppzk

import (
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/devourillusion/snarklib/common"
	"github.com/devourillusion/snarklib/r1cs"
)

var frOne, frMinusOne fr.Element

func init() {
	frOne.SetOne()
	frMinusOne.Neg(&frOne)
}

// multiExpConfig bounds the bucket method to the available CPUs
func multiExpConfig() ecc.MultiExpConfig {
	return ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}
}

// multiExp01SparseG1 computes Σ w[i-4]·v[i] over the witness window
// [4, v.Size) of a sparse G1 pair query. Scalars equal to 0 are skipped and
// ±1 folded by plain additions; only the general remainder goes through the
// bucket multi-exponentiation. reserve pre-sizes the scratch vectors.
func multiExp01SparseG1(v *SparseVectorG1, w r1cs.Witness, reserve int) (p, alphaP curve.G1Jac, err error) {
	if reserve <= 0 {
		reserve = len(v.Indices)
	}
	reserve = common.Min(reserve, len(v.Indices))
	points := make([]curve.G1Affine, 0, reserve)
	alphaPoints := make([]curve.G1Affine, 0, reserve)
	scalars := make([]fr.Element, 0, reserve)

	var neg curve.G1Affine
	for k, idx := range v.Indices {
		if idx < 4 {
			continue
		}
		s := w[idx-4]
		switch {
		case s.IsZero():
		case s.Equal(&frOne):
			p.AddMixed(&v.P[k])
			alphaP.AddMixed(&v.AlphaP[k])
		case s.Equal(&frMinusOne):
			neg.Neg(&v.P[k])
			p.AddMixed(&neg)
			neg.Neg(&v.AlphaP[k])
			alphaP.AddMixed(&neg)
		default:
			points = append(points, v.P[k])
			alphaPoints = append(alphaPoints, v.AlphaP[k])
			scalars = append(scalars, s)
		}
	}

	if len(scalars) > 0 {
		var acc curve.G1Jac
		if _, err = acc.MultiExp(points, scalars, multiExpConfig()); err != nil {
			return p, alphaP, err
		}
		p.AddAssign(&acc)
		if _, err = acc.MultiExp(alphaPoints, scalars, multiExpConfig()); err != nil {
			return p, alphaP, err
		}
		alphaP.AddAssign(&acc)
	}
	return p, alphaP, nil
}

// multiExp01SparseG2 is the counterpart for the B query: the base sum lives
// in G2, the knowledge sum in G1
func multiExp01SparseG2(v *SparseVectorG2, w r1cs.Witness, reserve int) (p curve.G2Jac, alphaP curve.G1Jac, err error) {
	if reserve <= 0 {
		reserve = len(v.Indices)
	}
	reserve = common.Min(reserve, len(v.Indices))
	points := make([]curve.G2Affine, 0, reserve)
	alphaPoints := make([]curve.G1Affine, 0, reserve)
	scalars := make([]fr.Element, 0, reserve)

	var neg2 curve.G2Affine
	var neg1 curve.G1Affine
	for k, idx := range v.Indices {
		if idx < 4 {
			continue
		}
		s := w[idx-4]
		switch {
		case s.IsZero():
		case s.Equal(&frOne):
			p.AddMixed(&v.P[k])
			alphaP.AddMixed(&v.AlphaP[k])
		case s.Equal(&frMinusOne):
			neg2.Neg(&v.P[k])
			p.AddMixed(&neg2)
			neg1.Neg(&v.AlphaP[k])
			alphaP.AddMixed(&neg1)
		default:
			points = append(points, v.P[k])
			alphaPoints = append(alphaPoints, v.AlphaP[k])
			scalars = append(scalars, s)
		}
	}

	if len(scalars) > 0 {
		var acc2 curve.G2Jac
		if _, err = acc2.MultiExp(points, scalars, multiExpConfig()); err != nil {
			return p, alphaP, err
		}
		p.AddAssign(&acc2)
		var acc1 curve.G1Jac
		if _, err = acc1.MultiExp(alphaPoints, scalars, multiExpConfig()); err != nil {
			return p, alphaP, err
		}
		alphaP.AddAssign(&acc1)
	}
	return p, alphaP, nil
}

// multiExp01DenseG1 computes Σ scalars[i]·points[i] with the same 0/±1
// shortcuts over a dense point vector
func multiExp01DenseG1(points []curve.G1Affine, scalars []fr.Element, reserve int) (curve.G1Jac, error) {
	if reserve <= 0 {
		reserve = len(points)
	}
	reserve = common.Min(reserve, len(points))
	filtered := make([]curve.G1Affine, 0, reserve)
	general := make([]fr.Element, 0, reserve)

	var res curve.G1Jac
	var neg curve.G1Affine
	for i := range points {
		s := scalars[i]
		switch {
		case s.IsZero():
		case s.Equal(&frOne):
			res.AddMixed(&points[i])
		case s.Equal(&frMinusOne):
			neg.Neg(&points[i])
			res.AddMixed(&neg)
		default:
			filtered = append(filtered, points[i])
			general = append(general, s)
		}
	}

	if len(general) > 0 {
		var acc curve.G1Jac
		if _, err := acc.MultiExp(filtered, general, multiExpConfig()); err != nil {
			return res, err
		}
		res.AddAssign(&acc)
	}
	return res, nil
}
