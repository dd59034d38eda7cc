package windowexp

import (
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/devourillusion/snarklib/blockvec"
	"github.com/devourillusion/snarklib/common"
)

// G1Table holds the precomputed multiples of the G1 generator for one block
// of windows. rows[i][d-1] = d·2^((begin+i)·bits)·G1 for digits d ≥ 1.
type G1Table struct {
	bits  uint64
	block blockvec.Block
	rows  [][]curve.G1Affine
}

// NewG1 builds the full table for a batch of expCount exponentiations
func NewG1(expCount uint64) *G1Table {
	return NewG1Block(NewSpace(expCount), 0)
}

// NewG1Block builds the slice of the table covering the given window block
// of the (possibly partitioned) space
func NewG1Block(s Space, blockIdx uint64) *G1Table {
	block := s.Windows.Block(blockIdx)
	t := &G1Table{
		bits:  s.Bits,
		block: block,
		rows:  make([][]curve.G1Affine, block.Len()),
	}

	_, _, g1Aff, _ := curve.Generators()

	common.Parallelize(int(block.Len()), func(start, stop int) {
		for i := start; i < stop; i++ {
			win := block.Begin + uint64(i)

			// base of this window: 2^(win·bits)·G1
			var base curve.G1Jac
			base.FromAffine(&g1Aff)
			for b := uint64(0); b < win*t.bits; b++ {
				base.DoubleAssign()
			}

			nbDigits := (uint64(1) << t.bits) - 1
			row := make([]curve.G1Jac, nbDigits)
			acc := base
			for d := uint64(0); d < nbDigits; d++ {
				row[d] = acc
				acc.AddAssign(&base)
			}
			t.rows[i] = curve.BatchJacobianToAffineG1(row)
		}
	})

	return t
}

// Exp returns the contribution of this table's windows to x·G1. For a full
// table this is x·G1 itself; for a partial table, summing over all blocks
// of the partitioning recovers it.
func (t *G1Table) Exp(x fr.Element) curve.G1Jac {
	var bi big.Int
	x.BigInt(&bi)

	var acc curve.G1Jac
	for i := range t.rows {
		win := t.block.Begin + uint64(i)
		d := digit(&bi, win*t.bits, t.bits)
		if d != 0 {
			acc.AddMixed(&t.rows[i][d-1])
		}
	}
	return acc
}

// BatchExp applies Exp to every scalar
func (t *G1Table) BatchExp(xs []fr.Element) []curve.G1Jac {
	res := make([]curve.G1Jac, len(xs))
	common.Parallelize(len(xs), func(start, stop int) {
		for i := start; i < stop; i++ {
			res[i] = t.Exp(xs[i])
		}
	})
	return res
}

// expInto accumulates Exp of each scalar into dst, serially. Used by the
// map-reduce driver which brings its own parallelism.
func (t *G1Table) expInto(dst []curve.G1Jac, xs []fr.Element) {
	for i := range xs {
		p := t.Exp(xs[i])
		dst[i].AddAssign(&p)
	}
}

// NormalizeG1 converts a batch of Jacobian points to affine
func NormalizeG1(ps []curve.G1Jac) []curve.G1Affine {
	res := make([]curve.G1Affine, len(ps))
	common.Parallelize(len(ps), func(start, stop int) {
		for i := start; i < stop; i++ {
			res[i].FromJacobian(&ps[i])
		}
	})
	return res
}
