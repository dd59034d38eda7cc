package windowexp

import (
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/devourillusion/snarklib/blockvec"
	"github.com/devourillusion/snarklib/common"
)

// G2Table is the G2 counterpart of G1Table
type G2Table struct {
	bits  uint64
	block blockvec.Block
	rows  [][]curve.G2Affine
}

// NewG2 builds the full table for a batch of expCount exponentiations
func NewG2(expCount uint64) *G2Table {
	return NewG2Block(NewSpace(expCount), 0)
}

// NewG2Block builds the slice of the table covering the given window block
func NewG2Block(s Space, blockIdx uint64) *G2Table {
	block := s.Windows.Block(blockIdx)
	t := &G2Table{
		bits:  s.Bits,
		block: block,
		rows:  make([][]curve.G2Affine, block.Len()),
	}

	_, _, _, g2Aff := curve.Generators()

	common.Parallelize(int(block.Len()), func(start, stop int) {
		for i := start; i < stop; i++ {
			win := block.Begin + uint64(i)

			var base curve.G2Jac
			base.FromAffine(&g2Aff)
			for b := uint64(0); b < win*t.bits; b++ {
				base.DoubleAssign()
			}

			nbDigits := (uint64(1) << t.bits) - 1
			row := make([]curve.G2Affine, nbDigits)
			acc := base
			for d := uint64(0); d < nbDigits; d++ {
				row[d].FromJacobian(&acc)
				acc.AddAssign(&base)
			}
			t.rows[i] = row
		}
	})

	return t
}

// Exp returns the contribution of this table's windows to x·G2
func (t *G2Table) Exp(x fr.Element) curve.G2Jac {
	var bi big.Int
	x.BigInt(&bi)

	var acc curve.G2Jac
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
func (t *G2Table) BatchExp(xs []fr.Element) []curve.G2Jac {
	res := make([]curve.G2Jac, len(xs))
	common.Parallelize(len(xs), func(start, stop int) {
		for i := start; i < stop; i++ {
			res[i] = t.Exp(xs[i])
		}
	})
	return res
}

// expInto accumulates Exp of each scalar into dst, serially
func (t *G2Table) expInto(dst []curve.G2Jac, xs []fr.Element) {
	for i := range xs {
		p := t.Exp(xs[i])
		dst[i].AddAssign(&p)
	}
}

// NormalizeG2 converts a batch of Jacobian points to affine
func NormalizeG2(ps []curve.G2Jac) []curve.G2Affine {
	res := make([]curve.G2Affine, len(ps))
	common.Parallelize(len(ps), func(start, stop int) {
		for i := start; i < stop; i++ {
			res[i].FromJacobian(&ps[i])
		}
	})
	return res
}
