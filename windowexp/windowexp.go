// Package windowexp implements fixed-base window exponentiation tables for
// the bn254 groups. A table covers the scalar bit-length with w-bit windows
// and answers x·G by one lookup and one addition per window.
//
// Tables and scalar vectors can both be block-partitioned: a partial table
// over a window block computes the contribution of those windows only, and
// the partial results over any partitioning add up to the monolithic
// exponentiation. This is the map-reduce mechanism used to parallelise (or
// stream) large batch exponentiations.
package windowexp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/devourillusion/snarklib/blockvec"
)

// expCountThresholds[i] is the smallest expected exponentiation count for
// which a window of i+1 bits pays for its table. The schedule is frozen:
// every component that rebuilds a table for the same batch size must land
// on the same width, otherwise block-partitioned results stop lining up.
var expCountThresholds = [...]uint64{
	1, 5, 18, 58, 164, 434, 1103, 2752, 6779, 16504, 39836, 95553,
	227952, 540219, 1273111, 2988435, 6986903, 16268290, 37742187,
	87242697, 201039862, 461992973,
}

// WindowBits returns the window width for a batch of expCount
// exponentiations. Piecewise constant and monotone non-decreasing.
func WindowBits(expCount uint64) uint64 {
	bits := uint64(1)
	for i, threshold := range expCountThresholds {
		if expCount < threshold {
			break
		}
		bits = uint64(i + 1)
	}
	return bits
}

// Space is the window axis of a table sized for expCount exponentiations.
// Partition it to build the table in independent blocks.
type Space struct {
	ExpCount uint64
	Bits     uint64
	Windows  blockvec.Space
}

// NewSpace sizes the window axis for a batch of expCount exponentiations
func NewSpace(expCount uint64) Space {
	bits := WindowBits(expCount)
	nbWindows := (uint64(fr.Bits) + bits - 1) / bits
	return Space{
		ExpCount: expCount,
		Bits:     bits,
		Windows:  blockvec.NewSpace(nbWindows),
	}
}

// Partition cuts the window axis in nbBlocks blocks
func (s Space) Partition(nbBlocks uint64) Space {
	s.Windows = s.Windows.Partition(nbBlocks)
	return s
}

// digit extracts the w-bit window at bit offset off of the scalar
func digit(x *big.Int, off, w uint64) uint64 {
	var d uint64
	for b := uint64(0); b < w; b++ {
		d |= uint64(x.Bit(int(off + b))) << b
	}
	return d
}
