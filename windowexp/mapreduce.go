package windowexp

import (
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/devourillusion/snarklib/blockvec"
)

// G1BatchExpBlocks runs a batch exponentiation over a (window × vector)
// grid of independent work items. The window axis is the outer loop: a
// partial table is expensive to build and is reused against every vector
// block before being dropped. Vector blocks of one window pass write to
// disjoint output ranges and run concurrently.
//
// For any grid shape the result equals NewG1(expCount).BatchExp(xs).
func G1BatchExpBlocks(expCount uint64, nbWinBlocks, nbVecBlocks uint64, xs []fr.Element) []curve.G1Jac {
	space := NewSpace(expCount).Partition(nbWinBlocks)
	vecSpace := blockvec.NewSpace(uint64(len(xs))).Partition(nbVecBlocks)

	res := make([]curve.G1Jac, len(xs))
	for wb := uint64(0); wb < space.Windows.NbBlocks; wb++ {
		part := NewG1Block(space, wb)

		var g errgroup.Group
		for vb := uint64(0); vb < vecSpace.NbBlocks; vb++ {
			v := blockvec.Slice(vecSpace, vb, xs)
			g.Go(func() error {
				part.expInto(res[v.Begin:v.End], v.Values)
				return nil
			})
		}
		g.Wait()
	}
	return res
}

// G2BatchExpBlocks is the G2 counterpart of G1BatchExpBlocks
func G2BatchExpBlocks(expCount uint64, nbWinBlocks, nbVecBlocks uint64, xs []fr.Element) []curve.G2Jac {
	space := NewSpace(expCount).Partition(nbWinBlocks)
	vecSpace := blockvec.NewSpace(uint64(len(xs))).Partition(nbVecBlocks)

	res := make([]curve.G2Jac, len(xs))
	for wb := uint64(0); wb < space.Windows.NbBlocks; wb++ {
		part := NewG2Block(space, wb)

		var g errgroup.Group
		for vb := uint64(0); vb < vecSpace.NbBlocks; vb++ {
			v := blockvec.Slice(vecSpace, vb, xs)
			g.Go(func() error {
				part.expInto(res[v.Begin:v.End], v.Values)
				return nil
			})
		}
		g.Wait()
	}
	return res
}
