// Package blockvec models 1-D index spaces that can be cut into contiguous
// blocks. Window-exponentiation tables and query vectors are partitioned
// through it; each block is an independent work item whose partial results
// add up to the whole.
package blockvec

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Space is a 1-D index space, either whole or partitioned in NbBlocks
// contiguous chunks
type Space struct {
	Size     uint64
	NbBlocks uint64
}

// NewSpace returns the unpartitioned space over [0, size)
func NewSpace(size uint64) Space {
	return Space{Size: size, NbBlocks: 1}
}

// Partition cuts the space in nbBlocks chunks. nbBlocks is clamped to
// [1, Size]; since blocks are ChunkSize long, trailing blocks can still be
// empty (7 indices in 5 blocks end with the empty block [7, 7)).
func (s Space) Partition(nbBlocks uint64) Space {
	if nbBlocks < 1 {
		nbBlocks = 1
	}
	if nbBlocks > s.Size && s.Size > 0 {
		nbBlocks = s.Size
	}
	return Space{Size: s.Size, NbBlocks: nbBlocks}
}

// ChunkSize returns the size of every full block; the blocks after the last
// full one are shorter or empty
func (s Space) ChunkSize() uint64 {
	return (s.Size + s.NbBlocks - 1) / s.NbBlocks
}

// Block returns the half-open global index range of the given block
func (s Space) Block(idx uint64) Block {
	chunk := s.ChunkSize()
	begin := idx * chunk
	end := begin + chunk
	if begin > s.Size {
		begin = s.Size
	}
	if end > s.Size {
		end = s.Size
	}
	return Block{Begin: begin, End: end}
}

// Block is a half-open range of global indices
type Block struct {
	Begin, End uint64
}

// Len returns the number of indices in the block
func (b Block) Len() uint64 {
	return b.End - b.Begin
}

// Contains reports whether the global index i falls in the block
func (b Block) Contains(i uint64) bool {
	return i >= b.Begin && i < b.End
}

// Vector is the view of one block of a global scalar vector
type Vector struct {
	Block
	Values []fr.Element
}

// Slice carves the block view of v for the given block of the space
func Slice(s Space, blockIdx uint64, v []fr.Element) Vector {
	b := s.Block(blockIdx)
	return Vector{Block: b, Values: v[b.Begin:b.End]}
}
