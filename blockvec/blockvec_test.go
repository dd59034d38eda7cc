package blockvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionCoversTheSpace(t *testing.T) {
	for _, size := range []uint64{1, 2, 7, 16, 101} {
		for nbBlocks := uint64(1); nbBlocks <= size+2; nbBlocks++ {
			s := NewSpace(size).Partition(nbBlocks)

			var covered uint64
			var prevEnd uint64
			for b := uint64(0); b < s.NbBlocks; b++ {
				blk := s.Block(b)
				assert.Equal(t, prevEnd, blk.Begin, "blocks must be contiguous")
				assert.LessOrEqual(t, blk.Begin, blk.End)
				covered += blk.Len()
				prevEnd = blk.End
			}
			assert.Equal(t, size, covered, "size %d, %d blocks", size, nbBlocks)
		}
	}
}

func TestPartitionClamps(t *testing.T) {
	s := NewSpace(4).Partition(100)
	assert.EqualValues(t, 4, s.NbBlocks)

	s = NewSpace(4).Partition(0)
	assert.EqualValues(t, 1, s.NbBlocks)
}

func TestContains(t *testing.T) {
	b := Block{Begin: 3, End: 7}
	assert.False(t, b.Contains(2))
	assert.True(t, b.Contains(3))
	assert.True(t, b.Contains(6))
	assert.False(t, b.Contains(7))
}
