package storage

import (
	"math/bits"

	"github.com/hupe1980/pincol/internal/conv"
)

// Growth decides block sizes and maps slot indices to blocks.
type Growth interface {
	// BlockSize returns the number of slots in block b.
	BlockSize(b int) int
	// Locate returns the block holding index and the offset inside that block.
	Locate(index int) (block, offset int)
}

// Doubling grows with blocks twice as large as the previous one.
// The zero value starts with a single-slot block.
type Doubling struct {
	firstBits int
}

// NewDoubling returns a doubling policy whose first block holds firstBlock
// slots, rounded up to a power of two.
func NewDoubling(firstBlock int) Doubling {
	return Doubling{firstBits: bits.Len(uint(conv.CeilPow2(firstBlock) - 1))}
}

// BlockSize implements Growth.
func (d Doubling) BlockSize(b int) int {
	return conv.SaturatingShift(1, d.firstBits+b)
}

// Locate implements Growth.
//
// Block b starts at first*(2^b - 1), so b = floor(log2(index/first + 1)).
func (d Doubling) Locate(index int) (int, int) {
	q := uint(index) >> d.firstBits
	b := bits.Len(q+1) - 1
	start := ((1 << b) - 1) << d.firstBits
	return b, index - start
}

// Linear grows with blocks of identical size.
// The zero value uses single-slot blocks.
type Linear struct {
	blockBits int
}

// NewLinear returns a linear policy with blocks of 1<<blockBits slots.
func NewLinear(blockBits int) Linear {
	if blockBits < 0 {
		blockBits = 0
	}
	return Linear{blockBits: blockBits}
}

// BlockSize implements Growth.
func (l Linear) BlockSize(int) int {
	return conv.SaturatingShift(1, l.blockBits)
}

// Locate implements Growth.
func (l Linear) Locate(index int) (int, int) {
	return index >> l.blockBits, index & (1<<l.blockBits - 1)
}

// capacityOf returns the total number of slots in the first n blocks.
func capacityOf(g Growth, n int) int {
	total := 0
	for b := 0; b < n; b++ {
		total = conv.SaturatingAdd(total, g.BlockSize(b))
	}
	return total
}
