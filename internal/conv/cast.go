package conv

import (
	"fmt"
	"math"
	"math/bits"
)

// SaturatingAdd returns a+b for non-negative operands, clamped to math.MaxInt.
func SaturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// SaturatingShift returns v<<shift, clamped to math.MaxInt.
func SaturatingShift(v int, shift int) int {
	if v <= 0 {
		return 0
	}
	if shift >= bits.UintSize-1 || v > math.MaxInt>>shift {
		return math.MaxInt
	}
	return v << shift
}

// ByteSize returns count*elemSize as int64.
// It fails if the product does not fit into int64.
func ByteSize(count int, elemSize uintptr) (int64, error) {
	if count < 0 {
		return 0, fmt.Errorf("integer overflow: negative count %d", count)
	}
	hi, lo := bits.Mul64(uint64(count), uint64(elemSize))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("integer overflow: %d elements of %d bytes", count, elemSize)
	}
	return int64(lo), nil
}

// Int64ToInt converts int64 to int safely.
func Int64ToInt(v int64) (int, error) {
	if v > int64(math.MaxInt) || v < int64(math.MinInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int", v)
	}
	return int(v), nil
}

// CeilPow2 rounds v up to the next power of two. Values <= 1 yield 1.
func CeilPow2(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}
