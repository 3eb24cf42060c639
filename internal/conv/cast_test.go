package conv

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, 7, SaturatingAdd(3, 4))
	assert.Equal(t, math.MaxInt, SaturatingAdd(math.MaxInt, 1))
	assert.Equal(t, math.MaxInt, SaturatingAdd(math.MaxInt-1, 1))
}

func TestSaturatingShift(t *testing.T) {
	assert.Equal(t, 64, SaturatingShift(4, 4))
	assert.Equal(t, 0, SaturatingShift(0, 10))
	assert.Equal(t, math.MaxInt, SaturatingShift(4, 200))
	assert.Equal(t, math.MaxInt, SaturatingShift(math.MaxInt/2+1, 1))
}

func TestByteSize(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := ByteSize(16, unsafe.Sizeof(uint64(0)))
		assert.NoError(t, err)
		assert.Equal(t, int64(128), got)
	})

	t.Run("zero element size", func(t *testing.T) {
		got, err := ByteSize(1<<20, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), got)
	})

	t.Run("negative count", func(t *testing.T) {
		_, err := ByteSize(-1, 8)
		assert.Error(t, err)
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := ByteSize(math.MaxInt, 1<<20)
		assert.Error(t, err)
	})
}

func TestInt64ToInt(t *testing.T) {
	got, err := Int64ToInt(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestCeilPow2(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 1000: 1024, 1024: 1024}
	for in, want := range cases {
		assert.Equal(t, want, CeilPow2(in), "CeilPow2(%d)", in)
	}
}
