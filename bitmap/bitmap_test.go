package bitmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/a6tools/a6fw/bitmap"
)

func TestNewAllFalse(t *testing.T) {
	var a = bitmap.New(11)

	for i := 0; i < a.Len(); i++ {
		assert.False(t, a.Get(i))
	}
}

func TestSetAndGet(t *testing.T) {
	var a = bitmap.New(11)

	var previous = a.Set(7)
	require.False(t, previous)

	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, i == 7, a.Get(i))
	}

	previous = a.Set(7)
	assert.True(t, previous)
}

func TestClear(t *testing.T) {
	var a = bitmap.New(11)

	a.Set(7)
	a.Set(8)
	var previous = a.Clear(7)
	require.True(t, previous)

	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, i == 8, a.Get(i))
	}
}

func TestFirstFalseEmpty(t *testing.T) {
	var a = bitmap.New(0)

	_, ok := a.FirstFalse()
	assert.False(t, ok)
	assert.True(t, a.All())
}

func TestFirstFalseAllSet(t *testing.T) {
	var a = bitmap.New(70) // spans more than one 64-bit word

	for i := 0; i < a.Len(); i++ {
		a.Set(i)
	}

	_, ok := a.FirstFalse()
	assert.False(t, ok)
	assert.True(t, a.All())
}

func TestFirstFalseFindsLeastIndex(t *testing.T) {
	var a = bitmap.New(200)

	for i := 0; i < a.Len(); i++ {
		a.Set(i)
	}
	a.Clear(130)
	a.Clear(5)

	index, ok := a.FirstFalse()
	require.True(t, ok)
	assert.Equal(t, 5, index)
}

func TestFirstFalseIgnoresTrailingPaddingBits(t *testing.T) {
	// Length 5 lives in a single word with 59 unused padding bits above it.
	// None of those padding bits should ever be reported as "false".
	var a = bitmap.New(5)

	for i := 0; i < a.Len(); i++ {
		a.Set(i)
	}

	_, ok := a.FirstFalse()
	assert.False(t, ok)
}

func TestOutOfRangeIndexPanics(t *testing.T) {
	var a = bitmap.New(4)

	assert.Panics(t, func() { a.Get(4) })
	assert.Panics(t, func() { a.Get(-1) })
	assert.Panics(t, func() { a.Set(10) })
	assert.Panics(t, func() { a.Clear(10) })
}

func TestFirstFalseIsLeastUnsetIndex(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var length = rapid.IntRange(0, 256).Draw(t, "length")
		var a = bitmap.New(length)

		var clearedCount = rapid.IntRange(0, length).Draw(t, "clearedCount")
		var cleared = make(map[int]bool, clearedCount)

		for i := 0; i < length; i++ {
			a.Set(i)
		}

		for i := 0; i < clearedCount; i++ {
			var idx = rapid.IntRange(0, length-1).Draw(t, "idx")
			a.Clear(idx)
			cleared[idx] = true
		}

		var expected = -1
		for i := 0; i < length; i++ {
			if cleared[i] {
				expected = i
				break
			}
		}

		index, ok := a.FirstFalse()
		if expected == -1 {
			assert.False(t, ok)
		} else {
			require.True(t, ok)
			assert.Equal(t, expected, index)
		}
	})
}
