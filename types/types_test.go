package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockNumber_Arithmetic(t *testing.T) {
	n := BlockNumber(10)

	assert.Equal(t, BlockNumber(15), n.Add(5))
	assert.Equal(t, BlockNumber(7), n.Sub(3))
	assert.Equal(t, BlockNumber(11), n.Next())
	assert.Equal(t, BlockNumber(9), n.Prev())
}

func TestBlockNumber_Saturation(t *testing.T) {
	top := BlockNumber(math.MaxUint32)
	assert.Equal(t, top, top.Add(1))
	assert.Equal(t, top, top.Next())

	zero := BlockNumber(0)
	assert.Equal(t, zero, zero.Sub(1))
	assert.Equal(t, zero, zero.Prev())
	assert.Equal(t, zero, BlockNumber(5).Sub(100))
}

func TestBlockNumber_Ordering(t *testing.T) {
	assert.True(t, BlockNumber(1) < BlockNumber(2))
	assert.True(t, BlockNumber(2) > BlockNumber(1))
	assert.Equal(t, BlockNumber(7), BlockNumber(7))
	assert.Equal(t, BlockNumber(3), MinBlockNumber(5, 3))
	assert.Equal(t, BlockNumber(3), MinBlockNumber(3, 5))
}

func TestOperationID_Saturation(t *testing.T) {
	top := OperationID(math.MaxUint64)
	assert.Equal(t, top, top.Add(1))
	assert.Equal(t, OperationID(0), OperationID(3).Sub(4))
	assert.Equal(t, OperationID(4), OperationID(3).Next())
}

func TestBlockRange(t *testing.T) {
	r := NewBlockRange(3, 7)
	assert.Equal(t, uint64(5), r.Len())
	assert.True(t, r.Contains(3))
	assert.True(t, r.Contains(7))
	assert.False(t, r.Contains(8))
	assert.False(t, r.Contains(2))
	assert.Equal(t, "blocks #3..=#7", r.String())

	// Reversed bounds are normalized.
	assert.Equal(t, NewBlockRange(3, 7), NewBlockRange(7, 3))

	single := NewBlockRange(4, 4)
	assert.Equal(t, uint64(1), single.Len())
}
