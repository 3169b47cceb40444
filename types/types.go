// Package types declares the primitive identifier types used across the node.
//
// Every identifier wraps an unsigned integer denoting a position in a
// sequential domain. The zero value always means the start of the domain.
// Arithmetic is saturating: Add clamps at the type maximum, Sub at zero,
// so chunk-boundary math can never wrap around.
package types

import "math"

// BlockNumber is the sequential index of an L2 block.
type BlockNumber uint32

// BatchNumber is the sequential index of an L1 batch.
type BatchNumber uint32

// L1BlockNumber is the sequential index of an L1 network block.
type L1BlockNumber uint32

// Nonce is an account nonce.
type Nonce uint32

// OperationID is the unique identifier of a priority operation.
type OperationID uint64

// L1ChainID identifies the settlement (L1) network.
type L1ChainID uint64

// Add returns n+delta, clamping at the maximum block number.
func (n BlockNumber) Add(delta uint32) BlockNumber {
	return BlockNumber(satAdd32(uint32(n), delta))
}

// Sub returns n-delta, clamping at zero.
func (n BlockNumber) Sub(delta uint32) BlockNumber {
	return BlockNumber(satSub32(uint32(n), delta))
}

// Next returns the block number immediately after n, clamping at the maximum.
func (n BlockNumber) Next() BlockNumber {
	return n.Add(1)
}

// Prev returns the block number immediately before n, clamping at zero.
func (n BlockNumber) Prev() BlockNumber {
	return n.Sub(1)
}

// Add returns n+delta, clamping at the maximum batch number.
func (n BatchNumber) Add(delta uint32) BatchNumber {
	return BatchNumber(satAdd32(uint32(n), delta))
}

// Sub returns n-delta, clamping at zero.
func (n BatchNumber) Sub(delta uint32) BatchNumber {
	return BatchNumber(satSub32(uint32(n), delta))
}

// Next returns the batch number immediately after n, clamping at the maximum.
func (n BatchNumber) Next() BatchNumber {
	return n.Add(1)
}

// Add returns n+delta, clamping at the maximum L1 block number.
func (n L1BlockNumber) Add(delta uint32) L1BlockNumber {
	return L1BlockNumber(satAdd32(uint32(n), delta))
}

// Sub returns n-delta, clamping at zero.
func (n L1BlockNumber) Sub(delta uint32) L1BlockNumber {
	return L1BlockNumber(satSub32(uint32(n), delta))
}

// Add returns n+delta, clamping at the maximum nonce.
func (n Nonce) Add(delta uint32) Nonce {
	return Nonce(satAdd32(uint32(n), delta))
}

// Sub returns n-delta, clamping at zero.
func (n Nonce) Sub(delta uint32) Nonce {
	return Nonce(satSub32(uint32(n), delta))
}

// Add returns id+delta, clamping at the maximum operation id.
func (id OperationID) Add(delta uint64) OperationID {
	return OperationID(satAdd64(uint64(id), delta))
}

// Sub returns id-delta, clamping at zero.
func (id OperationID) Sub(delta uint64) OperationID {
	return OperationID(satSub64(uint64(id), delta))
}

// Next returns the operation id immediately after id, clamping at the maximum.
func (id OperationID) Next() OperationID {
	return id.Add(1)
}

func satAdd32(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

func satSub32(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}

func satAdd64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func satSub64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func MinBlockNumber(a, b BlockNumber) BlockNumber {
	if a < b {
		return a
	}
	return b
}
