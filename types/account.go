package types

import (
	"encoding/hex"
	"math/big"
)

// AddressLength is the byte length of an account address.
const AddressLength = 20

// Address is a 20-byte account address.
type Address [AddressLength]byte

// AddressFromBytes copies the trailing AddressLength bytes of b into an
// Address, zero-extending shorter inputs on the left.
func AddressFromBytes(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// AccountTreeID uniquely identifies an account's place in the global state
// tree. In binary form it is the 160-bit big-endian account address.
type AccountTreeID struct {
	address Address
}

func NewAccountTreeID(address Address) AccountTreeID {
	return AccountTreeID{address: address}
}

func (id AccountTreeID) Address() Address {
	return id.address
}

// FixedBytes returns the id as its 20-byte array form.
func (id AccountTreeID) FixedBytes() [AddressLength]byte {
	return id.address
}

// Big widens the id to a 256-bit big-endian integer by zero-extension.
func (id AccountTreeID) Big() *big.Int {
	return new(big.Int).SetBytes(id.address[:])
}

// AccountTreeIDFromBig truncates a 256-bit integer to its low 20 bytes.
// The conversion is total: the low bytes are always extracted.
func AccountTreeIDFromBig(v *big.Int) AccountTreeID {
	return AccountTreeID{address: AddressFromBytes(v.Bytes())}
}
