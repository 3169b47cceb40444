package types

import "fmt"

// BlockRange is an inclusive interval [Start, End] over block numbers.
type BlockRange struct {
	Start BlockNumber
	End   BlockNumber
}

func NewBlockRange(start, end BlockNumber) BlockRange {
	if start > end {
		start, end = end, start
	}
	return BlockRange{Start: start, End: end}
}

// Len returns the number of blocks in the range.
func (r BlockRange) Len() uint64 {
	return uint64(r.End) - uint64(r.Start) + 1
}

func (r BlockRange) Contains(n BlockNumber) bool {
	return n >= r.Start && n <= r.End
}

func (r BlockRange) String() string {
	return fmt.Sprintf("blocks #%d..=#%d", r.Start, r.End)
}
