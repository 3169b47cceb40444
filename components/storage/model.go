package storage

import (
	"bytes"
	"encoding/hex"

	"github.com/keplerlabs/rollnode/components/connections/database/postgres"
	"github.com/keplerlabs/rollnode/types"
)

// Native token transfer events keep ordering metadata of their own and are
// excluded from the derived "without transfers" ordinals.
var (
	// NativeTokenAddress is the system contract address of the native token.
	NativeTokenAddress = types.AddressFromBytes(mustHex("000000000000000000000000000000000000800a"))

	// TransferEventTopic is keccak256("Transfer(address,address,uint256)").
	TransferEventTopic = mustHex("ddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// EventLog is one emitted event. The canonical columns are written by the
// live path at block execution time; BlockOrdinal and TxOrdinal are the
// derived index this node backfills for historical blocks. NULL ordinals on
// a candidate (non-transfer) row mark the block as unmigrated.
type EventLog struct {
	ID                uint64 `gorm:"primaryKey;autoIncrement"`
	BlockNumber       uint32 `gorm:"index:idx_event_logs_block_number"`
	TxHash            []byte
	TxIndexInBlock    uint32
	EventIndexInBlock uint32
	EventIndexInTx    uint32
	Address           []byte
	Topic             []byte
	Value             []byte
	BlockOrdinal      *int64 `gorm:"column:block_ordinal"`
	TxOrdinal         *int64 `gorm:"column:tx_ordinal"`
}

func (EventLog) TableName() string {
	return postgres.GetTableName("event_logs")
}

// IsTransfer reports whether the row is a native token transfer event.
func (e EventLog) IsTransfer() bool {
	return bytes.Equal(e.Address, NativeTokenAddress.Bytes()) && bytes.Equal(e.Topic, TransferEventTopic)
}
