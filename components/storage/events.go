// Package storage implements the event-index storage collaborator on top of
// a gorm postgres connection.
package storage

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/keplerlabs/rollnode/types"
)

// EventIndexStore reads and backfills the derived event ordinals.
//
// The gorm connection pool hands out short-lived connections per call, so no
// connection or lock is held across chunk boundaries or throttle sleeps.
type EventIndexStore struct {
	db *gorm.DB
}

func NewEventIndexStore(db *gorm.DB) *EventIndexStore {
	return &EventIndexStore{db: db}
}

// IsRangeMigrated reports whether every candidate row in the range already
// carries its derived ordinals. Read-only; ranges with no rows count as
// migrated.
func (s *EventIndexStore) IsRangeMigrated(ctx context.Context, r types.BlockRange) (bool, error) {
	var unmigrated int64
	tx := s.db.WithContext(ctx).
		Model(&EventLog{}).
		Where("block_number BETWEEN ? AND ?", uint32(r.Start), uint32(r.End)).
		Where("block_ordinal IS NULL").
		Where("NOT (address = ? AND topic = ?)", NativeTokenAddress.Bytes(), TransferEventTopic).
		Count(&unmigrated)
	if tx.Error != nil {
		return false, tx.Error
	}

	return unmigrated == 0, nil
}

// BackfillRange assigns block and transaction ordinals to every candidate
// row in the range that lacks them, inside a single transaction so a crash
// mid-window leaves the window exactly as it was. Returns the number of rows
// affected; 0 on an already-migrated range.
func (s *EventIndexStore) BackfillRange(ctx context.Context, r types.BlockRange) (uint64, error) {
	table := EventLog{}.TableName()
	stmt := fmt.Sprintf(`
		UPDATE %s AS e
		SET block_ordinal = o.block_ord, tx_ordinal = o.tx_ord
		FROM (
			SELECT id,
				ROW_NUMBER() OVER (
					PARTITION BY block_number
					ORDER BY event_index_in_block
				) - 1 AS block_ord,
				ROW_NUMBER() OVER (
					PARTITION BY block_number, tx_index_in_block
					ORDER BY event_index_in_block
				) - 1 AS tx_ord
			FROM %s
			WHERE block_number BETWEEN ? AND ?
				AND NOT (address = ? AND topic = ?)
		) AS o
		WHERE e.id = o.id AND e.block_ordinal IS NULL`, table, table)

	var affected uint64
	err := s.db.WithContext(ctx).Transaction(func(sqlTx *gorm.DB) error {
		res := sqlTx.Exec(stmt,
			uint32(r.Start), uint32(r.End),
			NativeTokenAddress.Bytes(), TransferEventTopic)
		if res.Error != nil {
			return res.Error
		}
		affected = uint64(res.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// SaveEvents persists the events of one freshly executed block. The live
// write path assigns ordinals up front, so blocks saved here never need
// backfilling.
func (s *EventIndexStore) SaveEvents(ctx context.Context, block types.BlockNumber, events []EventLog) error {
	AssignOrdinals(events)

	return s.db.WithContext(ctx).Transaction(func(sqlTx *gorm.DB) error {
		for i := range events {
			events[i].BlockNumber = uint32(block)
		}
		return sqlTx.CreateInBatches(events, 1000).Error
	})
}

// MaxBlockNumber returns the highest block with persisted events, the upper
// bound snapshot handed to the migration engine.
func (s *EventIndexStore) MaxBlockNumber(ctx context.Context) (types.BlockNumber, error) {
	var max uint32
	tx := s.db.WithContext(ctx).
		Model(&EventLog{}).
		Select("COALESCE(MAX(block_number), 0)").
		Find(&max)
	if tx.Error != nil {
		return 0, tx.Error
	}

	return types.BlockNumber(max), nil
}

// AssignOrdinals computes the derived ordinals for one block's events
// in place, mirroring what BackfillRange does in SQL: candidate rows are
// numbered by their event index within the block and within their
// transaction; transfer rows are left unnumbered.
func AssignOrdinals(events []EventLog) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventIndexInBlock < events[j].EventIndexInBlock
	})

	var blockOrd int64
	txOrds := make(map[uint32]int64)
	for i := range events {
		if events[i].IsTransfer() {
			continue
		}
		b, t := blockOrd, txOrds[events[i].TxIndexInBlock]
		events[i].BlockOrdinal = &b
		events[i].TxOrdinal = &t
		blockOrd++
		txOrds[events[i].TxIndexInBlock]++
	}
}
