// Package migration implements the resumable chunked backfill of derived
// event ordering data over a historical block range.
//
// The sweep is strictly sequential: a chunk is confirmed migrated (or
// backfilled) before the next one starts, so downstream consumers can rely
// on a migrated-prefix property. Progress is never checkpointed separately;
// resumption after a stop or crash rests entirely on the storage probe being
// read-only and the backfill being atomic per chunk.
package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/keplerlabs/rollnode/types"
)

// Storage is the collaborator the engine drives. Implementations must keep
// IsRangeMigrated free of side effects and BackfillRange atomic per call:
// either every row in the range ends up migrated or none does.
type Storage interface {
	// IsRangeMigrated reports whether every block in the range already
	// carries correct derived ordinals.
	IsRangeMigrated(ctx context.Context, r types.BlockRange) (bool, error)

	// BackfillRange assigns derived ordinals to every candidate row in the
	// range and returns the number of rows affected. Calling it on an
	// already-migrated range is a no-op returning 0.
	BackfillRange(ctx context.Context, r types.BlockRange) (uint64, error)
}

const (
	// DefaultChunkSize keeps each chunk small enough to migrate atomically
	// without starving concurrent storage consumers.
	DefaultChunkSize uint32 = 100_000

	// DefaultSleepInterval bounds the backfill's load on shared storage.
	DefaultSleepInterval = 1 * time.Second

	defaultName = "event_ordinals"
)

// ErrInvalidChunkSize is returned by Run before any storage access when the
// configured chunk size is zero.
var ErrInvalidChunkSize = errors.New("migration: chunk size must be positive")

type Config struct {
	// Name identifies the migration in logs and metrics.
	Name string

	// ChunkSize is the number of blocks per chunk. Must be positive.
	ChunkSize uint32

	// SleepInterval is slept after each chunk that performed work. Chunks
	// skipped as already migrated pay no sleep, so re-runs over completed
	// ranges are fast.
	SleepInterval time.Duration

	// OnChunk, if set, is invoked after each chunk is confirmed migrated
	// with the number of rows it affected (0 for skipped chunks).
	OnChunk func(chunk types.BlockRange, affected uint64)
}

// Output accumulates the work a run performed.
type Output struct {
	EventsAffected uint64
}

// Migrate runs the event ordinal backfill with production defaults and logs
// the outcome. Should be run as a background task.
func Migrate(ctx context.Context, store Storage, lastBlock types.BlockNumber, stop *Signal) error {
	out, err := Run(ctx, store, lastBlock, Config{
		ChunkSize:     DefaultChunkSize,
		SleepInterval: DefaultSleepInterval,
	}, stop)
	if err != nil {
		return err
	}

	zap.S().Infof("Finished event ordinal migration with %d affected events", out.EventsAffected)
	return nil
}

// Run sweeps blocks 0..=lastBlock in fixed-size inclusive chunks, backfilling
// derived event ordinals for chunks that lack them. The stop signal is polled
// at chunk boundaries; observing it returns the accumulated Output as a
// successful early result, never an error. Context cancellation is treated
// the same way. Any storage failure aborts the run immediately, annotated
// with the chunk being processed.
//
// Blocks past lastBlock are never touched: the caller fixes the bound as a
// snapshot, so data appended concurrently (which the live write path indexes
// at write time) cannot be double-processed.
func Run(ctx context.Context, store Storage, lastBlock types.BlockNumber, cfg Config, stop *Signal) (Output, error) {
	if cfg.ChunkSize == 0 {
		return Output{}, ErrInvalidChunkSize
	}
	name := cfg.Name
	if name == "" {
		name = defaultName
	}

	var out Output
	chunkStart := types.BlockNumber(0)

	zap.S().Infof("Reassigning event ordinals for blocks %d..=%d in chunks of %d blocks",
		chunkStart, lastBlock, cfg.ChunkSize)

	for {
		chunkEnd := types.MinBlockNumber(lastBlock, chunkStart.Add(cfg.ChunkSize-1))
		chunk := types.BlockRange{Start: chunkStart, End: chunkEnd}

		migrated, err := store.IsRangeMigrated(ctx, chunk)
		if err != nil {
			return Output{}, fmt.Errorf("failed checking event ordinals for %s: %w", chunk, err)
		}

		var affected uint64
		if migrated {
			zap.S().Debugf("Event ordinals are migrated for %s", chunk)
		} else {
			zap.S().Debugf("Migrating event ordinals for %s", chunk)
			affected, err = store.BackfillRange(ctx, chunk)
			if err != nil {
				return Output{}, fmt.Errorf("failed migrating events in %s: %w", chunk, err)
			}
			zap.S().Debugf("Migrated %d events in %s", affected, chunk)
			out.EventsAffected += affected
		}

		setRemainingBlocks(name, uint64(lastBlock)-uint64(chunkEnd))
		addEventsAffected(name, affected)
		if cfg.OnChunk != nil {
			cfg.OnChunk(chunk, affected)
		}

		if stop.Stopped() || ctx.Err() != nil {
			zap.S().Info("Stop signal received; event ordinal migration shutting down")
			return out, nil
		}
		if chunkEnd >= lastBlock {
			break
		}
		chunkStart = chunkEnd.Next()

		if !migrated {
			select {
			case <-ctx.Done():
				zap.S().Info("Context closed; event ordinal migration shutting down")
				return out, nil
			case <-time.After(cfg.SleepInterval):
			}
		}
	}

	return out, nil
}
