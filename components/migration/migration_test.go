package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keplerlabs/rollnode"
	"github.com/keplerlabs/rollnode/types"
)

// Each fixture block carries 7 event rows of which 1 is already correctly
// indexed by the live write path, leaving 6 to backfill.
const rowsToBackfill = 6

func TestMain(m *testing.M) {
	rollnode.InitGlobalLogger()
	os.Exit(m.Run())
}

var errBoom = errors.New("boom")

type stubStorage struct {
	mu         sync.Mutex
	pending    map[types.BlockNumber]uint64
	backfilled map[types.BlockNumber]bool
	probes     int
	backfills  int

	failProbes    bool
	failBackfills bool
}

// newStubStorage seeds blocks 0..=4 with rowsToBackfill unmigrated rows each.
func newStubStorage() *stubStorage {
	s := &stubStorage{
		pending:    make(map[types.BlockNumber]uint64),
		backfilled: make(map[types.BlockNumber]bool),
	}
	for n := types.BlockNumber(0); n <= 4; n++ {
		s.pending[n] = rowsToBackfill
	}
	return s
}

// appendLiveBlock mimics the live write path: the new block's rows arrive
// with ordinals already assigned.
func (s *stubStorage) appendLiveBlock(n types.BlockNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[n] = 0
}

func (s *stubStorage) appendStaleBlock(n types.BlockNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[n] = rowsToBackfill
}

func (s *stubStorage) IsRangeMigrated(_ context.Context, r types.BlockRange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failProbes {
		return false, errBoom
	}
	s.probes++
	for n := r.Start; ; n = n.Next() {
		if s.pending[n] > 0 {
			return false, nil
		}
		if n == r.End {
			return true, nil
		}
	}
}

func (s *stubStorage) BackfillRange(_ context.Context, r types.BlockRange) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBackfills {
		return 0, errBoom
	}
	s.backfills++
	var affected uint64
	for n := r.Start; ; n = n.Next() {
		if s.pending[n] > 0 {
			affected += s.pending[n]
			s.pending[n] = 0
			s.backfilled[n] = true
		}
		if n == r.End {
			break
		}
	}
	return affected, nil
}

func (s *stubStorage) pendingRows(n types.BlockNumber) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[n]
}

func (s *stubStorage) wasBackfilled(n types.BlockNumber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backfilled[n]
}

func (s *stubStorage) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probes + s.backfills
}

func TestRun_Basics(t *testing.T) {
	for _, chunkSize := range []uint32{1, 2, 3} {
		chunkSize := chunkSize
		t.Run(fmt.Sprintf("chunk_size_%d", chunkSize), func(t *testing.T) {
			store := newStubStorage()
			cfg := Config{ChunkSize: chunkSize}

			out, err := Run(context.Background(), store, 4, cfg, NewSignal())
			require.NoError(t, err)
			assert.Equal(t, uint64(5*rowsToBackfill), out.EventsAffected)

			// A second run over the same range performs no work.
			out, err = Run(context.Background(), store, 4, cfg, NewSignal())
			require.NoError(t, err)
			assert.Equal(t, uint64(0), out.EventsAffected)
		})
	}
}

func TestRun_StoppingAndResuming(t *testing.T) {
	for _, chunkSize := range []uint32{1, 2, 3} {
		chunkSize := chunkSize
		t.Run(fmt.Sprintf("chunk_size_%d", chunkSize), func(t *testing.T) {
			store := newStubStorage()
			cfg := Config{ChunkSize: chunkSize, SleepInterval: time.Hour}

			// Signal stop right away: the run must end after a single chunk,
			// before paying the inter-chunk sleep.
			stop := NewSignal()
			stop.Stop()
			out, err := Run(context.Background(), store, 4, cfg, stop)
			require.NoError(t, err)
			assert.Equal(t, uint64(chunkSize)*rowsToBackfill, out.EventsAffected)

			// Resuming with a fresh signal picks up exactly the remainder.
			cfg.SleepInterval = 0
			out, err = Run(context.Background(), store, 4, cfg, NewSignal())
			require.NoError(t, err)
			assert.Equal(t, uint64(5-chunkSize)*rowsToBackfill, out.EventsAffected)
		})
	}
}

func TestRun_NewBlocksAddedDuringMigration(t *testing.T) {
	for _, chunkSize := range []uint32{1, 2, 3} {
		chunkSize := chunkSize
		t.Run(fmt.Sprintf("chunk_size_%d", chunkSize), func(t *testing.T) {
			store := newStubStorage()
			cfg := Config{ChunkSize: chunkSize, SleepInterval: time.Hour}

			stop := NewSignal()
			stop.Stop()
			out, err := Run(context.Background(), store, 4, cfg, stop)
			require.NoError(t, err)
			assert.Equal(t, uint64(chunkSize)*rowsToBackfill, out.EventsAffected)

			// A new block appended by the live write path arrives with its
			// ordinals already assigned.
			store.appendLiveBlock(5)

			cfg.SleepInterval = 0
			out, err = Run(context.Background(), store, 5, cfg, NewSignal())
			require.NoError(t, err)
			assert.Equal(t, uint64(5-chunkSize)*rowsToBackfill, out.EventsAffected)
			assert.False(t, store.wasBackfilled(5))
		})
	}
}

func TestRun_UpperBoundIsASnapshot(t *testing.T) {
	store := newStubStorage()
	// A block past the snapshot bound, even an unmigrated one, is out of
	// reach for this run.
	store.appendStaleBlock(5)

	out, err := Run(context.Background(), store, 4, Config{ChunkSize: 2}, NewSignal())
	require.NoError(t, err)
	assert.Equal(t, uint64(5*rowsToBackfill), out.EventsAffected)
	assert.Equal(t, uint64(rowsToBackfill), store.pendingRows(5))
	assert.False(t, store.wasBackfilled(5))
}

func TestRun_RejectsZeroChunkSize(t *testing.T) {
	store := newStubStorage()

	_, err := Run(context.Background(), store, 4, Config{ChunkSize: 0}, NewSignal())
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	assert.Equal(t, 0, store.calls(), "storage must not be touched")
}

func TestRun_PropagatesStorageErrors(t *testing.T) {
	store := newStubStorage()
	store.failProbes = true

	_, err := Run(context.Background(), store, 4, Config{ChunkSize: 2}, NewSignal())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "blocks #0..=#1")

	store = newStubStorage()
	store.failBackfills = true

	_, err = Run(context.Background(), store, 4, Config{ChunkSize: 3}, NewSignal())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "blocks #0..=#2")
}

func TestRun_SkippedChunksDoNotSleep(t *testing.T) {
	store := newStubStorage()
	out, err := Run(context.Background(), store, 4, Config{ChunkSize: 2}, NewSignal())
	require.NoError(t, err)
	require.Equal(t, uint64(5*rowsToBackfill), out.EventsAffected)

	// With every chunk already migrated, an hour-long throttle interval must
	// not be paid: the re-run completes immediately.
	done := make(chan struct{})
	go func() {
		defer close(done)
		out, err = Run(context.Background(), store, 4, Config{ChunkSize: 2, SleepInterval: time.Hour}, NewSignal())
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("re-run over a migrated range did not finish; skipped chunks are sleeping")
	}
	require.NoError(t, err)
	assert.Equal(t, uint64(0), out.EventsAffected)
}

func TestRun_ContextCancellationIsNotAnError(t *testing.T) {
	store := newStubStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Run(ctx, store, 4, Config{ChunkSize: 2}, NewSignal())
	require.NoError(t, err)
	// The first chunk still completes; cancellation is observed at the
	// chunk boundary.
	assert.Equal(t, uint64(2*rowsToBackfill), out.EventsAffected)
}

func TestRun_OnChunkHook(t *testing.T) {
	store := newStubStorage()
	var chunks []types.BlockRange
	var total uint64

	cfg := Config{
		ChunkSize: 2,
		OnChunk: func(chunk types.BlockRange, affected uint64) {
			chunks = append(chunks, chunk)
			total += affected
		},
	}
	out, err := Run(context.Background(), store, 4, cfg, NewSignal())
	require.NoError(t, err)

	assert.Equal(t, out.EventsAffected, total)
	assert.Equal(t, []types.BlockRange{
		{Start: 0, End: 1},
		{Start: 2, End: 3},
		{Start: 4, End: 4},
	}, chunks)
}

func TestMigrate_Defaults(t *testing.T) {
	store := newStubStorage()

	// The default chunk size covers the whole fixture in one window, so the
	// run completes without paying any inter-chunk sleep.
	err := Migrate(context.Background(), store, 4, NewSignal())
	require.NoError(t, err)
	assert.Equal(t, 1, store.backfills)
	for n := types.BlockNumber(0); n <= 4; n++ {
		assert.Equal(t, uint64(0), store.pendingRows(n))
	}
}

func TestSignal(t *testing.T) {
	s := NewSignal()
	assert.False(t, s.Stopped())

	s.Stop()
	assert.True(t, s.Stopped())

	// Stopping twice is fine.
	s.Stop()
	assert.True(t, s.Stopped())
}
