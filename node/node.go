// Package node wires the migration engine, the event-index storage, the live
// write buffer and the status surface into one background-serviceable unit.
package node

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/keplerlabs/rollnode/components/connections/pubsub"
	"github.com/keplerlabs/rollnode/components/eventbuf"
	"github.com/keplerlabs/rollnode/components/migration"
	"github.com/keplerlabs/rollnode/components/ranges"
	"github.com/keplerlabs/rollnode/components/storage"
	"github.com/keplerlabs/rollnode/types"
)

// ProgressTopic carries one message per migrated chunk plus a final outcome
// message.
const ProgressTopic = "migration.progress"

// ProgressEvent is the payload published on ProgressTopic after each chunk.
type ProgressEvent struct {
	ChunkStart uint64 `json:"chunk_start"`
	ChunkEnd   uint64 `json:"chunk_end"`
	Affected   uint64 `json:"affected"`
	Done       bool   `json:"done"`
}

type Node struct {
	dbConn *gorm.DB
	store  *storage.EventIndexStore
	buffer *eventbuf.Buffer
	topics pubsub.TopicClient
	signal *migration.Signal
	Config Config

	progressMu sync.Mutex
	progress   *ranges.Progress

	statusServer *StatusServer
}

func NewNode(dbConn *gorm.DB, cfg Config) *Node {
	checkConfig(&cfg)

	n := &Node{
		dbConn: dbConn,
		store:  storage.NewEventIndexStore(dbConn),
		buffer: eventbuf.NewBuffer(cfg.BufferCfg),
		topics: pubsub.NewPubSubHandlerChannel(gochannel.Config{}),
		signal: migration.NewSignal(),
		Config: cfg,
	}
	n.buffer.SetFlushFunc(n.flushBufferedEvents)
	return n
}

// MigrateTypes creates or updates the tables the node owns.
func (n *Node) MigrateTypes() error {
	zap.S().Infof("Migrating types")
	return n.dbConn.AutoMigrate(&storage.EventLog{})
}

// Start brings up the live write buffer and the status server, then launches
// the event ordinal migration in the background. It never blocks on the
// migration itself.
func (n *Node) Start(ctx context.Context) error {
	if err := n.MigrateTypes(); err != nil {
		return err
	}

	n.buffer.Start()

	n.statusServer = NewStatusServer(n)
	n.statusServer.Start()

	n.StartMigration(ctx)
	return nil
}

func (n *Node) Stop() {
	zap.S().Info("[Node] - graceful shutdown requested!")
	n.signal.Stop()
	n.buffer.Stop()
	if n.statusServer != nil {
		n.statusServer.Stop()
	}
	zap.S().Info("[Node] - graceful shutdown done!")
}

// StopMigration raises the migration stop signal without shutting the node
// down; the run returns the work done so far as a successful outcome.
func (n *Node) StopMigration() {
	n.signal.Stop()
}

// InsertEvents feeds one freshly executed block's events into the live write
// buffer.
func (n *Node) InsertEvents(block types.BlockNumber, events []storage.EventLog) error {
	return n.buffer.InsertBlockEvents(block, events, true)
}

// StartMigration snapshots the current upper bound and launches the chunked
// backfill as a detached background task. A failed run is surfaced as an
// operational error; the node keeps operating on possibly-unmigrated
// historical data until the migration is retried.
func (n *Node) StartMigration(ctx context.Context) {
	go func() {
		lastBlock, err := n.store.MaxBlockNumber(ctx)
		if err != nil {
			zap.S().Errorf("Could not snapshot migration upper bound: %v", err)
			return
		}

		n.setProgress(ranges.NewProgress(lastBlock))

		cfg := migration.Config{
			ChunkSize:     n.Config.MigrationChunkSize,
			SleepInterval: n.Config.MigrationSleepInterval,
			OnChunk:       n.onMigrationChunk,
		}
		out, err := migration.Run(ctx, n.store, lastBlock, cfg, n.signal)
		if err != nil {
			zap.S().Errorf("Event ordinal migration failed: %v", err)
			return
		}

		zap.S().Infof("Finished event ordinal migration with %d affected events", out.EventsAffected)
		n.publishProgress(ProgressEvent{
			ChunkEnd: uint64(lastBlock),
			Affected: out.EventsAffected,
			Done:     true,
		})
	}()
}

// MigrationStatus returns a snapshot of the current sweep. The zero Status
// is returned before the first sweep has been planned.
func (n *Node) MigrationStatus() ranges.Status {
	n.progressMu.Lock()
	defer n.progressMu.Unlock()
	if n.progress == nil {
		return ranges.Status{}
	}
	return n.progress.Snapshot()
}

// SubscribeProgress registers a consumer of ProgressTopic messages.
func (n *Node) SubscribeProgress(cb func(messages <-chan *message.Message)) error {
	return n.topics.Subscribe(ProgressTopic, cb)
}

func (n *Node) setProgress(p *ranges.Progress) {
	n.progressMu.Lock()
	defer n.progressMu.Unlock()
	n.progress = p
}

func (n *Node) onMigrationChunk(chunk types.BlockRange, affected uint64) {
	n.progressMu.Lock()
	p := n.progress
	n.progressMu.Unlock()
	if p != nil {
		p.MarkDone(chunk)
	}

	n.publishProgress(ProgressEvent{
		ChunkStart: uint64(chunk.Start),
		ChunkEnd:   uint64(chunk.End),
		Affected:   affected,
	})
}

func (n *Node) publishProgress(ev ProgressEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		zap.S().Errorf("Could not encode progress event: %v", err)
		return
	}
	if err := n.topics.Publish(ProgressTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		zap.S().Errorf("Could not publish progress event: %v", err)
	}
}

func (n *Node) flushBufferedEvents() eventbuf.FlushResult {
	var flushed []uint64
	for key, v := range n.buffer.GetPending() {
		block, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return eventbuf.FlushResult{FlushedBlocks: &flushed, Error: err}
		}
		events, ok := v.([]storage.EventLog)
		if !ok {
			continue
		}
		if err := n.store.SaveEvents(context.Background(), types.BlockNumber(block), events); err != nil {
			return eventbuf.FlushResult{FlushedBlocks: &flushed, Error: err}
		}
		flushed = append(flushed, block)
	}
	return eventbuf.FlushResult{FlushedBlocks: &flushed}
}
