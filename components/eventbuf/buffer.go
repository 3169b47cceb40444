// Package eventbuf buffers event rows arriving from the live write path and
// flushes them to storage in batches, either on a timer or once enough
// blocks have accumulated.
package eventbuf

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map"
	"go.uber.org/zap"

	"github.com/keplerlabs/rollnode/components/connections/metrics"
	"github.com/keplerlabs/rollnode/types"
)

var defaultBucketTime = []float64{1, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60}

// FlushCB persists the buffered rows and reports which blocks made it to
// storage. The live write path assigns event ordinals before buffering, so a
// flushed block never needs backfilling.
type FlushCB func() FlushResult

type FlushResult struct {
	FlushedBlocks *[]uint64 // blocks whose events were persisted
	Error         error     // error in the storage insertion process
}

type bufferMetrics struct {
	flushTimeHist metrics.Histogram
}

type Buffer struct {
	pending       cmap.ConcurrentMap // block number -> event rows
	flushMutex    sync.Mutex
	flushTicker   *time.Ticker
	newDataChan   chan string
	exitChan      chan bool
	metrics       bufferMetrics
	config        Config
	flushCb       FlushCB
	enabled       bool
	FlushComplete chan FlushResult
}

func NewBuffer(cfg Config) *Buffer {
	b := &Buffer{
		pending:     cmap.New(),
		flushTicker: time.NewTicker(cfg.FlushPeriod),
		newDataChan: make(chan string),
		exitChan:    make(chan bool, 1),
		config:      cfg,
		flushCb: func() FlushResult {
			return FlushResult{
				nil,
				fmt.Errorf("no flush function defined. Call SetFlushFunc"),
			}
		},
		FlushComplete: make(chan FlushResult, 1),
	}

	b.registerMetrics()
	b.flushTicker.Stop()
	return b
}

// Start starts listening for flush triggering events
func (b *Buffer) Start() {
	go b.checkIsTimeToFlush()
	b.enabled = true
}

// Stop stops listening for flush triggering events
func (b *Buffer) Stop() {
	b.enabled = false
	b.flushTicker.Stop()
	// closes the loop in func checkIsTimeToFlush
	b.exitChan <- true

	// wait if a flush is in progress,
	// flushMutex gets released in func callFlush
	b.flushMutex.Lock()
	defer b.flushMutex.Unlock()
}

// SetFlushFunc sets the flush callback function
func (b *Buffer) SetFlushFunc(cb FlushCB) {
	b.flushCb = cb
}

// InsertBlockEvents buffers the event rows of one block. If notify is true,
// the BlockThreshold condition is tested and may trigger an early flush.
func (b *Buffer) InsertBlockEvents(block types.BlockNumber, events interface{}, notify bool) error {
	if !b.enabled {
		return nil
	}

	b.flushMutex.Lock()
	defer b.flushMutex.Unlock()

	b.pending.Set(strconv.FormatUint(uint64(block), 10), events)

	if notify {
		// this is done to write to the newDataChan in a non-blocking way
		select {
		case b.newDataChan <- "block":
		default:
		}
	}

	b.flushTicker.Reset(b.config.FlushPeriod)
	return nil
}

// PendingBlocks returns the number of blocks currently buffered.
func (b *Buffer) PendingBlocks() int {
	return b.pending.Count()
}

// GetPending returns the buffered rows keyed by block number.
func (b *Buffer) GetPending() map[string]interface{} {
	return b.pending.Items()
}

func (b *Buffer) clear() {
	b.pending.Clear()
}

func (b *Buffer) callFlush() {
	zap.S().Debugf("[Buffer] callFlush started ...")
	defer func() {
		zap.S().Debugf("[Buffer] callFlush finished!")
	}()

	b.flushTicker.Stop()
	b.flushMutex.Lock()
	defer b.flushMutex.Unlock()
	defer b.flushTicker.Reset(b.config.FlushPeriod)

	flushStart := time.Now()
	result := b.flushCb()

	b.clear()

	if result.Error == nil && result.FlushedBlocks != nil {
		timeTotal := time.Since(flushStart).Seconds()
		if timeTotal > 0 {
			zap.S().Debugf("[Buffer] Total DB insertion time took %v seconds", timeTotal)
			b.metrics.flushTimeHist.Observe(timeTotal)
		}
	}

	if result.Error != nil {
		zap.S().Errorf(result.Error.Error())
	}

	select {
	case b.FlushComplete <- result:
	default:
	}
}

func (b *Buffer) checkIsTimeToFlush() {
	for {
		select {
		case <-b.flushTicker.C:
			zap.S().Debug("[Buffer] Flushing because of Ticker...")
			b.callFlush()
		case <-b.newDataChan:
			l := uint(b.PendingBlocks())
			if l >= b.config.BlockThreshold {
				zap.S().Debugf("[Buffer] Flushing because of blocks amount: %d", l)
				b.callFlush()
			}
		case <-b.exitChan:
			zap.S().Debug("[Buffer] Exiting...")
			return
		}
	}
}

func (b *Buffer) registerMetrics() {
	b.metrics.flushTimeHist = metrics.NewHistogram(metrics.HistogramOpts{
		Namespace: "rollnode",
		Subsystem: "eventbuf",
		Name:      "flush_total_time_seconds",
		Help:      "Total time spent by function 'flushCb'",
		Buckets:   defaultBucketTime,
	})

	err := metrics.RegisterMetric(b.metrics.flushTimeHist)
	if err != nil {
		zap.S().Error("Could not register Metric: flushTimeHist")
	}
}
