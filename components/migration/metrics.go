package migration

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/keplerlabs/rollnode/components/connections/metrics"
)

type migrationMetrics struct {
	remaining metrics.Gauge
	affected  metrics.Counter
}

var (
	metricsMu  sync.Mutex
	metricsMap = make(map[string]*migrationMetrics)
)

func setRemainingBlocks(name string, count uint64) {
	m := getOrCreateMetrics(name)
	if m == nil {
		return
	}
	m.remaining.Set(float64(count))
}

func addEventsAffected(name string, delta uint64) {
	if delta == 0 {
		return
	}
	m := getOrCreateMetrics(name)
	if m == nil {
		return
	}
	m.affected.Add(float64(delta))
}

func getOrCreateMetrics(name string) *migrationMetrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if m, ok := metricsMap[name]; ok {
		return m
	}

	m := &migrationMetrics{
		remaining: metrics.NewGauge(metrics.GaugeOpts{
			Namespace: "rollnode",
			Subsystem: "migration",
			Name:      fmt.Sprintf("%s_remaining_blocks", name),
			Help:      fmt.Sprintf("Blocks not yet swept by migration %s", name),
		}),
		affected: metrics.NewSimpleCounter(metrics.CounterOpts{
			Namespace: "rollnode",
			Subsystem: "migration",
			Name:      fmt.Sprintf("%s_events_affected_total", name),
			Help:      fmt.Sprintf("Derived rows backfilled by migration %s", name),
		}),
	}

	if err := metrics.RegisterMetric(m.remaining); err != nil {
		zap.S().Warnf("Could not register remaining-blocks metric for %s: %v", name, err)
		return nil
	}
	if err := metrics.RegisterMetric(m.affected); err != nil {
		zap.S().Warnf("Could not register events-affected metric for %s: %v", name, err)
		return nil
	}

	metricsMap[name] = m
	return m
}
