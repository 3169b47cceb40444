package node

import (
	"time"

	"go.uber.org/zap"

	"github.com/keplerlabs/rollnode/components/eventbuf"
	"github.com/keplerlabs/rollnode/components/migration"
)

const DefaultStatusAddr = ":3300"

type Config struct {
	// StatusAddr is the listen address of the status server.
	StatusAddr string

	// MigrationChunkSize and MigrationSleepInterval tune the event ordinal
	// backfill; zero values pick the engine defaults.
	MigrationChunkSize     uint32
	MigrationSleepInterval time.Duration

	BufferCfg eventbuf.Config
}

func checkConfig(cfg *Config) {
	if cfg.StatusAddr == "" {
		cfg.StatusAddr = DefaultStatusAddr
	}
	if cfg.MigrationChunkSize == 0 {
		zap.S().Debugf("Setting default value for migration chunk size: %d", migration.DefaultChunkSize)
		cfg.MigrationChunkSize = migration.DefaultChunkSize
	}
	if cfg.MigrationSleepInterval <= 0 {
		zap.S().Debugf("Setting default value for migration sleep interval: %s", migration.DefaultSleepInterval.String())
		cfg.MigrationSleepInterval = migration.DefaultSleepInterval
	}
	if cfg.BufferCfg.FlushPeriod <= 0 {
		zap.S().Debugf("Setting default value for event buffer flush period: %s", eventbuf.DefaultFlushPeriod.String())
		cfg.BufferCfg.FlushPeriod = eventbuf.DefaultFlushPeriod
	}
	if cfg.BufferCfg.BlockThreshold == 0 {
		zap.S().Debugf("Setting default value for event buffer block threshold: %d", eventbuf.DefaultBlockThreshold)
		cfg.BufferCfg.BlockThreshold = eventbuf.DefaultBlockThreshold
	}
}
