package rollnode

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitGlobalLogger installs the process-wide sugared logger used across all
// components via zap.S().
func InitGlobalLogger() {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(logger)
}
