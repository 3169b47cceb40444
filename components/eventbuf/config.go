package eventbuf

import "time"

const (
	DefaultFlushPeriod    = 30 * time.Second
	DefaultBlockThreshold = 100
)

type Config struct {
	FlushPeriod    time.Duration
	BlockThreshold uint
}
