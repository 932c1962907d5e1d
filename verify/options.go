package verify

import (
	"go.uber.org/zap"

	"github.com/wippyai/memtrace"
	"github.com/wippyai/memtrace/trace"
)

type config struct {
	log         *zap.Logger
	codec       memtrace.Codec
	progress    func(BatchResult)
	repair      bool
	concurrency int
}

func newConfig(opts []Option) config {
	cfg := config{
		codec:       trace.FileCodec{},
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = Logger()
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}
	return cfg
}

// Option configures checking and the file pipeline.
type Option func(*config)

// WithRepair enables the swap repair of duplicate live addresses.
func WithRepair(repair bool) Option {
	return func(c *config) { c.repair = repair }
}

// WithLogger sets the logger. The package logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithCodec sets the storage used by Batch. Defaults to trace.FileCodec.
func WithCodec(codec memtrace.Codec) Option {
	return func(c *config) { c.codec = codec }
}

// WithConcurrency bounds how many files Batch verifies at once.
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

// WithProgress registers a callback invoked by Batch for each result, in
// input order, as soon as all earlier results are available. Calls are
// serialized.
func WithProgress(fn func(BatchResult)) Option {
	return func(c *config) { c.progress = fn }
}
