package memtrace

import (
	"context"

	"github.com/wippyai/memtrace/trace"
)

// Reader loads a trace from storage
type Reader interface {
	ReadTrace(ctx context.Context, path string) ([]trace.Entry, trace.Format, error)
}

// Writer persists a trace to storage
type Writer interface {
	WriteTrace(ctx context.Context, path string, entries []trace.Entry, format trace.Format) error
}

// Codec reads and writes traces
type Codec interface {
	Reader
	Writer
}

var _ Codec = trace.FileCodec{}
