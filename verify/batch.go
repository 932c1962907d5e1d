package verify

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/memtrace/errors"
)

// BatchResult is the outcome for one path of a Batch.
type BatchResult struct {
	Result *FileResult
	// Err is the read failure for Path, if any.
	Err  error
	Path string
}

// Batch verifies each path with VerifyFile using the configured codec and
// concurrency. A failure on one file does not stop the others. Results are
// returned in input order.
func Batch(ctx context.Context, paths []string, opts ...Option) []BatchResult {
	cfg := newConfig(opts)
	results := make([]BatchResult, len(paths))
	done := make([]bool, len(paths))

	var (
		mu   sync.Mutex
		next int
	)
	// emit reports the longest completed prefix. Callers hold mu.
	emit := func() {
		for next < len(paths) && done[next] {
			if cfg.progress != nil {
				cfg.progress(results[next])
			}
			next++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			br := BatchResult{Path: path}
			if err := gctx.Err(); err != nil {
				br.Err = errors.ReadFailed(path, err)
			} else {
				br.Result, br.Err = VerifyFile(gctx, cfg.codec, cfg.codec, path, withConfig(cfg))
			}
			mu.Lock()
			results[i] = br
			done[i] = true
			emit()
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func withConfig(cfg config) Option {
	return func(c *config) { *c = cfg }
}
