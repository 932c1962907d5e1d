package verify

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/memtrace"
	"github.com/wippyai/memtrace/errors"
	"github.com/wippyai/memtrace/trace"
)

// FileResult is the outcome of verifying one trace file.
type FileResult struct {
	Report *Report
	// RepairErr is set when a repaired trace could not be written.
	RepairErr error
	Path      string
	// RepairPath is the written repaired trace, empty if none was written.
	RepairPath string
	Entries    int
	Format     trace.Format
}

// Valid reports whether the trace had no violations.
func (fr *FileResult) Valid() bool {
	return fr.Report.Valid()
}

// RepairAttempted reports whether a repaired trace should have been written.
func (fr *FileResult) RepairAttempted() bool {
	return fr.Report.RepairRequested && fr.Report.Found && fr.Report.Repaired
}

// VerifyFile reads the trace at path, checks it and, when repair is enabled
// and the last repair attempt succeeded, writes the corrected entries to
// trace.RepairPath(path) in the input's format.
//
// A read failure is returned as an error. A write failure of the repaired
// trace is recorded in FileResult.RepairErr.
func VerifyFile(ctx context.Context, r memtrace.Reader, w memtrace.Writer, path string, opts ...Option) (*FileResult, error) {
	cfg := newConfig(opts)
	log := cfg.log.With(zap.String("path", path))

	entries, format, err := r.ReadTrace(ctx, path)
	if err != nil {
		log.Debug("read trace failed", zap.Error(err))
		return nil, errors.WithPath(err, path)
	}
	log.Debug("read trace", zap.Int("entries", len(entries)), zap.Stringer("format", format))

	res := (&Checker{cfg: cfg}).Check(entries)
	fr := &FileResult{
		Report:  res.Report,
		Path:    path,
		Entries: len(entries),
		Format:  format,
	}

	if !fr.RepairAttempted() {
		return fr, nil
	}

	repairPath := trace.RepairPath(path)
	if err := w.WriteTrace(ctx, repairPath, res.Entries, format); err != nil {
		log.Warn("write repaired trace failed", zap.String("repair_path", repairPath), zap.Error(err))
		fr.RepairErr = err
		return fr, nil
	}
	log.Debug("wrote repaired trace", zap.String("repair_path", repairPath))
	fr.RepairPath = repairPath
	return fr, nil
}
