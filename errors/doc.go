// Package errors provides structured error types for the memtrace library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the trace file path, a human-readable detail, the offending
// value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Path("traces/app.txt").
//		Line(42).
//		Detail("unknown entry type %q", "mmap").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ReadFailed(path, cause)
//	err := errors.Truncated(errors.PhaseDecode, 17, "entry address")
//
// Consistency violations found inside a trace are not errors; they are reported
// by the verify package. Errors from this package mean a trace could not be read,
// decoded, encoded or written.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
