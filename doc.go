// Package memtrace verifies recorded memory allocation traces.
//
// A trace is the ordered list of malloc, calloc, memalign, realloc and free
// calls captured from a process. memtrace replays the effect of those calls
// on a simulated address space and reports every place where the recording
// cannot have come from a real allocator: an address handed out while still
// live, or an address freed or reallocated while not live. One class of
// error, a free recorded after the allocation that reused its address, can
// be repaired by swapping the two entries.
//
// # Architecture Overview
//
//	memtrace/            Root package with the trace Reader and Writer interfaces
//	├── trace/           Entry model, text and binary formats, file I/O
//	├── verify/          Consistency checker, repair, file and batch pipeline
//	├── watch/           Re-verification of traces when files change
//	├── errors/          Structured error types for I/O and format failures
//	└── cmd/verifytrace/ Command line tool
//
// # Quick Start
//
// Check entries already in memory:
//
//	res := verify.Check(entries, verify.WithRepair(true))
//	if !res.Report.Valid() {
//	    fmt.Print(res.Report)
//	}
//	if res.Report.Repaired {
//	    err := trace.WriteFile(trace.RepairPath(path), res.Entries, trace.FormatText)
//	}
//
// Or run the whole read, check and repair pipeline on a file:
//
//	fr, err := verify.VerifyFile(ctx, trace.FileCodec{}, trace.FileCodec{}, path,
//	    verify.WithRepair(true))
//
// # Errors
//
// Inconsistencies in a trace are data, reported as verify.Violation values.
// Failures to read, decode or write a trace are errors from the errors
// package and mean the check could not be completed.
//
// # Thread Safety
//
// Check keeps all scan state local to the call, so independent traces may be
// checked concurrently. A single entries slice must not be shared between
// concurrent calls that may repair it.
package memtrace
