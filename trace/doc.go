// Package trace provides the allocation trace data model and its file formats.
//
// A trace is an ordered sequence of Entry values recorded from a process's
// allocator: malloc, calloc, memalign, realloc and free calls plus thread exit
// markers. The position of an entry in the sequence is its only notion of time.
//
// # Text Format
//
// One entry per line:
//
//	1234: malloc 0xb6038060 20
//	1234: calloc 0xb6038090 4 32 1000 1200
//	1234: memalign 0xb6039000 16 64
//	1234: realloc 0xb603a000 0xb6038060 40
//	1234: free 0xb603a000
//	1234: thread_done 0x0
//
// Pointers are hexadecimal, counts and sizes are decimal. The two trailing
// numbers, when present, are the start and end timestamps in nanoseconds
// (thread_done records only its end time). Blank lines and lines starting
// with '#' are ignored.
//
// # Binary Format
//
// A binary trace starts with the magic "MTRC" and a little-endian uint32
// version, followed by one record per entry: a kind byte and eight unsigned
// LEB128 fields (tid, address, previous address, size, count, align, start,
// end).
//
// # Files
//
//	entries, format, err := trace.ReadFile("app.trace")
//	...
//	err = trace.WriteFile(trace.RepairPath("app.trace"), entries, format)
//
// ReadFile also accepts .zip archives and decodes their first member.
package trace
