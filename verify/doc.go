// Package verify checks allocation traces for consistency and repairs them.
//
// Check performs a single forward scan over the entries while keeping a
// LiveSet of the addresses the simulated allocator has handed out. Two
// classes of violation are reported:
//
//   - ReleaseOfUnknownAddress: a free, or the old pointer of a realloc,
//     names an address that is not live. These are never repaired.
//   - DuplicateLiveAddress: an allocation returns an address that is still
//     live. With repair enabled the checker searches forward for the first
//     free of that address and swaps it with the allocation, which undoes the
//     common recording race where the free of one thread is written after
//     another thread's allocation reused the address. When no such free
//     exists the violation is reported as UnrepairableDuplicate.
//
// Address 0 is never tracked. Thread exit markers are ignored.
//
// The scan never stops early; every violation is collected in the Report.
// The input slice is not modified: a repair works on a copy returned in
// Result.Entries, in which only the swapped positions differ.
//
// # Files
//
// VerifyFile reads a trace through a memtrace.Reader, checks it and, when a
// repair succeeded, writes the corrected trace next to the original with the
// trace.RepairSuffix suffix. Batch does the same for many files with bounded
// concurrency. Read and write failures are returned as errors and are never
// confused with an invalid trace.
package verify
