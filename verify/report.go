package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/memtrace/trace"
)

// ViolationKind classifies a consistency violation.
type ViolationKind int

const (
	// ReleaseOfUnknownAddress is a free or realloc of an address that is not live.
	ReleaseOfUnknownAddress ViolationKind = iota + 1
	// DuplicateLiveAddress is an allocation returning an address that is still live.
	DuplicateLiveAddress
	// UnrepairableDuplicate is a DuplicateLiveAddress for which repair found
	// no later free of the address.
	UnrepairableDuplicate
)

// String returns the string representation of a ViolationKind.
func (k ViolationKind) String() string {
	switch k {
	case ReleaseOfUnknownAddress:
		return "release-of-unknown-address"
	case DuplicateLiveAddress:
		return "duplicate-live-address"
	case UnrepairableDuplicate:
		return "unrepairable-duplicate"
	default:
		return "unknown"
	}
}

// Violation describes one inconsistency found during a scan.
type Violation struct {
	// Entry is the offending entry as it was when the violation was found.
	Entry trace.Entry
	// Original is the entry that already owned Address. Duplicates only.
	Original trace.Entry

	Kind    ViolationKind
	Address uint64
	// Line is the 1-based position of Entry.
	Line int
	// OriginalLine is the 1-based position of Original. Duplicates only.
	OriginalLine int
	// SwapLine is the 1-based position of the free that was moved to Line
	// by a repair, or 0 when no repair was made.
	SwapLine int
}

// IsDuplicate reports whether v is a duplicate live address, repaired or not.
func (v Violation) IsDuplicate() bool {
	return v.Kind == DuplicateLiveAddress || v.Kind == UnrepairableDuplicate
}

// Repaired reports whether a swap resolved v.
func (v Violation) Repaired() bool {
	return v.SwapLine != 0
}

// Report accumulates the outcome of one scan.
type Report struct {
	Violations []Violation
	// Found is set when any violation was seen.
	Found bool
	// Repaired holds the outcome of the last repair attempt.
	Repaired bool
	// RepairRequested is set when the scan ran with repair enabled.
	RepairRequested bool
}

// Valid reports whether the trace had no violations.
func (r *Report) Valid() bool {
	return !r.Found
}

// Count returns the number of violations of the given kind.
func (r *Report) Count(kind ViolationKind) int {
	n := 0
	for i := range r.Violations {
		if r.Violations[i].Kind == kind {
			n++
		}
	}
	return n
}

// Repairs returns the number of violations resolved by a swap.
func (r *Report) Repairs() int {
	n := 0
	for i := range r.Violations {
		if r.Violations[i].Repaired() {
			n++
		}
	}
	return n
}

func (r *Report) add(v Violation) {
	r.Violations = append(r.Violations, v)
	r.Found = true
}

// Lines renders the violation log, one string per output line.
func (r *Report) Lines() []string {
	var lines []string
	for i := range r.Violations {
		lines = r.Violations[i].appendLines(lines, r.RepairRequested)
	}
	return lines
}

func (v Violation) appendLines(lines []string, repairRequested bool) []string {
	switch v.Kind {
	case ReleaseOfUnknownAddress:
		lines = append(lines,
			fmt.Sprintf("  Line %d: freeing of unknown ptr %#x", v.Line, v.Address),
			"    "+v.Entry.String(),
		)
		if repairRequested {
			lines = append(lines, "  Unable to repair this failure.")
		}
	case DuplicateLiveAddress, UnrepairableDuplicate:
		lines = append(lines,
			fmt.Sprintf("  Line %d: duplicate ptr %#x previously found at line %d", v.Line, v.Address, v.OriginalLine),
			"    Original entry:",
			"      "+v.Original.String(),
			"    Duplicate pointer entry:",
			"      "+v.Entry.String(),
		)
		switch {
		case v.Repaired():
			lines = append(lines, fmt.Sprintf("  Repaired by swapping with the free at line %d.", v.SwapLine))
		case v.Kind == UnrepairableDuplicate:
			lines = append(lines, fmt.Sprintf("  Unable to repair this failure, no later free of %#x.", v.Address))
		}
	}
	return lines
}

// WriteTo writes the violation log to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range r.Lines() {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the violation log as a single string.
func (r *Report) String() string {
	var b strings.Builder
	_, _ = r.WriteTo(&b)
	return b.String()
}
