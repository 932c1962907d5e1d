package verify

import (
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/memtrace/trace"
)

// Result is the outcome of checking one trace.
type Result struct {
	Report *Report
	// Entries is the repaired copy when a swap was made, otherwise the
	// input slice itself.
	Entries []trace.Entry
}

// Checker checks traces with a fixed configuration. It holds no scan state
// and may be used from multiple goroutines.
type Checker struct {
	cfg config
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	return &Checker{cfg: newConfig(opts)}
}

// Check scans entries once and reports every consistency violation.
func Check(entries []trace.Entry, opts ...Option) *Result {
	return NewChecker(opts...).Check(entries)
}

// Check scans entries once and reports every consistency violation. When
// repair is enabled, duplicates are resolved by swapping with the first
// later free of the same address.
func (c *Checker) Check(entries []trace.Entry) *Result {
	res, _ := c.scan(entries)
	return res
}

// scan runs the check and also returns the final live set.
func (c *Checker) scan(entries []trace.Entry) (*Result, *LiveSet) {
	log := c.cfg.log
	rep := &Report{RepairRequested: c.cfg.repair}
	live := NewLiveSet()
	out := entries
	cloned := false

	for i := 0; i < len(out); i++ {
		e := out[i]
		line := i + 1

		if addr, ok := e.Releases(); ok && !live.Remove(addr) {
			log.Debug("release of unknown address",
				zap.Int("line", line),
				zap.String("addr", hexAddr(addr)),
				zap.Stringer("kind", e.Kind))
			rep.add(Violation{
				Kind:    ReleaseOfUnknownAddress,
				Entry:   e,
				Address: addr,
				Line:    line,
			})
		}

		ptr, ok := e.Allocates()
		if !ok {
			continue
		}
		owner, found := live.Lookup(ptr)
		if !found {
			live.Insert(ptr, e, line)
			continue
		}

		v := Violation{
			Kind:         DuplicateLiveAddress,
			Entry:        e,
			Original:     owner.Entry,
			Address:      ptr,
			Line:         line,
			OriginalLine: owner.Line,
		}
		log.Debug("duplicate live address",
			zap.Int("line", line),
			zap.Int("original_line", owner.Line),
			zap.String("addr", hexAddr(ptr)))

		if c.cfg.repair {
			j := findFree(out, i+1, ptr)
			if j < 0 {
				v.Kind = UnrepairableDuplicate
				rep.Repaired = false
			} else {
				if !cloned {
					out = slices.Clone(out)
					cloned = true
				}
				out[i], out[j] = out[j], out[i]
				live.Remove(ptr)
				v.SwapLine = j + 1
				rep.Repaired = true
				log.Debug("repaired duplicate by swap",
					zap.Int("line", line),
					zap.Int("free_line", j+1),
					zap.String("addr", hexAddr(ptr)))
			}
		}
		rep.add(v)
	}

	return &Result{Report: rep, Entries: out}, live
}

// findFree returns the index of the first free of addr at or after from, or -1.
func findFree(entries []trace.Entry, from int, addr uint64) int {
	for j := from; j < len(entries); j++ {
		if entries[j].Kind == trace.KindFree && entries[j].Address == addr {
			return j
		}
	}
	return -1
}

func hexAddr(addr uint64) string {
	return "0x" + strconv.FormatUint(addr, 16)
}
