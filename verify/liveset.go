package verify

import (
	"slices"

	"github.com/wippyai/memtrace/trace"
)

// Owner records the entry that made an address live.
type Owner struct {
	Entry trace.Entry
	Line  int // 1-based position in the trace
}

// LiveSet maps live addresses to their owning entry.
type LiveSet struct {
	owners map[uint64]Owner
}

// NewLiveSet creates an empty LiveSet.
func NewLiveSet() *LiveSet {
	return &LiveSet{owners: make(map[uint64]Owner)}
}

// Lookup returns the owner of addr.
func (s *LiveSet) Lookup(addr uint64) (Owner, bool) {
	o, ok := s.owners[addr]
	return o, ok
}

// Contains reports whether addr is live.
func (s *LiveSet) Contains(addr uint64) bool {
	_, ok := s.owners[addr]
	return ok
}

// Insert marks addr live, owned by e at line. Address 0 and addresses that
// are already live are left untouched and Insert reports false.
func (s *LiveSet) Insert(addr uint64, e trace.Entry, line int) bool {
	if addr == 0 {
		return false
	}
	if _, ok := s.owners[addr]; ok {
		return false
	}
	s.owners[addr] = Owner{Entry: e, Line: line}
	return true
}

// Remove frees addr and reports whether it was live.
func (s *LiveSet) Remove(addr uint64) bool {
	if _, ok := s.owners[addr]; !ok {
		return false
	}
	delete(s.owners, addr)
	return true
}

// Len returns the number of live addresses.
func (s *LiveSet) Len() int {
	return len(s.owners)
}

// Addresses returns the live addresses in ascending order.
func (s *LiveSet) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(s.owners))
	for a := range s.owners {
		addrs = append(addrs, a)
	}
	slices.Sort(addrs)
	return addrs
}
