package trace

// Kind identifies the allocator call an Entry records.
type Kind uint8

const (
	KindInvalid      Kind = iota
	KindAlloc             // malloc
	KindZeroedAlloc       // calloc
	KindAlignedAlloc      // memalign
	KindRealloc           // realloc
	KindFree              // free
	KindThreadDone        // thread exit marker
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindAlloc:        "malloc",
	KindZeroedAlloc:  "calloc",
	KindAlignedAlloc: "memalign",
	KindRealloc:      "realloc",
	KindFree:         "free",
	KindThreadDone:   "thread_done",
}

// String returns the name used for the kind in text traces.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is one of the recorded entry kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindThreadDone
}

// IsAllocation reports whether entries of this kind produce a new address.
func (k Kind) IsAllocation() bool {
	switch k {
	case KindAlloc, KindZeroedAlloc, KindAlignedAlloc, KindRealloc:
		return true
	}
	return false
}

// ParseKind returns the Kind for a text trace name.
func ParseKind(name string) (Kind, bool) {
	for k := KindAlloc; k <= KindThreadDone; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// Entry is one recorded allocator event.
//
// Only Kind, Address and PrevAddress carry meaning for consistency checking.
// The remaining fields are payload preserved across decode and encode.
type Entry struct {
	Kind Kind
	TID  int64
	// Address is the returned pointer for allocations and the freed pointer
	// for KindFree. Zero means no address.
	Address uint64
	// PrevAddress is the pointer passed to realloc. Zero means realloc acted
	// as a fresh allocation.
	PrevAddress uint64
	Size        uint64
	Count       uint64 // calloc element count
	Align       uint64 // memalign alignment
	Start       uint64 // ns
	End         uint64 // ns
}

// Allocates returns the address this entry makes live, if any.
func (e Entry) Allocates() (uint64, bool) {
	if e.Kind.IsAllocation() && e.Address != 0 {
		return e.Address, true
	}
	return 0, false
}

// Releases returns the address this entry frees, if any.
func (e Entry) Releases() (uint64, bool) {
	switch e.Kind {
	case KindFree:
		return e.Address, e.Address != 0
	case KindRealloc:
		return e.PrevAddress, e.PrevAddress != 0
	}
	return 0, false
}

// Format identifies the on-disk encoding of a trace.
type Format uint8

const (
	FormatText Format = iota
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	default:
		return "unknown"
	}
}
