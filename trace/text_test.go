package trace_test

import (
	"bytes"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/memtrace/errors"
	"github.com/wippyai/memtrace/trace"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want trace.Entry
	}{
		{
			line: "1234: malloc 0xb6038060 20",
			want: trace.Entry{Kind: trace.KindAlloc, TID: 1234, Address: 0xb6038060, Size: 20},
		},
		{
			line: "1234: calloc 0xb6038090 4 32 1000 1200",
			want: trace.Entry{Kind: trace.KindZeroedAlloc, TID: 1234, Address: 0xb6038090, Count: 4, Size: 32, Start: 1000, End: 1200},
		},
		{
			line: "77: memalign 0xb6039000 16 64",
			want: trace.Entry{Kind: trace.KindAlignedAlloc, TID: 77, Address: 0xb6039000, Align: 16, Size: 64},
		},
		{
			line: "1: realloc 0x20 0x10 40",
			want: trace.Entry{Kind: trace.KindRealloc, TID: 1, Address: 0x20, PrevAddress: 0x10, Size: 40},
		},
		{
			line: "1: realloc 0x0 0x10 0",
			want: trace.Entry{Kind: trace.KindRealloc, TID: 1, PrevAddress: 0x10},
		},
		{
			line: "1: free 0x20",
			want: trace.Entry{Kind: trace.KindFree, TID: 1, Address: 0x20},
		},
		{
			line: "1: free 0x0 5 6",
			want: trace.Entry{Kind: trace.KindFree, TID: 1, Start: 5, End: 6},
		},
		{
			line: "9: thread_done 0x0",
			want: trace.Entry{Kind: trace.KindThreadDone, TID: 9},
		},
		{
			line: "9: thread_done 0x0 500",
			want: trace.Entry{Kind: trace.KindThreadDone, TID: 9, End: 500},
		},
		{
			line: "9:   malloc   ABCD   8",
			want: trace.Entry{Kind: trace.KindAlloc, TID: 9, Address: 0xabcd, Size: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := trace.ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLine = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine_Errors(t *testing.T) {
	tests := []struct {
		line    string
		contain string
	}{
		{"malloc 0x10 8", "separator"},
		{"abc: malloc 0x10 8", "thread id"},
		{"1: mmap 0x10 8", "unknown entry type"},
		{"1: malloc", "missing"},
		{"1: malloc 0x10", "missing size"},
		{"1: malloc 0xzz 8", "invalid pointer"},
		{"1: calloc 0x10 x 8", "invalid element count"},
		{"1: realloc 0x10 8", "missing size"},
		{"1: malloc 0x10 8 1", "trailing"},
		{"1: thread_done 0x0 1 2", "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := trace.ParseLine(tt.line)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidData}) {
				t.Errorf("error %v is not a decode/invalid_data error", err)
			}
			if !strings.Contains(err.Error(), tt.contain) {
				t.Errorf("error %q does not contain %q", err, tt.contain)
			}
		})
	}
}

func TestEntryString(t *testing.T) {
	tests := []struct {
		entry trace.Entry
		want  string
	}{
		{trace.Entry{Kind: trace.KindAlloc, TID: 1, Address: 0x10, Size: 8}, "1: malloc 0x10 8"},
		{trace.Entry{Kind: trace.KindAlloc, TID: 1, Address: 0x10, Size: 8, Start: 1, End: 2}, "1: malloc 0x10 8 1 2"},
		{trace.Entry{Kind: trace.KindZeroedAlloc, TID: 2, Address: 0xff, Count: 3, Size: 4}, "2: calloc 0xff 3 4"},
		{trace.Entry{Kind: trace.KindAlignedAlloc, TID: 2, Address: 0x1000, Align: 64, Size: 4}, "2: memalign 0x1000 64 4"},
		{trace.Entry{Kind: trace.KindRealloc, TID: 3, Address: 0x20, PrevAddress: 0x10, Size: 9}, "3: realloc 0x20 0x10 9"},
		{trace.Entry{Kind: trace.KindFree, TID: 3, Address: 0x20}, "3: free 0x20"},
		{trace.Entry{Kind: trace.KindThreadDone, TID: 3}, "3: thread_done 0x0"},
		{trace.Entry{Kind: trace.KindThreadDone, TID: 3, End: 77}, "3: thread_done 0x0 77"},
	}

	for _, tt := range tests {
		if got := tt.entry.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDecodeText(t *testing.T) {
	input := `# recorded by malloc debug
1: malloc 0x10 8

1: free 0x10
2: thread_done 0x0
`
	entries, err := trace.DecodeText([]byte(input))
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	want := []trace.Entry{
		{Kind: trace.KindAlloc, TID: 1, Address: 0x10, Size: 8},
		{Kind: trace.KindFree, TID: 1, Address: 0x10},
		{Kind: trace.KindThreadDone, TID: 2},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("DecodeText = %+v, want %+v", entries, want)
	}
}

func TestDecodeText_ErrorLine(t *testing.T) {
	input := "1: malloc 0x10 8\n\n1: frob 0x10\n"
	_, err := trace.DecodeText([]byte(input))
	var te *errors.Error
	if !stderrors.As(err, &te) {
		t.Fatalf("got %v, want *errors.Error", err)
	}
	if te.Line != 3 {
		t.Errorf("Line = %d, want 3", te.Line)
	}
}

func TestEncodeText_RoundTrip(t *testing.T) {
	entries := sampleEntries()

	var buf bytes.Buffer
	if err := trace.EncodeText(&buf, entries); err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	got, err := trace.DecodeText(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, entries)
	}
}

func TestEncodeText_InvalidKind(t *testing.T) {
	var buf bytes.Buffer
	err := trace.EncodeText(&buf, []trace.Entry{{Kind: trace.KindInvalid}})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindInvalidData}) {
		t.Errorf("got %v, want encode/invalid_data", err)
	}
}

func sampleEntries() []trace.Entry {
	return []trace.Entry{
		{Kind: trace.KindAlloc, TID: 100, Address: 0x7f0010, Size: 32, Start: 10, End: 20},
		{Kind: trace.KindZeroedAlloc, TID: 100, Address: 0x7f0040, Count: 2, Size: 16},
		{Kind: trace.KindAlignedAlloc, TID: 101, Address: 0x7f1000, Align: 4096, Size: 128, Start: 30, End: 31},
		{Kind: trace.KindRealloc, TID: 101, Address: 0x7f2000, PrevAddress: 0x7f0010, Size: 64},
		{Kind: trace.KindRealloc, TID: 101, Address: 0x7f3000, Size: 8},
		{Kind: trace.KindFree, TID: 100, Address: 0x7f0040, Start: 40, End: 41},
		{Kind: trace.KindFree, TID: 100},
		{Kind: trace.KindThreadDone, TID: 101, End: 99},
	}
}
