package trace_test

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/memtrace/errors"
	"github.com/wippyai/memtrace/trace"
)

func TestBinary_RoundTrip(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, trace.Entry{Kind: trace.KindAlloc, TID: -1, Address: ^uint64(0), Size: 1})

	data, err := trace.EncodeBinary(entries)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	if !trace.IsBinary(data) {
		t.Fatal("encoded data lacks binary magic")
	}
	got, err := trace.DecodeBinary(data)
	if err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, entries)
	}
}

func TestBinary_Empty(t *testing.T) {
	data, err := trace.EncodeBinary(nil)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	if len(data) != 8 {
		t.Errorf("header length = %d, want 8", len(data))
	}
	got, err := trace.DecodeBinary(data)
	if err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d entries, want 0", len(got))
	}
}

func TestDecodeBinary_Errors(t *testing.T) {
	valid, err := trace.EncodeBinary([]trace.Entry{{Kind: trace.KindAlloc, Address: 0x1000, Size: 300}})
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}

	badKind := append([]byte{}, valid[:8]...)
	badKind = append(badKind, 0x63, 0, 0, 0, 0, 0, 0, 0, 0)

	overflow := append([]byte{}, valid[:8]...)
	overflow = append(overflow, byte(trace.KindFree), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f)

	tests := []struct {
		name string
		data []byte
		kind errors.Kind
	}{
		{"short header", []byte("MTR"), errors.KindTruncated},
		{"missing version", []byte("MTRC"), errors.KindTruncated},
		{"bad magic", []byte{'X', 'T', 'R', 'C', 1, 0, 0, 0}, errors.KindInvalidData},
		{"bad version", []byte{'M', 'T', 'R', 'C', 9, 0, 0, 0}, errors.KindUnsupported},
		{"truncated entry", valid[:len(valid)-2], errors.KindTruncated},
		{"unknown kind", badKind, errors.KindInvalidData},
		{"varint overflow", overflow, errors.KindOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := trace.DecodeBinary(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: tt.kind}) {
				t.Errorf("got %v, want decode/%s", err, tt.kind)
			}
		})
	}
}

func TestEncodeBinary_InvalidKind(t *testing.T) {
	_, err := trace.EncodeBinary([]trace.Entry{{Kind: trace.Kind(99)}})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindInvalidData}) {
		t.Errorf("got %v, want encode/invalid_data", err)
	}
}
