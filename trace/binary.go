package trace

import (
	"bytes"
	stderrors "errors"
	"io"

	"github.com/wippyai/memtrace/errors"
	"github.com/wippyai/memtrace/trace/internal/binary"
)

// Binary trace header constants.
const (
	Magic   uint32 = 0x4352544d // "MTRC" little-endian
	Version uint32 = 1
)

var magicBytes = []byte{'M', 'T', 'R', 'C'}

// IsBinary reports whether data starts with the binary trace magic.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, magicBytes)
}

// EncodeBinary returns the binary encoding of entries.
func EncodeBinary(entries []Entry) ([]byte, error) {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)
	for i := range entries {
		e := &entries[i]
		if !e.Kind.Valid() {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Detail("entry %d has invalid kind %d", i, e.Kind).
				Value(e.Kind).
				Build()
		}
		w.Byte(byte(e.Kind))
		w.WriteU64(uint64(e.TID))
		w.WriteU64(e.Address)
		w.WriteU64(e.PrevAddress)
		w.WriteU64(e.Size)
		w.WriteU64(e.Count)
		w.WriteU64(e.Align)
		w.WriteU64(e.Start)
		w.WriteU64(e.End)
	}
	return w.Bytes(), nil
}

// DecodeBinary parses a binary trace.
func DecodeBinary(data []byte) ([]Entry, error) {
	r := binary.NewReader(bytes.NewReader(data))

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, errors.Truncated(errors.PhaseDecode, r.Position(), "header")
	}
	if magic != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(0).
			Value(magic).
			Detail("invalid binary trace magic 0x%08x", magic).
			Build()
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, errors.Truncated(errors.PhaseDecode, r.Position(), "header")
	}
	if version != Version {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Offset(4).
			Value(version).
			Detail("unsupported binary trace version %d", version).
			Build()
	}

	// Smallest record is one kind byte plus eight single-byte varints.
	entries := make([]Entry, 0, (len(data)-8)/9)
	for {
		start := r.Position()
		kb, err := r.ReadByte()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read entry kind")
		}
		kind := Kind(kb)
		if !kind.Valid() {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Offset(start).
				Value(kb).
				Detail("unknown entry kind %d", kb).
				Build()
		}

		e := Entry{Kind: kind}
		var tid uint64
		fields := []struct {
			dst  *uint64
			name string
		}{
			{&tid, "thread id"},
			{&e.Address, "address"},
			{&e.PrevAddress, "previous address"},
			{&e.Size, "size"},
			{&e.Count, "count"},
			{&e.Align, "alignment"},
			{&e.Start, "start time"},
			{&e.End, "end time"},
		}
		for _, f := range fields {
			v, err := r.ReadU64()
			if err != nil {
				return nil, varintError(r.Position(), f.name, err)
			}
			*f.dst = v
		}
		e.TID = int64(tid)
		entries = append(entries, e)
	}
}

func varintError(pos int, what string, err error) error {
	if stderrors.Is(err, binary.ErrOverflow) {
		return errors.Overflow(errors.PhaseDecode, pos, what)
	}
	if stderrors.Is(err, io.EOF) {
		return errors.Truncated(errors.PhaseDecode, pos, what)
	}
	return errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read "+what)
}
