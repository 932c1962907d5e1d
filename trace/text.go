package trace

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/memtrace/errors"
)

// maxLineLen bounds a single text trace line.
const maxLineLen = 1 << 20

// String renders the entry as a text trace line without the trailing newline.
func (e Entry) String() string {
	return string(e.AppendText(nil))
}

// AppendText appends the text trace form of e to dst.
func (e Entry) AppendText(dst []byte) []byte {
	dst = strconv.AppendInt(dst, e.TID, 10)
	dst = append(dst, ": "...)
	dst = append(dst, e.Kind.String()...)
	dst = append(dst, ' ')
	dst = appendHex(dst, e.Address)

	switch e.Kind {
	case KindAlloc:
		dst = appendDec(dst, e.Size)
	case KindZeroedAlloc:
		dst = appendDec(dst, e.Count)
		dst = appendDec(dst, e.Size)
	case KindAlignedAlloc:
		dst = appendDec(dst, e.Align)
		dst = appendDec(dst, e.Size)
	case KindRealloc:
		dst = append(dst, ' ')
		dst = appendHex(dst, e.PrevAddress)
		dst = appendDec(dst, e.Size)
	case KindThreadDone:
		if e.End != 0 {
			dst = appendDec(dst, e.End)
		}
		return dst
	}

	if e.Start != 0 || e.End != 0 {
		dst = appendDec(dst, e.Start)
		dst = appendDec(dst, e.End)
	}
	return dst
}

func appendHex(dst []byte, v uint64) []byte {
	dst = append(dst, "0x"...)
	return strconv.AppendUint(dst, v, 16)
}

func appendDec(dst []byte, v uint64) []byte {
	dst = append(dst, ' ')
	return strconv.AppendUint(dst, v, 10)
}

// EncodeText writes entries as text trace lines.
func EncodeText(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	var line []byte
	for i := range entries {
		if !entries[i].Kind.Valid() {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Detail("entry %d has invalid kind %d", i, entries[i].Kind).
				Value(entries[i].Kind).
				Build()
		}
		line = entries[i].AppendText(line[:0])
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return errors.Wrap(errors.PhaseEncode, errors.KindIO, err, "write text trace")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindIO, err, "flush text trace")
	}
	return nil
}

// DecodeText parses a text trace.
func DecodeText(data []byte) ([]Entry, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxLineLen)

	var entries []Entry
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			if te, ok := err.(*errors.Error); ok {
				te.Line = lineNo
			}
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Line(lineNo + 1).
			Cause(err).
			Detail("scan text trace").
			Build()
	}
	return entries, nil
}

// ParseLine parses a single text trace line. Errors are *errors.Error
// without a line number.
func ParseLine(line string) (Entry, error) {
	var e Entry

	tidStr, rest, ok := strings.Cut(line, ":")
	if !ok {
		return e, errors.InvalidLine(0, "missing thread id separator")
	}
	tid, err := strconv.ParseInt(strings.TrimSpace(tidStr), 10, 64)
	if err != nil {
		return e, errors.InvalidLine(0, "invalid thread id "+strconv.Quote(tidStr))
	}
	e.TID = tid

	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return e, errors.InvalidLine(0, "missing entry type or pointer")
	}
	kind, ok := ParseKind(fields[0])
	if !ok {
		return e, errors.InvalidLine(0, "unknown entry type "+strconv.Quote(fields[0]))
	}
	e.Kind = kind

	p := fieldParser{fields: fields[1:]}
	e.Address = p.hex("pointer")
	switch kind {
	case KindAlloc:
		e.Size = p.dec("size")
	case KindZeroedAlloc:
		e.Count = p.dec("element count")
		e.Size = p.dec("size")
	case KindAlignedAlloc:
		e.Align = p.dec("alignment")
		e.Size = p.dec("size")
	case KindRealloc:
		e.PrevAddress = p.hex("old pointer")
		e.Size = p.dec("size")
	}
	if p.err != nil {
		return Entry{}, p.err
	}

	switch remaining := len(p.fields) - p.pos; {
	case remaining == 0:
	case kind == KindThreadDone && remaining == 1:
		e.End = p.dec("end time")
	case kind != KindThreadDone && remaining == 2:
		e.Start = p.dec("start time")
		e.End = p.dec("end time")
	default:
		return Entry{}, errors.InvalidLine(0, "unexpected trailing fields for "+kind.String())
	}
	if p.err != nil {
		return Entry{}, p.err
	}
	return e, nil
}

type fieldParser struct {
	err    error
	fields []string
	pos    int
}

func (p *fieldParser) next(what string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	if p.pos >= len(p.fields) {
		p.err = errors.InvalidLine(0, "missing "+what)
		return "", false
	}
	s := p.fields[p.pos]
	p.pos++
	return s, true
}

func (p *fieldParser) hex(what string) uint64 {
	s, ok := p.next(what)
	if !ok {
		return 0
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		p.err = errors.InvalidLine(0, "invalid "+what+" "+strconv.Quote(s))
		return 0
	}
	return v
}

func (p *fieldParser) dec(what string) uint64 {
	s, ok := p.next(what)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		p.err = errors.InvalidLine(0, "invalid "+what+" "+strconv.Quote(s))
		return 0
	}
	return v
}
