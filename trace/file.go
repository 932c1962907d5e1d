package trace

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/memtrace/errors"
)

// RepairSuffix is appended to a trace path to name its repaired copy.
const RepairSuffix = ".repair"

// RepairPath returns the path a repaired copy of path is written to.
func RepairPath(path string) string {
	return path + RepairSuffix
}

// Decode parses data as a binary trace when it carries the binary magic and
// as a text trace otherwise.
func Decode(data []byte) ([]Entry, Format, error) {
	if IsBinary(data) {
		entries, err := DecodeBinary(data)
		return entries, FormatBinary, err
	}
	entries, err := DecodeText(data)
	return entries, FormatText, err
}

// Encode serializes entries in the given format.
func Encode(entries []Entry, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		var buf bytes.Buffer
		if err := EncodeText(&buf, entries); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatBinary:
		return EncodeBinary(entries)
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, "trace format "+format.String())
	}
}

// ReadFile reads and decodes the trace at path. Zip archives are opened and
// their first regular member is decoded.
func ReadFile(path string) ([]Entry, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FormatText, errors.ReadFailed(path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		data, err = readZipMember(data)
		if err != nil {
			return nil, FormatText, errors.WithPath(err, path)
		}
	}
	entries, format, err := Decode(data)
	if err != nil {
		return nil, format, errors.WithPath(err, path)
	}
	return entries, format, nil
}

func readZipMember(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "open zip archive")
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRead, errors.KindInvalidData, err, "open zip member "+f.Name)
		}
		member, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRead, errors.KindIO, err, "read zip member "+f.Name)
		}
		return member, nil
	}
	return nil, errors.NotFound(errors.PhaseRead, "zip member", "trace")
}

// WriteFile encodes entries and writes them to path, replacing any existing file.
func WriteFile(path string, entries []Entry, format Format) error {
	data, err := Encode(entries, format)
	if err != nil {
		return errors.WithPath(err, path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}

// FileCodec reads and writes traces on the local filesystem.
type FileCodec struct{}

// ReadTrace implements memtrace.Reader.
func (FileCodec) ReadTrace(ctx context.Context, path string) ([]Entry, Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, FormatText, errors.ReadFailed(path, err)
	}
	return ReadFile(path)
}

// WriteTrace implements memtrace.Writer.
func (FileCodec) WriteTrace(ctx context.Context, path string, entries []Entry, format Format) error {
	if err := ctx.Err(); err != nil {
		return errors.WriteFailed(path, err)
	}
	return WriteFile(path, entries, format)
}
