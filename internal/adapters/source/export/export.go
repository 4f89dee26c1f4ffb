// Package export reads browser-history exports: a JSON array of rows, or
// NDJSON with one row object per line. Malformed lines are counted and
// skipped; only whole-file shape problems are fatal
package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"rabbithole/internal/core/history"
	perr "rabbithole/internal/platform/errors"
)

// DefaultMaxLine caps one NDJSON line; real exports stay far below this
const DefaultMaxLine = 4 * 1024 * 1024

// Options tunes the reader
type Options struct {
	// MaxLine caps one NDJSON line in bytes; DefaultMaxLine when 0
	MaxLine int
}

// Stats counts what the reader saw. Malformed merges into the report's
// degraded row count downstream
type Stats struct {
	Lines     int `json:"lines"`
	Rows      int `json:"rows"`
	Malformed int `json:"malformed"`
}

// Reader decodes raw rows from one export stream
type Reader struct {
	br      *bufio.Reader
	closer  io.Closer
	maxLine int
	name    string
}

// New wraps an open stream; name is used in error messages only
func New(r io.Reader, name string, opts Options) *Reader {
	maxLine := opts.MaxLine
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	if name == "" {
		name = "export"
	}
	rd := &Reader{br: bufio.NewReader(r), maxLine: maxLine, name: name}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// Open reads the file at path; "-" means stdin
func Open(path string, opts Options) (*Reader, error) {
	if path == "-" {
		rd := New(os.Stdin, "stdin", opts)
		rd.closer = nil // never close stdin
		return rd, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("export file %s does not exist", path)
		}
		return nil, perr.Wrapf(err, perr.CodeInvalidInput, "open export %s", path)
	}
	return New(f, path, opts), nil
}

// Close closes the underlying file, if the reader owns one
func (rd *Reader) Close() error {
	if rd.closer == nil {
		return nil
	}
	return rd.closer.Close()
}

// ReadAll decodes every row in the stream. The first non-space byte decides
// the shape: '[' is a JSON array, '{' is NDJSON, anything else is not a row
// stream. NDJSON checks ctx between lines so huge files cancel promptly
func (rd *Reader) ReadAll(ctx context.Context) ([]history.RawRow, Stats, error) {
	var st Stats

	first, err := sniff(rd.br)
	if err == io.EOF {
		// empty input is a valid, empty history
		return nil, st, nil
	}
	if err != nil {
		return nil, st, perr.Wrapf(err, perr.CodeInvalidInput, "read %s", rd.name)
	}

	switch first {
	case '[':
		rows, err := rd.readArray()
		if err != nil {
			return nil, st, err
		}
		st.Rows = len(rows)
		return rows, st, nil
	case '{':
		return rd.readLines(ctx, &st)
	default:
		return nil, st, perr.InvalidInputf("%s is neither a JSON array nor NDJSON (starts with %q)", rd.name, first)
	}
}

func (rd *Reader) readArray() ([]history.RawRow, error) {
	var rows []history.RawRow
	dec := json.NewDecoder(rd.br)
	if err := dec.Decode(&rows); err != nil {
		return nil, perr.Wrapf(err, perr.CodeJSON, "decode %s array", rd.name)
	}
	return rows, nil
}

func (rd *Reader) readLines(ctx context.Context, st *Stats) ([]history.RawRow, Stats, error) {
	sc := bufio.NewScanner(rd.br)
	bufSize := 64 * 1024
	if rd.maxLine < bufSize {
		bufSize = rd.maxLine
	}
	sc.Buffer(make([]byte, bufSize), rd.maxLine)

	var rows []history.RawRow
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return rows, *st, err
		}
		st.Lines++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		// a row must be an object; this also rejects bare null, which
		// json would otherwise decode into a zero row without complaint
		if line[0] != '{' {
			st.Malformed++
			continue
		}
		var row history.RawRow
		if err := json.Unmarshal(line, &row); err != nil {
			st.Malformed++
			continue
		}
		rows = append(rows, row)
		st.Rows++
	}
	if err := sc.Err(); err != nil {
		return rows, *st, perr.Wrapf(err, perr.CodeInvalidInput, "scan %s", rd.name)
	}
	return rows, *st, nil
}

// sniff returns the first non-whitespace byte without consuming it
func sniff(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			if err := br.UnreadByte(); err != nil {
				return 0, err
			}
			return b, nil
		}
	}
}
