package csvio

// streaming.go wraps raw input before it reaches the CSV parser:
//
//   - size limiting, failing with ErrFileTooLarge
//   - byte-order-mark removal (UTF-8 and UTF-16)
//   - decoding from the requested encoding to UTF-8
//   - replacement of invalid UTF-8 with U+FFFD
//
// Use WrapForLoading to apply all of them in the correct order.

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CountingReader tracks bytes read and fails once limit is exceeded.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	limit     int64 // 0 means unlimited
}

// NewCountingReader wraps r. A non-positive limit disables the size check.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.limit > 0 && r.BytesRead > r.limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.limit)
	}
	return n, err
}

// LookupEncoding resolves a WHATWG label. Empty means UTF-8.
func LookupEncoding(label string) (encoding.Encoding, error) {
	if label == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", label)
	}
	return enc, nil
}

// WrapForLoading returns a UTF-8 reader over r.
//
// The order matters:
//  1. Size is counted on the raw bytes
//  2. A BOM, if present, overrides label and is stripped
//  3. The decoder replaces invalid sequences with U+FFFD
func WrapForLoading(r io.Reader, label string, maxBytes int64) (io.Reader, error) {
	enc, err := LookupEncoding(label)
	if err != nil {
		return nil, err
	}
	counted := NewCountingReader(r, maxBytes)
	return transform.NewReader(counted, unicode.BOMOverride(enc.NewDecoder())), nil
}
