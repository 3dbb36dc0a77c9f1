package core

// streaming.go loads documents for the engine at the I/O boundary.
//
// The engine itself is string-in, string-out. Callers that start from a file
// or request body use ReadDocument, which:
//
//   - Bounds memory by rejecting inputs larger than a configured limit
//   - Strips a UTF-8 BOM (0xEF 0xBB 0xBF) added by Windows programs
//   - Replaces ill-formed UTF-8 with U+FFFD
//
// Nothing else is altered: line endings and whitespace reach the parser as-is.

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrDocumentTooLarge is returned when a document exceeds the read limit.
var ErrDocumentTooLarge = errors.New("document too large")

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// NewDocumentReader wraps r with BOM stripping and UTF-8 sanitization.
func NewDocumentReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.UTF8BOM.NewDecoder(),
		runes.ReplaceIllFormed(),
	))
}

// ReadDocument reads all of r into a string ready for Schema.Parse.
// A limit <= 0 disables the size check.
func ReadDocument(r io.Reader, limit int64) (string, error) {
	counter := NewCountingReader(r)

	var src io.Reader = counter
	if limit > 0 {
		// One extra byte distinguishes "exactly limit" from "over limit".
		src = io.LimitReader(counter, limit+1)
	}

	data, err := io.ReadAll(NewDocumentReader(src))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if limit > 0 && counter.BytesRead > limit {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrDocumentTooLarge, limit)
	}

	return string(data), nil
}
