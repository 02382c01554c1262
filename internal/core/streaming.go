package core

// streaming.go holds the readers that sit between a dataset file on disk and
// a record parser. Each one works a rune or a few bytes at a time, so a large
// upload is never held in memory just to clean it up:
//
//   - BOMSkippingReader drops a leading UTF-8 byte order mark (spreadsheet
//     exports from Windows often carry one, and it would otherwise end up
//     glued to the first header label)
//   - StreamingUTF8Sanitizer replaces invalid bytes with '?'
//   - StreamingCountingReader counts bytes for size limits and progress
//
// WrapForStreaming stacks all three in the order a parser expects.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader strips a UTF-8 byte order mark from the start of a stream.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, _ := r.br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
			r.br.Discard(len(utf8BOM))
		}
	}
	return r.br.Read(p)
}

// StreamingUTF8Sanitizer replaces each invalid UTF-8 byte with '?'.
// A '?' keeps the output no longer than the input, unlike U+FFFD.
type StreamingUTF8Sanitizer struct {
	br      *bufio.Reader
	pending []byte // Encoded rune bytes that did not fit the caller's buffer
}

// NewStreamingUTF8Sanitizer wraps r.
func NewStreamingUTF8Sanitizer(r io.Reader) *StreamingUTF8Sanitizer {
	return &StreamingUTF8Sanitizer{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (s *StreamingUTF8Sanitizer) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) > 0 {
			c := copy(p[n:], s.pending)
			s.pending = s.pending[c:]
			n += c
			continue
		}

		r, size, err := s.br.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}

		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		var enc [utf8.UTFMax]byte
		k := utf8.EncodeRune(enc[:], r)
		c := copy(p[n:], enc[:k])
		n += c
		if c < k {
			s.pending = append(s.pending[:0], enc[c:k]...)
		}
	}
	return n, nil
}

// StreamingCountingReader counts the bytes read through it.
type StreamingCountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // Expected size, 0 if unknown
}

// NewStreamingCountingReader wraps r. total may be 0 when the size is unknown.
func NewStreamingCountingReader(r io.Reader, total int64) *StreamingCountingReader {
	return &StreamingCountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *StreamingCountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the share of Total read so far, 0-100.
func (r *StreamingCountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	pct := int(r.BytesRead * 100 / r.Total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// WrapForStreaming strips the BOM, then sanitizes, then counts.
func WrapForStreaming(r io.Reader, totalSize int64) *StreamingCountingReader {
	return NewStreamingCountingReader(NewStreamingUTF8Sanitizer(NewBOMSkippingReader(r)), totalSize)
}
