// Package streaming implements HTTP byte-range parsing and the bounded
// chunked copy used to serve object downloads.
package streaming

import (
	"fmt"
	"strconv"
	"strings"
)

const rangeUnit = "bytes"

// ByteRange is an inclusive byte interval within an object.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// MalformedRangeError reports a Range header that does not match the
// supported grammar. Callers should map it to a 400 response.
type MalformedRangeError struct {
	Header string
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("malformed range header: %q", e.Header)
}

// UnsatisfiableRangeError reports a syntactically valid range that falls
// outside the object. Size carries the true object size so clients can
// retry with correct bounds; callers should map it to a 416 response.
type UnsatisfiableRangeError struct {
	Start int64
	End   int64
	Size  int64
}

func (e *UnsatisfiableRangeError) Error() string {
	return fmt.Sprintf("unsatisfiable range %d-%d for object of size %d", e.Start, e.End, e.Size)
}

// ParseRange parses a Range header value against a known object size.
// Supported forms are "bytes=<start>-<end>" and "bytes=<start>-"; the end
// defaults to the last byte when omitted. An empty header returns nil,
// meaning the whole object.
func ParseRange(header string, size int64) (*ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}

	unit, spec, ok := strings.Cut(header, "=")
	if !ok || strings.TrimSpace(unit) != rangeUnit {
		return nil, &MalformedRangeError{Header: header}
	}

	startRaw, endRaw, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return nil, &MalformedRangeError{Header: header}
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startRaw), 10, 64)
	if err != nil || start < 0 {
		return nil, &MalformedRangeError{Header: header}
	}

	end := size - 1
	if trimmed := strings.TrimSpace(endRaw); trimmed != "" {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil || end < 0 {
			return nil, &MalformedRangeError{Header: header}
		}
	}

	if end > size-1 || end < start {
		return nil, &UnsatisfiableRangeError{Start: start, End: end, Size: size}
	}

	return &ByteRange{Start: start, End: end}, nil
}
