package streaming

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseRangeWhole(t *testing.T) {
	rng, err := ParseRange("", 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rng != nil {
		t.Fatalf("expected nil range for empty header, got %+v", rng)
	}
}

func TestParseRangeExplicit(t *testing.T) {
	rng, err := ParseRange("bytes=0-4", 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rng.Start != 0 || rng.End != 4 || rng.Length() != 5 {
		t.Fatalf("unexpected range: %+v", rng)
	}
}

func TestParseRangeOpenEnded(t *testing.T) {
	rng, err := ParseRange("bytes=100-", 2455)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rng.Start != 100 || rng.End != 2454 {
		t.Fatalf("unexpected range: %+v", rng)
	}
	if rng.Length() != 2355 {
		t.Fatalf("unexpected length: %d", rng.Length())
	}
}

func TestParseRangeMalformed(t *testing.T) {
	for _, header := range []string{
		"bytes",
		"bytes=",
		"bytes=abc-",
		"bytes=-",
		"bytes=-500",
		"items=0-4",
		"0-4",
		"bytes=4",
	} {
		_, err := ParseRange(header, 100)
		var malformed *MalformedRangeError
		if !errors.As(err, &malformed) {
			t.Errorf("header %q: expected MalformedRangeError, got %v", header, err)
		}
	}
}

func TestParseRangeUnsatisfiable(t *testing.T) {
	_, err := ParseRange("bytes=100-3455", 2455)
	var unsat *UnsatisfiableRangeError
	if !errors.As(err, &unsat) {
		t.Fatalf("expected UnsatisfiableRangeError, got %v", err)
	}
	if unsat.Size != 2455 {
		t.Fatalf("expected true size 2455 in error, got %d", unsat.Size)
	}

	_, err = ParseRange("bytes=4-0", 100)
	if !errors.As(err, &unsat) {
		t.Fatalf("expected UnsatisfiableRangeError for end<start, got %v", err)
	}
}

func TestCopyWhole(t *testing.T) {
	src := strings.Repeat("x", 300*1024) // spans multiple chunks
	var dst bytes.Buffer

	n, err := Copy(context.Background(), &dst, strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != int64(len(src)) || dst.Len() != len(src) {
		t.Fatalf("expected %d bytes, wrote %d", len(src), n)
	}
}

func TestCopyClampsAtEnd(t *testing.T) {
	src := strings.NewReader("hello world")
	var dst bytes.Buffer

	n, err := Copy(context.Background(), &dst, src, &ByteRange{Start: 0, End: 4})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 5 || dst.String() != "hello" {
		t.Fatalf("expected 5 bytes %q, got %d %q", "hello", n, dst.String())
	}
}

func TestCopyStopsAtEOF(t *testing.T) {
	// Range longer than the source: copy must still terminate.
	src := strings.NewReader("abc")
	var dst bytes.Buffer

	n, err := Copy(context.Background(), &dst, src, &ByteRange{Start: 0, End: 99})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 bytes, got %d", n)
	}
}

func TestCopyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dst bytes.Buffer
	_, err := Copy(ctx, &dst, strings.NewReader("data"), nil)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
