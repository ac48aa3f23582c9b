package streaming

import (
	"context"
	"io"
)

// ChunkSize is the unit of forward progress when copying object bytes.
// Each chunk is fully flushed before the next one is read, so memory use
// is bounded by the chunk size rather than the object size.
const ChunkSize = 128 * 1024

// Copy streams bytes from src to dst until the range is exhausted. src must
// already be positioned at rng.Start; the final chunk is clamped so the copy
// never overruns rng.End. A nil range copies src to EOF. The loop stops when
// ctx is cancelled, which covers client disconnects.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, rng *ByteRange) (int64, error) {
	buf := make([]byte, ChunkSize)

	remaining := int64(-1)
	if rng != nil {
		remaining = rng.Length()
	}

	var written int64
	for remaining != 0 {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		chunk := buf
		if remaining > 0 && remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, err := src.Read(chunk)
		if n > 0 {
			wn, werr := dst.Write(chunk[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if remaining > 0 {
				remaining -= int64(n)
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		if n == 0 {
			// Zero-byte read without an error: treat as EOF so a finite
			// object always terminates the loop.
			return written, nil
		}
	}

	return written, nil
}
