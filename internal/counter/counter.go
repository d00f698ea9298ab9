// Package counter streams files and counts their newline bytes.
//
// A Counter reads its input in fixed-size chunks and never holds more than one
// chunk in memory, so files of any size are scanned in O(chunk size) memory.
// Only the single byte 0x0A is counted: there is no decoding, no line-ending
// normalization and no special case for a missing trailing newline.
//
// Chunk buffers are pooled, which makes a single Counter safe and cheap to share
// between many goroutines counting different files.
package counter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	// DefaultChunkSize is the read chunk size used when none is configured.
	DefaultChunkSize = 32 * 1024
	// MinChunkSize is the smallest chunk size accepted by New.
	MinChunkSize = 512
)

var newline = []byte{'\n'}

// Counter counts newline bytes in files and readers.
type Counter struct {
	chunkSize int
	pool      sync.Pool
}

// New creates a Counter that reads in chunks of chunkSize bytes.
// A chunkSize of 0 selects DefaultChunkSize.
func New(chunkSize int) (*Counter, error) {
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < MinChunkSize {
		return nil, fmt.Errorf("chunk size must be >= %d, got %d", MinChunkSize, chunkSize)
	}
	return newCounter(chunkSize), nil
}

// newCounter skips validation so tests can exercise tiny chunk sizes.
func newCounter(chunkSize int) *Counter {
	c := &Counter{chunkSize: chunkSize}
	c.pool.New = func() any {
		buf := make([]byte, c.chunkSize)
		return &buf
	}
	return c
}

// ChunkSize returns the configured read chunk size.
func (c *Counter) ChunkSize() int {
	return c.chunkSize
}

// Count reads r until EOF and returns the number of newline bytes seen.
// On a read error the partial count is discarded and the error returned.
func (c *Counter) Count(r io.Reader) (int64, error) {
	bufp := c.pool.Get().(*[]byte)
	defer c.pool.Put(bufp)
	buf := *bufp

	var count int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += int64(bytes.Count(buf[:n], newline))
		}
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// CountFile opens path read-only and counts its newline bytes.
func (c *Counter) CountFile(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := c.Count(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return n, nil
}
