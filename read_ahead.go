// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// readAheadChunkSize is the size of a single read-ahead buffer.
const readAheadChunkSize = 64 << 10

// readAheadReader reads src in a separate goroutine and buffers up to depth chunks,
// so network reads overlap with the consumer. The consumer side is not safe for
// concurrent use.
type readAheadReader struct {
	src    io.ReadCloser
	chunks chan []byte
	cur    []byte
	cancel context.CancelFunc
	g      *errgroup.Group
}

// newReadAheadReader starts the producer goroutine. Close must be called to release it.
func newReadAheadReader(ctx context.Context, src io.ReadCloser, depth int) *readAheadReader {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	r := &readAheadReader{
		src:    src,
		chunks: make(chan []byte, depth),
		cancel: cancel,
		g:      g,
	}

	g.Go(func() error {
		defer close(r.chunks)
		for {
			buf := make([]byte, readAheadChunkSize)
			n, err := src.Read(buf)
			if n > 0 {
				select {
				case r.chunks <- buf[:n]:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})

	return r
}

// Read returns buffered chunks in order. After the last chunk it returns the error of
// the producer or io.EOF.
func (r *readAheadReader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		chunk, ok := <-r.chunks
		if !ok {
			if err := r.g.Wait(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		r.cur = chunk
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

// Close stops the producer, closes the source and waits for the goroutine to exit.
func (r *readAheadReader) Close() error {
	r.cancel()
	closeErr := r.src.Close()
	for range r.chunks {
		// drain, so the producer is not blocked on send
	}
	if err := r.g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return closeErr
}
