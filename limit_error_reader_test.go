// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package fetcher

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadBytes(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		input      string
		bufferSize int
		expectN    int
	}{
		{
			name:       "Under limit",
			limit:      10,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
		{
			name:       "At limit",
			limit:      5,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
		{
			name:       "Over limit",
			limit:      4,
			input:      "12345",
			bufferSize: 5,
			expectN:    4,
		},
		{
			name:       "Under limit with buffer",
			limit:      10,
			input:      "12345",
			bufferSize: 2,
			expectN:    2,
		},
		{
			name:       "Unlimited",
			limit:      -1,
			input:      "12345",
			bufferSize: 5,
			expectN:    5,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := newLimitErrorReader(strings.NewReader(test.input), test.limit)
			buf := make([]byte, test.bufferSize)
			n, err := l.Read(buf)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if n != test.expectN {
				t.Errorf("Read() = %v, want %v", n, test.expectN)
			}
			if l.ReadBytes() != int64(test.expectN) {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), test.expectN)
			}
		})
	}
}

// TestLimitErrorReaderReadAll tests the implementation of limitErrorReader.Read until the end
func TestLimitErrorReaderReadAll(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		input   string
		expectN int64
		wantErr error
	}{
		{
			name:    "Under limit",
			limit:   10,
			input:   "12345",
			expectN: 5,
		},
		{
			name:    "Exactly at limit",
			limit:   5,
			input:   "12345",
			expectN: 5,
		},
		{
			name:    "Over limit",
			limit:   4,
			input:   "12345",
			expectN: 4,
			wantErr: ErrMaxInputSizeExceeded,
		},
		{
			name:    "Unlimited",
			limit:   -1,
			input:   strings.Repeat("x", 100000),
			expectN: 100000,
		},
		{
			name:    "Empty input with zero limit",
			limit:   0,
			input:   "",
			expectN: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := newLimitErrorReader(strings.NewReader(test.input), test.limit)
			_, err := io.ReadAll(l)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("ReadAll() error = %v, want %v", err, test.wantErr)
			}
			if l.ReadBytes() != test.expectN {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), test.expectN)
			}
		})
	}
}

// stallingReader returns (0, nil) stalls times before it continues with r
type stallingReader struct {
	r      io.Reader
	stalls int
}

func (s *stallingReader) Read(p []byte) (int, error) {
	if s.stalls > 0 {
		s.stalls--
		return 0, nil
	}
	return s.r.Read(p)
}

func TestLimitErrorReaderStallAtLimit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "source ends at limit", input: "12345"},
		{name: "source continues after limit", input: "123456", wantErr: ErrMaxInputSizeExceeded},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			src := strings.NewReader(test.input)
			l := newLimitErrorReader(src, 5)
			buf := make([]byte, 5)
			if _, err := io.ReadFull(l, buf); err != nil {
				t.Fatalf("ReadFull() error = %v", err)
			}

			// the source stalls exactly when the limit is reached
			l.R = &stallingReader{r: src, stalls: 2}
			_, err := io.ReadAll(l)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("ReadAll() error = %v, want %v", err, test.wantErr)
			}
			if l.ReadBytes() != 5 {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), 5)
			}
		})
	}
}
