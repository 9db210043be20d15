package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// LineSource produces a lazy, finite, non-restartable sequence of raw input
// lines. The pipeline requires only sequential, pull-based access and pulls
// a new line only once a concurrency slot is free.
type LineSource interface {
	// Next returns the next line and true, or "" and false when exhausted.
	Next(ctx context.Context) (string, bool, error)
	// Close releases any resources held by the source.
	Close() error
}

// sliceSource implements LineSource for in-memory slices.
type sliceSource struct {
	lines []string
	index int64
}

// SliceSource returns a LineSource over the given lines.
func SliceSource(lines []string) LineSource {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) Next(ctx context.Context) (string, bool, error) {
	current := atomic.AddInt64(&s.index, 1) - 1
	if current >= int64(len(s.lines)) {
		return "", false, nil
	}

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
		return s.lines[current], true, nil
	}
}

func (s *sliceSource) Close() error { return nil }

// channelSource implements LineSource for channels.
type channelSource struct {
	ch <-chan string
}

// ChannelSource returns a LineSource that pulls lines from a channel until
// it is closed.
func ChannelSource(ch <-chan string) LineSource {
	return &channelSource{ch: ch}
}

func (s *channelSource) Next(ctx context.Context) (string, bool, error) {
	select {
	case line, ok := <-s.ch:
		if !ok {
			return "", false, nil
		}
		return line, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (s *channelSource) Close() error { return nil }

// readerSource implements LineSource over an io.Reader, splitting on \n.
type readerSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// ReaderSource returns a LineSource that reads lines incrementally from r.
// A trailing line without a newline is included.
func ReaderSource(r io.Reader) LineSource {
	return &readerSource{scanner: bufio.NewScanner(r)}
}

// FileSource returns a LineSource over the named file. The file is closed
// by Close.
func FileSource(path string) (LineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open line source: %w", err)
	}
	return &readerSource{scanner: bufio.NewScanner(f), closer: f}, nil
}

func (s *readerSource) Next(ctx context.Context) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	default:
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", false, fmt.Errorf("read line: %w", err)
		}
		return "", false, nil
	}
	return s.scanner.Text(), true, nil
}

func (s *readerSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
