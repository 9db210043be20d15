package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmishr/recflow/internal/testutil"
)

func drain(t *testing.T, ctx context.Context, src LineSource) []string {
	t.Helper()
	var lines []string
	for {
		line, ok, err := src.Next(ctx)
		testutil.AssertNoError(t, err)
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestSliceSource(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	src := SliceSource([]string{"a", "b", "c"})
	lines := drain(t, ctx, src)
	testutil.AssertEqual(t, len(lines), 3)
	testutil.AssertEqual(t, lines[0], "a")
	testutil.AssertEqual(t, lines[2], "c")

	// Exhausted sources stay exhausted.
	_, ok, err := src.Next(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ok, false)
	testutil.AssertNoError(t, src.Close())
}

func TestSliceSourceCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := SliceSource([]string{"a"})
	_, _, err := src.Next(ctx)
	testutil.AssertError(t, err)
}

func TestReaderSource(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	src := ReaderSource(strings.NewReader("1:a:x\n2:b:y\n"))
	lines := drain(t, ctx, src)
	testutil.AssertEqual(t, len(lines), 2)
	testutil.AssertEqual(t, lines[1], "2:b:y")
}

func TestReaderSourceTrailingPartialLine(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	src := ReaderSource(strings.NewReader("1:a:x\n2:b:no-newline"))
	lines := drain(t, ctx, src)
	testutil.AssertEqual(t, len(lines), 2)
	testutil.AssertEqual(t, lines[1], "2:b:no-newline")
}

func TestFileSource(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	path := filepath.Join(t.TempDir(), "input.txt")
	testutil.AssertNoError(t, os.WriteFile(path, []byte("1:a:x\n2:b:y\n3:c:z\n"), 0o600))

	src, err := FileSource(path)
	testutil.AssertNoError(t, err)
	defer src.Close()

	lines := drain(t, ctx, src)
	testutil.AssertEqual(t, len(lines), 3)
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := FileSource(filepath.Join(t.TempDir(), "absent.txt"))
	testutil.AssertError(t, err)
}

func TestChannelSource(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	ch := make(chan string, 3)
	ch <- "1:a:x"
	ch <- "2:b:y"
	close(ch)

	src := ChannelSource(ch)
	lines := drain(t, ctx, src)
	testutil.AssertEqual(t, len(lines), 2)
}
