// Package chunk splits a delimited file into a fixed number of line-based
// parts and joins them back together byte for byte.
package chunk

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Count is the number of chunk files Chunk writes and Combine reads.
const Count = 10

// ErrMissingChunk is returned by Combine when a chunk file is absent.
var ErrMissingChunk = errors.New("missing chunk file")

// Paths returns the chunk file names for path: "<base>_0.csv" through
// "<base>_9.csv", where base is path without a trailing ".csv".
func Paths(path string) []string {
	base := strings.TrimSuffix(path, ".csv")
	out := make([]string, Count)
	for i := range out {
		out[i] = fmt.Sprintf("%s_%d.csv", base, i)
	}
	return out
}

// Sizes returns how many lines each chunk receives for n lines: n/Count
// each, with one extra line for each of the first n%Count chunks.
func Sizes(n int) []int {
	sizes := make([]int, Count)
	for i := range sizes {
		sizes[i] = n / Count
		if i < n%Count {
			sizes[i]++
		}
	}
	return sizes
}

// Chunk splits the file at path into Count contiguous parts by line.
// Lines keep their exact bytes, terminators included; the header line is
// not repeated. Fewer than Count lines leaves trailing chunks empty.
func Chunk(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	lines := splitLines(data)
	paths := Paths(path)
	sizes := Sizes(len(lines))

	next := 0
	for i, p := range paths {
		var buf bytes.Buffer
		for _, line := range lines[next : next+sizes[i]] {
			buf.Write(line)
		}
		next += sizes[i]
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write chunk %d: %w", i, err)
		}
	}
	return paths, nil
}

// splitLines splits after every '\n'. A final line without a terminator
// is kept as is.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, data)
			break
		}
		lines = append(lines, data[:i+1])
		data = data[i+1:]
	}
	return lines
}

// Combine concatenates the Count chunk files of path, in index order, into
// path. Headers are not de-duplicated. Every chunk file must exist.
func Combine(path string) (err error) {
	paths := Paths(path)
	for i, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %d (%s)", ErrMissingChunk, i, p)
			}
			return fmt.Errorf("stat chunk %d: %w", i, err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(out)
	for i, p := range paths {
		if err := appendFile(w, p); err != nil {
			return fmt.Errorf("append chunk %d: %w", i, err)
		}
	}
	return w.Flush()
}

func appendFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
