// Package corpus reads and writes fuzz corpus entries in the format used by
// go test -fuzz under testdata/fuzz/<FuzzTarget>/.
package corpus

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// Header is the first line of every Go fuzz corpus file.
const Header = "go test fuzz v1"

// ErrMalformed is returned for files that start with Header but do not hold
// a single []byte value.
var ErrMalformed = errors.New("malformed corpus file")

// Encode renders data as a Go fuzz corpus file body.
func Encode(data []byte) []byte {
	return []byte(Header + "\n[]byte(" + strconv.Quote(string(data)) + ")\n")
}

// Decode returns the payload of a corpus file body. Bodies without Header are
// returned unchanged, so raw crash inputs can be replayed too.
func Decode(body []byte) ([]byte, error) {
	rest, ok := bytes.CutPrefix(body, []byte(Header+"\n"))
	if !ok {
		return body, nil
	}

	line := strings.TrimSpace(string(rest))

	inner, ok := strings.CutPrefix(line, "[]byte(")
	if !ok {
		return nil, fmt.Errorf("%w: want []byte value, got %q", ErrMalformed, line)
	}

	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return nil, fmt.Errorf("%w: unterminated value", ErrMalformed)
	}

	s, err := strconv.Unquote(inner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return []byte(s), nil
}

// Name returns the file name for a corpus body: the first 16 hex digits of
// its SHA-256, as go test -fuzz names new entries.
func Name(body []byte) string {
	sum := sha256.Sum256(body)

	return hex.EncodeToString(sum[:])[:16]
}

// Write stores data as a corpus entry in dir and returns its path. Writing
// the same data twice yields the same path.
func Write(dir string, data []byte) (string, error) {
	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		return "", fmt.Errorf("create corpus dir: %w", err)
	}

	body := Encode(data)
	path := filepath.Join(dir, Name(body))

	err = atomic.WriteFile(path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("write corpus entry: %w", err)
	}

	return path, nil
}

// Read returns the payload stored at path.
func Read(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus entry: %w", err)
	}

	data, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return data, nil
}

// ReadDir lists the regular files in dir in lexical order.
func ReadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	paths := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.Type()&fs.ModeType != 0 {
			continue
		}

		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	sort.Strings(paths)

	return paths, nil
}

// Expand resolves each argument to the corpus files it names: files as-is,
// directories via ReadDir.
func Expand(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)

			continue
		}

		entries, err := ReadDir(arg)
		if err != nil {
			return nil, err
		}

		paths = append(paths, entries...)
	}

	return paths, nil
}
