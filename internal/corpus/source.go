// Package corpus validates text sources and holds per-file analysis results.
package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Extension is the only accepted source extension (case-insensitive).
const Extension = ".txt"

const sampleSize = 512

var (
	// ErrNotFound reports a missing source or reference file.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidFormat reports a wrong extension or undecodable content.
	ErrInvalidFormat = errors.New("invalid text file")
	// ErrInvalidEncoding reports a sample that is not valid UTF-8.
	ErrInvalidEncoding = fmt.Errorf("%w: sample is not valid utf-8", ErrInvalidFormat)
	// ErrMalformedResult reports a pass result that violates its own invariants.
	ErrMalformedResult = errors.New("malformed analysis result")
	// ErrPassNotRun reports a query over a result slot that was never filled.
	ErrPassNotRun = errors.New("analysis pass has not completed")
)

// Source is a validated, readable text file.
type Source struct {
	path string
	name string
}

// Validate checks that path exists, carries the text extension and begins
// with valid UTF-8. Only the first 512 bytes are sampled.
func Validate(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Source{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Source{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() || !strings.EqualFold(filepath.Ext(path), Extension) {
		return Source{}, fmt.Errorf("%w: %s (expected %s)", ErrInvalidFormat, path, Extension)
	}

	file, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only sample.
			_ = cerr
		}
	}()

	buf := make([]byte, sampleSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !validSample(buf[:n], n == sampleSize) {
		return Source{}, fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}

	return Source{path: path, name: filepath.Base(path)}, nil
}

// validSample reports whether b decodes as UTF-8. When the sample was cut at
// the size limit a trailing partial sequence is accepted.
func validSample(b []byte, truncated bool) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			return truncated && !utf8.FullRune(b)
		}
		b = b[size:]
	}
	return true
}

// Path returns the path the source was validated with.
func (s Source) Path() string {
	return s.path
}

// Name returns the display name of the source.
func (s Source) Name() string {
	return s.name
}

func (s Source) open() (*os.File, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	return file, nil
}

// decoded wraps r so that every ill-formed UTF-8 subsequence reads as one
// U+FFFD. Line and rune streams share this policy.
func decoded(r io.Reader) *bufio.Reader {
	return bufio.NewReader(transform.NewReader(r, unicode.UTF8.NewDecoder()))
}

// EachLine streams the file one line at a time. Each line keeps its
// terminator. Invalid UTF-8 is replaced with U+FFFD, one per maximal
// ill-formed subsequence. Read errors and errors
// returned by fn stop the scan and are returned.
func (s Source) EachLine(ctx context.Context, fn func(line string) error) error {
	file, err := s.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()

	reader := decoded(file)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			if err := fn(line); err != nil {
				return err
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read %s: %w", s.path, readErr)
		}
	}
}

// EachRune streams the file one code point at a time, replacing invalid
// UTF-8 the same way EachLine does.
func (s Source) EachRune(ctx context.Context, fn func(r rune)) error {
	file, err := s.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()

	reader := decoded(file)
	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		r, _, readErr := reader.ReadRune()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read %s: %w", s.path, readErr)
		}
		fn(r)
	}
}

// TrimTerminator strips one trailing "\n" or "\r\n".
func TrimTerminator(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
