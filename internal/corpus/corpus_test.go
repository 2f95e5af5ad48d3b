package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestValidateErrors(t *testing.T) {
	if _, err := Validate(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	md := writeFixture(t, "notes.md", []byte("hello"))
	if _, err := Validate(md); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}

	bin := writeFixture(t, "blob.txt", []byte{0xff, 0xfe, 0x00, 0x81})
	_, err := Validate(bin)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected encoding error to match ErrInvalidFormat")
	}
}

func TestValidateAcceptsUpperCaseExtension(t *testing.T) {
	path := writeFixture(t, "README.TXT", []byte("hi"))
	src, err := Validate(path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if src.Name() != "README.TXT" {
		t.Fatalf("expected display name README.TXT, got %q", src.Name())
	}
}

func TestValidateSamplesOnlyTheHead(t *testing.T) {
	// A multibyte rune straddling byte 512 and garbage later in the file.
	head := strings.Repeat("a", sampleSize-1) + "ö"
	data := append([]byte(head), 0xff, 0xfe)
	path := writeFixture(t, "late.txt", data)
	if _, err := Validate(path); err != nil {
		t.Fatalf("expected late corruption to pass validation, got %v", err)
	}
}

func TestEachLineReplacesInvalidBytes(t *testing.T) {
	path := writeFixture(t, "mixed.txt", []byte("ok\nbad \xff byte\nlast"))
	src := Source{path: path, name: "mixed.txt"}
	var lines []string
	err := src.EachLine(context.Background(), func(line string) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		t.Fatalf("each line: %v", err)
	}
	expected := []string{"ok\n", "bad � byte\n", "last"}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d", len(expected), len(lines))
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Fatalf("line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestLinesAndRunesReplaceInvalidRunsAlike(t *testing.T) {
	// Two invalid starters give two replacements; a truncated three-byte
	// sequence gives one.
	path := writeFixture(t, "runs.txt", []byte("x\xff\xfey\n\xe2\x82z"))
	src := Source{path: path, name: "runs.txt"}

	var text strings.Builder
	err := src.EachLine(context.Background(), func(line string) error {
		text.WriteString(line)
		return nil
	})
	if err != nil {
		t.Fatalf("each line: %v", err)
	}
	expected := "x\ufffd\ufffdy\n\ufffdz"
	if text.String() != expected {
		t.Fatalf("expected lines %q, got %q", expected, text.String())
	}

	var runes []rune
	if err := src.EachRune(context.Background(), func(r rune) { runes = append(runes, r) }); err != nil {
		t.Fatalf("each rune: %v", err)
	}
	if string(runes) != expected {
		t.Fatalf("expected runes %q, got %q", expected, string(runes))
	}
}

func TestEachLineHonorsCancellation(t *testing.T) {
	path := writeFixture(t, "c.txt", []byte("a\nb\n"))
	src := Source{path: path}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := src.EachLine(ctx, func(string) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEachLineMissingAfterValidation(t *testing.T) {
	src := Source{path: filepath.Join(t.TempDir(), "gone.txt")}
	err := src.EachLine(context.Background(), func(string) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileSlotsFailUntilSet(t *testing.T) {
	f := NewFile(Source{path: "x.txt", name: "x.txt"})
	if _, err := f.Basic(); !errors.Is(err, ErrPassNotRun) {
		t.Fatalf("expected ErrPassNotRun, got %v", err)
	}
	if _, err := f.MostLikelyLanguage(); !errors.Is(err, ErrPassNotRun) {
		t.Fatalf("expected ErrPassNotRun, got %v", err)
	}
	if err := f.SetBasic(model.BasicStats{Lines: 1, Words: 2, Characters: 5, Spaces: 2}); err != nil {
		t.Fatalf("set basic: %v", err)
	}
	b, err := f.Basic()
	if err != nil || b.Words != 2 {
		t.Fatalf("unexpected basic stats %+v, %v", b, err)
	}
	if f.Complete() {
		t.Fatalf("expected incomplete file")
	}
}

func TestFileRejectsMalformedResults(t *testing.T) {
	f := NewFile(Source{})
	if err := f.SetBasic(model.BasicStats{Lines: -1}); !errors.Is(err, ErrMalformedResult) {
		t.Fatalf("expected ErrMalformedResult, got %v", err)
	}
	chars := model.CharacterStats{Total: 3, Letters: 1, Occurrences: freq.Map[rune]{{Key: 'a', Count: 3}}}
	if err := f.SetCharacters(chars); !errors.Is(err, ErrMalformedResult) {
		t.Fatalf("expected ErrMalformedResult, got %v", err)
	}
	unsorted := model.SimilarityResult{{Language: "en", Score: 0.1}, {Language: "sv", Score: 0.9}}
	if err := f.SetLanguages(unsorted); !errors.Is(err, ErrMalformedResult) {
		t.Fatalf("expected ErrMalformedResult, got %v", err)
	}
	if _, err := f.Characters(); !errors.Is(err, ErrPassNotRun) {
		t.Fatalf("expected rejected result to leave slot empty, got %v", err)
	}
}
