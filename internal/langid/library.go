// Package langid ranks candidate languages for a trigram fingerprint.
package langid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

// Reference file extensions. A file named "<language><ext>" holds the
// fingerprint of that language.
const (
	ExtJSON    = ".json"
	ExtMsgpack = ".msgpack"
)

var (
	// ErrZeroNorm reports a similarity query on an empty fingerprint.
	ErrZeroNorm = errors.New("fingerprint has zero mass")
	// ErrLibraryInconsistency reports a reference that was listed but vanished before it was read.
	ErrLibraryInconsistency = errors.New("reference library changed while loading")
	// ErrNoReferences reports a library without any usable reference.
	ErrNoReferences = errors.New("no reference fingerprints available")
)

// Reference is one language fingerprint.
type Reference struct {
	Language    string
	Fingerprint model.Fingerprint
}

// Library is an ordered set of references. Order decides ties in rankings.
type Library struct {
	refs []Reference
}

// NewLibrary builds a library from references in the given order.
func NewLibrary(refs ...Reference) *Library {
	return &Library{refs: append([]Reference(nil), refs...)}
}

// Len returns the number of references.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.refs)
}

// References returns the references in library order.
func (l *Library) References() []Reference {
	if l == nil {
		return nil
	}
	return append([]Reference(nil), l.refs...)
}

// Languages returns the language names in library order.
func (l *Library) Languages() []string {
	out := make([]string, 0, l.Len())
	for _, ref := range l.References() {
		out = append(out, ref.Language)
	}
	return out
}

// LoadLibrary reads every reference file in dir, in file name order.
// Unreadable or malformed files are skipped. A file that is listed but
// missing when opened fails the whole load with ErrLibraryInconsistency.
func LoadLibrary(dir string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference directory: %w", err)
	}

	lib := &Library{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lang, ext, ok := referenceName(entry.Name())
		if !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fp, err := readReference(path, ext)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrLibraryInconsistency, path)
			}
			logger.Debug("skipping reference", "path", path, "error", err)
			continue
		}
		lib.refs = append(lib.refs, Reference{Language: lang, Fingerprint: fp})
	}
	return lib, nil
}

// ListLanguages returns the languages whose reference files are present in
// dir, without parsing them.
func ListLanguages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference directory: %w", err)
	}
	var langs []string
	seen := map[string]struct{}{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lang, _, ok := referenceName(entry.Name())
		if !ok {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	return langs, nil
}

func referenceName(name string) (string, string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ExtJSON && ext != ExtMsgpack {
		return "", "", false
	}
	lang := strings.TrimSuffix(name, filepath.Ext(name))
	if lang == "" || strings.HasPrefix(lang, ".") {
		return "", "", false
	}
	return lang, ext, true
}

func readReference(path, ext string) (model.Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Fingerprint{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only reference.
			_ = cerr
		}
	}()

	var trigrams freq.Map[string]
	switch ext {
	case ExtMsgpack:
		trigrams, err = decodeMsgpackFingerprint(file)
	default:
		trigrams, err = decodeJSONFingerprint(file)
	}
	if err != nil {
		return model.Fingerprint{}, err
	}
	if trigrams.Total() == 0 {
		return model.Fingerprint{}, fmt.Errorf("reference %s is empty", path)
	}
	return model.Fingerprint{Trigrams: trigrams}, nil
}

// decodeJSONFingerprint reads a JSON object of trigram to count, keeping
// member order.
func decodeJSONFingerprint(r io.Reader) (freq.Map[string], error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to decode reference: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("reference must be a JSON object")
	}

	var entries []freq.Entry[string]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode reference: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected reference key %v", keyTok)
		}
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return nil, fmt.Errorf("invalid count for %q: %w", key, err)
		}
		value, err := num.Float64()
		if err != nil || !validCount(value) {
			return nil, fmt.Errorf("invalid count for %q: %s", key, num)
		}
		entries = append(entries, freq.Entry[string]{Key: key, Count: int(value)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to decode reference: %w", err)
	}
	return freq.FromEntries(entries), nil
}

// validCount reports whether v is a whole count both reference formats accept.
func validCount(v float64) bool {
	return v >= 0 && v <= math.MaxInt32 && v == math.Trunc(v)
}

// SaveReference writes fp to path as an indented JSON object ordered by
// count. An existing file is only replaced when force is set.
func SaveReference(path string, fp model.Fingerprint, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("reference already exists: %s (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat reference: %w", err)
		}
	}

	raw, err := fp.Trigrams.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode reference: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return fmt.Errorf("failed to encode reference: %w", err)
	}
	out.WriteByte('\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create reference dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "reference-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp reference: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write reference: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close reference: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write reference: %w", err)
	}
	return nil
}
