package langid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

func fingerprint(pairs ...interface{}) model.Fingerprint {
	var entries []freq.Entry[string]
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, freq.Entry[string]{Key: pairs[i].(string), Count: pairs[i+1].(int)})
	}
	return model.Fingerprint{Trigrams: freq.FromEntries(entries)}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestIdentifySelfSimilarity(t *testing.T) {
	fp := fingerprint("$the", 3, "cat", 1, "ing$", 2)
	lib := NewLibrary(Reference{Language: "en", Fingerprint: fp})

	result, err := Identify(fp, lib)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 score, got %d", len(result))
	}
	if math.Abs(result[0].Score-1) > 1e-9 {
		t.Fatalf("expected score 1, got %f", result[0].Score)
	}
}

func TestIdentifyDisjointIsZero(t *testing.T) {
	query := fingerprint("$abc", 1)
	lib := NewLibrary(Reference{Language: "xx", Fingerprint: fingerprint("$xyz", 4)})

	result, err := Identify(query, lib)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if result[0].Score != 0 {
		t.Fatalf("expected score 0, got %f", result[0].Score)
	}
}

func TestIdentifySortsAndKeepsTieOrder(t *testing.T) {
	query := fingerprint("$abc", 1, "xyz$", 1)
	lib := NewLibrary(
		Reference{Language: "b", Fingerprint: fingerprint("$abc", 1)},
		Reference{Language: "c", Fingerprint: fingerprint("$abc", 1, "xyz$", 1)},
		Reference{Language: "a", Fingerprint: fingerprint("xyz$", 1)},
	)

	result, err := Identify(query, lib)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	expected := []string{"c", "b", "a"}
	for i, lang := range expected {
		if result[i].Language != lang {
			t.Fatalf("expected %q at %d, got %q", lang, i, result[i].Language)
		}
	}
	if result[1].Score != result[2].Score {
		t.Fatalf("expected tied scores, got %f and %f", result[1].Score, result[2].Score)
	}
	best, ok := result.BestGuess()
	if !ok || best.Language != "c" {
		t.Fatalf("expected best guess c, got %+v", best)
	}
}

func TestIdentifyErrors(t *testing.T) {
	lib := NewLibrary(Reference{Language: "en", Fingerprint: fingerprint("cat", 1)})
	if _, err := Identify(model.Fingerprint{}, lib); !errors.Is(err, ErrZeroNorm) {
		t.Fatalf("expected ErrZeroNorm, got %v", err)
	}
	if _, err := Identify(fingerprint("cat", 1), NewLibrary()); !errors.Is(err, ErrNoReferences) {
		t.Fatalf("expected ErrNoReferences, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	score, err := Cosine(map[string]float64{"a": 1, "b": 1}, map[string]float64{"a": 1})
	if err != nil {
		t.Fatalf("Cosine failed: %v", err)
	}
	if math.Abs(score-1/math.Sqrt2) > 1e-9 {
		t.Fatalf("expected %f, got %f", 1/math.Sqrt2, score)
	}
	if _, err := Cosine(map[string]float64{}, map[string]float64{"a": 1}); !errors.Is(err, ErrZeroNorm) {
		t.Fatalf("expected ErrZeroNorm, got %v", err)
	}
}

func TestCompareWords(t *testing.T) {
	a := freq.FromEntries([]freq.Entry[string]{{Key: "the", Count: 2}, {Key: "cat", Count: 1}})
	score, err := CompareWords(a, a)
	if err != nil {
		t.Fatalf("CompareWords failed: %v", err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Fatalf("expected 1, got %f", score)
	}
	if _, err := CompareWords(a, nil); !errors.Is(err, ErrZeroNorm) {
		t.Fatalf("expected ErrZeroNorm, got %v", err)
	}
}

func TestLoadLibrarySkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en.json", `{"$the": 5, "ing$": 2}`)
	writeFile(t, dir, "broken.json", `{"$the": `)
	writeFile(t, dir, "empty.json", `{}`)
	writeFile(t, dir, "negative.json", `{"$the": -1}`)
	writeFile(t, dir, "notes.txt", "not a reference")
	if err := os.WriteFile(filepath.Join(dir, "sv.msgpack"), encodeTestMsgpack(map[string]int64{"$och": 7}), 0o644); err != nil {
		t.Fatalf("write msgpack: %v", err)
	}

	lib, err := LoadLibrary(dir, nil)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	langs := lib.Languages()
	if len(langs) != 2 || langs[0] != "en" || langs[1] != "sv" {
		t.Fatalf("expected [en sv], got %v", langs)
	}

	en := lib.References()[0].Fingerprint
	if en.Trigrams[0].Key != "$the" || en.Trigrams[0].Count != 5 || en.Trigrams[1].Key != "ing$" {
		t.Fatalf("unexpected en fingerprint %v", en.Trigrams)
	}
	sv := lib.References()[1].Fingerprint
	if countOf(sv.Trigrams, "$och") != 7 {
		t.Fatalf("expected $och=7, got %v", sv.Trigrams)
	}
}

func TestLoadLibraryMissingDir(t *testing.T) {
	if _, err := LoadLibrary(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestLoadLibraryDanglingEntry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en.json", `{"$the": 5}`)
	if err := os.Symlink(filepath.Join(dir, "gone.json"), filepath.Join(dir, "fr.json")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := LoadLibrary(dir, nil)
	if !errors.Is(err, ErrLibraryInconsistency) {
		t.Fatalf("expected ErrLibraryInconsistency, got %v", err)
	}
}

func TestListLanguages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fr.json", `{}`)
	writeFile(t, dir, "de.msgpack", "")
	writeFile(t, dir, "fr.msgpack", "")
	writeFile(t, dir, "readme.md", "")

	langs, err := ListLanguages(dir)
	if err != nil {
		t.Fatalf("ListLanguages failed: %v", err)
	}
	if len(langs) != 2 || langs[0] != "de" || langs[1] != "fr" {
		t.Fatalf("expected [de fr], got %v", langs)
	}
}

func TestSaveReferenceRoundTripsOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs", "en.json")
	fp := fingerprint("$the", 9, "cat", 4, "ing$", 1)

	if err := SaveReference(path, fp, false); err != nil {
		t.Fatalf("SaveReference failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read reference: %v", err)
	}
	expected := "{\n    \"$the\": 9,\n    \"cat\": 4,\n    \"ing$\": 1\n}\n"
	if string(data) != expected {
		t.Fatalf("unexpected reference contents:\n%s", data)
	}

	if err := SaveReference(path, fp, false); err == nil {
		t.Fatalf("expected error when reference exists")
	}
	if err := SaveReference(path, fingerprint("abc", 1), true); err != nil {
		t.Fatalf("forced SaveReference failed: %v", err)
	}

	lib, err := LoadLibrary(filepath.Join(dir, "refs"), nil)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	if lib.Len() != 1 || countOf(lib.References()[0].Fingerprint.Trigrams, "abc") != 1 {
		t.Fatalf("expected overwritten reference, got %+v", lib.References())
	}
}

func TestDecodeMsgpackWideIntegers(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x82)
	writeMsgpackString(&buf, "$abc")
	buf.WriteByte(0xcd)
	buf.Write([]byte{0x01, 0x00})
	writeMsgpackString(&buf, "xyz$")
	buf.WriteByte(0xcb)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(3))
	buf.Write(tmp[:])

	m, err := decodeMsgpackFingerprint(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if countOf(m, "$abc") != 256 || countOf(m, "xyz$") != 3 {
		t.Fatalf("unexpected decode %v", m)
	}
	if m[0].Key != "$abc" {
		t.Fatalf("expected stream order, got %v", m)
	}
}

func TestDecodeMsgpackRejectsArrayRoot(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x91)
	writeMsgpackString(&buf, "cat")
	if _, err := decodeMsgpackFingerprint(&buf); err == nil {
		t.Fatalf("expected error for array root")
	}
}

func TestDecodersBoundCounts(t *testing.T) {
	for _, raw := range []string{`{"abc": 1e300}`, `{"abc": 2147483648}`, `{"abc": 1.5}`} {
		if _, err := decodeJSONFingerprint(bytes.NewBufferString(raw)); err == nil {
			t.Fatalf("expected %s to be rejected", raw)
		}
	}
	m, err := decodeJSONFingerprint(bytes.NewBufferString(`{"abc": 2147483647}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if countOf(m, "abc") != math.MaxInt32 {
		t.Fatalf("expected max count, got %v", m)
	}

	if _, err := decodeMsgpackFingerprint(bytes.NewReader(encodeTestMsgpack(map[string]int64{"abc": math.MaxInt32 + 1}))); err == nil {
		t.Fatalf("expected oversized msgpack count to be rejected")
	}
	m, err = decodeMsgpackFingerprint(bytes.NewReader(encodeTestMsgpack(map[string]int64{"abc": math.MaxInt32})))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if countOf(m, "abc") != math.MaxInt32 {
		t.Fatalf("expected max count, got %v", m)
	}
}

func encodeTestMsgpack(values map[string]int64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x80 | byte(len(values)))
	for key, value := range values {
		writeMsgpackString(&buf, key)
		buf.WriteByte(0xd3)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(value))
		buf.Write(tmp[:])
	}
	return buf.Bytes()
}

func writeMsgpackString(buf *bytes.Buffer, value string) {
	length := len(value)
	if length <= 31 {
		buf.WriteByte(0xa0 | byte(length))
	} else {
		buf.WriteByte(0xd9)
		buf.WriteByte(byte(length))
	}
	buf.WriteString(value)
}

func countOf(m freq.Map[string], key string) int {
	count, _ := m.Get(key)
	return count
}
