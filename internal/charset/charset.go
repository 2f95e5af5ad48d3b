// Package charset loads character sets used to classify text.
package charset

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Default sets used when no configuration overrides them.
const (
	DefaultStopChars   = ".!?"
	DefaultPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Set is a collection of runes.
type Set map[rune]struct{}

// FromString returns the set of runes in s.
func FromString(s string) Set {
	set := make(Set, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is a member.
func (s Set) Contains(r rune) bool {
	_, ok := s[r]
	return ok
}

// ContainsAny reports whether any rune of text is a member.
func (s Set) ContainsAny(text string) bool {
	for _, r := range text {
		if _, ok := s[r]; ok {
			return true
		}
	}
	return false
}

// String returns the members as a string in no particular order.
func (s Set) String() string {
	var b strings.Builder
	for r := range s {
		b.WriteRune(r)
	}
	return b.String()
}

// Load reads a resource file and returns every rune it contains. Surrounding
// whitespace of each line is ignored.
func Load(path string) (Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only resource file.
			_ = cerr
		}
	}()

	set := Set{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		for _, r := range line {
			set[r] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("character set %s is empty", path)
	}
	return set, nil
}

// Resolve returns the set loaded from value when it names an existing file
// (prefixed with "@"), otherwise the runes of value itself.
func Resolve(value string) (Set, error) {
	if path, ok := strings.CutPrefix(value, "@"); ok {
		set, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load character set: %w", err)
		}
		return set, nil
	}
	return FromString(value), nil
}
