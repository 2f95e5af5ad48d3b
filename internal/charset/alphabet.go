package charset

import (
	"strings"
	"unicode"
)

const baseAlphabet = "abcdefghijklmnopqrstuvwxyzåäö'-"

var extraLetters = map[string]string{
	"de": "äöüß",
	"da": "æøå",
	"no": "æøå",
	"nb": "æøå",
	"fr": "àâæçéèêëîïôœùûüÿ",
	"es": "áéíñóúü",
	"it": "àèéìíîòóùú",
	"pt": "áâãàçéêíóôõú",
	"pl": "ąćęłńóśźż",
}

// ExtraLetters returns the diacritic letters used for lang, or "" when the
// base alphabet already covers the language.
func ExtraLetters(lang string) string {
	return extraLetters[strings.ToLower(lang)]
}

// WordAlphabet returns the runes allowed inside a normalized word: lowercase
// Latin letters with å, ä and ö, the apostrophe, the hyphen, and extra.
func WordAlphabet(extra string) Set {
	return FromString(baseAlphabet + strings.ToLower(extra))
}

// LetterAlphabet returns the lowercase letters of the word alphabet and
// their uppercase forms, without the apostrophe and hyphen.
func LetterAlphabet(extra string) (lower, upper Set) {
	return SplitCase(WordAlphabet(extra))
}

// SplitCase returns the letters of alphabet and their uppercase forms.
// Non-letters are left out.
func SplitCase(alphabet Set) (lower, upper Set) {
	lower, upper = Set{}, Set{}
	for r := range alphabet {
		if !unicode.IsLetter(r) {
			continue
		}
		lower[r] = struct{}{}
		if u := unicode.ToUpper(r); u != r {
			upper[u] = struct{}{}
		}
	}
	return lower, upper
}
