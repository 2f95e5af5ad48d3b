package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

const defaultTop = 10

// RenderProfile prints every available section of file. Sections whose pass
// has not run are left out.
func RenderProfile(w io.Writer, file *corpus.File, opts ReportOptions) error {
	opts = opts.withDefaults()
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", file.Name(), strings.Repeat("=", min(displayWidth(file.Name()), opts.Width))); err != nil {
		return err
	}
	if basic, err := file.Basic(); err == nil {
		if err := RenderBasic(w, basic); err != nil {
			return err
		}
	}
	if words, err := file.Words(); err == nil {
		if err := RenderWords(w, words, opts.Top); err != nil {
			return err
		}
	}
	if sentences, err := file.Sentences(); err == nil {
		if err := RenderSentences(w, sentences, opts.Width); err != nil {
			return err
		}
	}
	if chars, err := file.Characters(); err == nil {
		if err := RenderCharacters(w, chars, opts); err != nil {
			return err
		}
	}
	if languages, err := file.Languages(); err == nil {
		if err := RenderLanguages(w, languages, opts.Top); err != nil {
			return err
		}
	}
	return nil
}

// RenderBasic prints line, word and character counts.
func RenderBasic(w io.Writer, basic model.BasicStats) error {
	rows := [][]string{
		{"Lines", strconv.Itoa(basic.Lines)},
		{"Words", strconv.Itoa(basic.Words)},
		{"Characters (no spaces)", strconv.Itoa(basic.Characters)},
		{"Characters (with spaces)", strconv.Itoa(basic.CharactersAndSpaces())},
		{"Avg words per line", fmt.Sprintf("%.2f", basic.AverageWordsPerLine())},
		{"Avg characters per word", fmt.Sprintf("%.2f", basic.AverageCharactersPerWord())},
	}
	return writeSection(w, "Basic", nil, rows, map[int]bool{1: true})
}

// RenderWords prints the most common words and the word length summary.
func RenderWords(w io.Writer, words model.WordStats, top int) error {
	summary := words.LengthSummary()
	rows := [][]string{
		{"Unique words", strconv.Itoa(len(words.Occurrences))},
		{"Words used once", strconv.Itoa(len(words.OrphanWords()))},
		{"Shortest word length", strconv.Itoa(summary.Shortest)},
		{"Longest word length", strconv.Itoa(summary.Longest)},
		{"Avg word length", fmt.Sprintf("%.2f", summary.Average)},
	}
	if err := writeSection(w, "Words", nil, rows, map[int]bool{1: true}); err != nil {
		return err
	}
	return writeSection(w, fmt.Sprintf("Top %d Words", top), []string{"Word", "Count", "Share"},
		frequencyRows(TopN(words.Occurrences, top, nil), words.Occurrences.Total(), func(k string) string { return k }),
		map[int]bool{1: true, 2: true})
}

// RenderSentences prints sentence totals and the length distribution.
func RenderSentences(w io.Writer, sentences model.SentenceStats, width int) error {
	valueWidth := width - displayWidth("Avg words per sentence") - 1
	rows := [][]string{
		{"Sentences", strconv.Itoa(sentences.Count)},
		{"Avg words per sentence", fmt.Sprintf("%.2f", sentences.AverageWordsPerSentence())},
		{"Shortest", truncate(sentences.Shortest, valueWidth)},
		{"Longest", truncate(sentences.Longest, valueWidth)},
	}
	if err := writeSection(w, "Sentences", nil, rows, nil); err != nil {
		return err
	}
	return writeSection(w, "Sentence Lengths", []string{"Words", "Count", "Share"},
		frequencyRows(sentences.Distribution, sentences.Count, strconv.Itoa),
		map[int]bool{0: true, 1: true, 2: true})
}

// RenderCharacters prints class totals, letter case counts and the most
// common letters.
func RenderCharacters(w io.Writer, chars model.CharacterStats, opts ReportOptions) error {
	rows := make([][]string, 0, len(model.Classes())+3)
	for _, class := range model.Classes() {
		rows = append(rows, []string{class.String(), strconv.Itoa(chars.Count(class)), percent(chars.Count(class), chars.Total)})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(chars.Total), percent(chars.Total, chars.Total)})
	if err := writeSection(w, "Characters", []string{"Class", "Count", "Share"}, rows, map[int]bool{1: true, 2: true}); err != nil {
		return err
	}

	if opts.Lower == nil {
		return nil
	}
	lower, upper := chars.CaseCounts(opts.Lower, opts.Upper)
	caseRows := [][]string{
		{"Lowercase", strconv.Itoa(lower)},
		{"Uppercase", strconv.Itoa(upper)},
	}
	if err := writeSection(w, "Letter Case", nil, caseRows, map[int]bool{1: true}); err != nil {
		return err
	}
	letters := make(map[rune]struct{}, len(opts.Lower)+len(opts.Upper))
	for r := range opts.Lower {
		letters[r] = struct{}{}
	}
	for r := range opts.Upper {
		letters[r] = struct{}{}
	}
	return writeSection(w, fmt.Sprintf("Top %d Letters", opts.Top), []string{"Char", "Count", "Share"},
		frequencyRows(TopN(chars.Occurrences, opts.Top, letters), chars.Total, charLabel),
		map[int]bool{1: true, 2: true})
}

// RenderLanguages prints the best matching languages.
func RenderLanguages(w io.Writer, languages model.SimilarityResult, top int) error {
	if len(languages) == 0 {
		return nil
	}
	if top > 0 && top < len(languages) {
		languages = languages[:top]
	}
	rows := make([][]string, 0, len(languages))
	for _, l := range languages {
		rows = append(rows, []string{l.Language, fmt.Sprintf("%.4f", l.Score)})
	}
	return writeSection(w, "Languages", []string{"Language", "Similarity"}, rows, map[int]bool{1: true})
}

// RenderHistory prints persisted profiles, oldest first.
func RenderHistory(w io.Writer, profiles []model.ProfileSummary) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(w, "No profiles found.")
		return err
	}
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		lang := p.Language
		if lang == "" {
			lang = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			p.Name,
			strconv.Itoa(p.Basic.Words),
			strconv.Itoa(p.UniqueWords),
			strconv.Itoa(p.Sentences),
			lang,
		})
	}
	headers := []string{"ID", "Analyzed", "File", "Words", "Unique", "Sentences", "Language"}
	return writeSection(w, "History", headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true})
}

func writeSection(w io.Writer, title string, headers []string, rows [][]string, rightAlign map[int]bool) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(w, "(none)"); err != nil {
			return err
		}
	} else {
		for _, line := range formatTable(headers, rows, rightAlign) {
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func frequencyRows[K comparable](m freq.Map[K], total int, label func(K) string) [][]string {
	rows := make([][]string, 0, len(m))
	for _, e := range m {
		rows = append(rows, []string{label(e.Key), strconv.Itoa(e.Count), percent(e.Count, total)})
	}
	return rows
}

func percent(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}

func charLabel(r rune) string {
	switch r {
	case ' ':
		return "<space>"
	case '\t':
		return "<tab>"
	case '\n':
		return "<newline>"
	case '\r':
		return "<cr>"
	default:
		return string(r)
	}
}
