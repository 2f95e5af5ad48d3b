// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so that analyzed_at sorts as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for analyzed profiles.
type Store struct {
	db *sql.DB
}

// HistoryFilter narrows ListProfiles.
type HistoryFilter struct {
	// Last keeps only the most recent profiles when > 0.
	Last int
	// Language keeps only profiles identified as this language.
	Language string
	// Path keeps only profiles of this source path.
	Path string
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			analyzed_at TEXT NOT NULL,
			lines INTEGER NOT NULL,
			words INTEGER NOT NULL,
			characters INTEGER NOT NULL,
			spaces INTEGER NOT NULL,
			unique_words INTEGER NOT NULL,
			sentences INTEGER NOT NULL,
			language TEXT NOT NULL,
			language_fit REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profile_words (
			profile_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			word TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (profile_id, rank)
		);`,
		`CREATE TABLE IF NOT EXISTS profile_languages (
			profile_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			language TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (profile_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_analyzed_at ON profiles(analyzed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_language ON profiles(language);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertProfile stores a profile summary with its ranked words and languages.
func (s *Store) InsertProfile(ctx context.Context, p model.ProfileSummary) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (path, name, analyzed_at, lines, words, characters, spaces, unique_words, sentences, language, language_fit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Path,
		p.Name,
		p.AnalyzedAt.UTC().Format(timeLayout),
		p.Basic.Lines,
		p.Basic.Words,
		p.Basic.Characters,
		p.Basic.Spaces,
		p.UniqueWords,
		p.Sentences,
		p.Language,
		p.LanguageFit,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = insertRanked(ctx, tx, `INSERT INTO profile_words (profile_id, rank, word, count) VALUES (?, ?, ?, ?)`,
		len(p.TopWords), func(i int) []any {
			return []any{id, i, p.TopWords[i].Key, p.TopWords[i].Count}
		}); err != nil {
		return 0, err
	}
	if err = insertRanked(ctx, tx, `INSERT INTO profile_languages (profile_id, rank, language, score) VALUES (?, ?, ?, ?)`,
		len(p.TopLanguages), func(i int) []any {
			return []any{id, i, p.TopLanguages[i].Language, p.TopLanguages[i].Score}
		}); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertRanked(ctx context.Context, tx *sql.Tx, query string, n int, args func(int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// ListProfiles returns stored profiles oldest first, with their ranked words
// and languages.
func (s *Store) ListProfiles(ctx context.Context, filter HistoryFilter) ([]model.ProfileSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Language != "" {
		clauses = append(clauses, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.Path != "" {
		clauses = append(clauses, "path = ?")
		args = append(args, filter.Path)
	}
	query := fmt.Sprintf(`SELECT id, path, name, analyzed_at, lines, words, characters, spaces,
			unique_words, sentences, language, language_fit
		FROM profiles
		WHERE %s
		ORDER BY analyzed_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var profiles []model.ProfileSummary
	for rows.Next() {
		var p model.ProfileSummary
		var analyzedAt string
		if err := rows.Scan(&p.ID, &p.Path, &p.Name, &analyzedAt, &p.Basic.Lines, &p.Basic.Words,
			&p.Basic.Characters, &p.Basic.Spaces, &p.UniqueWords, &p.Sentences, &p.Language, &p.LanguageFit); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, analyzedAt)
		if err != nil {
			return nil, err
		}
		p.AnalyzedAt = parsed
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(profiles) > filter.Last {
		profiles = profiles[len(profiles)-filter.Last:]
	}
	if err := s.attachRanked(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Store) attachRanked(ctx context.Context, profiles []model.ProfileSummary) error {
	if len(profiles) == 0 {
		return nil
	}
	byID := make(map[int64]*model.ProfileSummary, len(profiles))
	placeholders := make([]string, len(profiles))
	args := make([]any, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
		placeholders[i] = "?"
		args[i] = profiles[i].ID
	}
	in := strings.Join(placeholders, ",")

	words, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT profile_id, word, count
		FROM profile_words
		WHERE profile_id IN (%s)
		ORDER BY profile_id, rank`, in), args...)
	if err != nil {
		return err
	}
	err = scanRows(words, func() error {
		var id int64
		var e freq.Entry[string]
		if err := words.Scan(&id, &e.Key, &e.Count); err != nil {
			return err
		}
		byID[id].TopWords = append(byID[id].TopWords, e)
		return nil
	})
	if err != nil {
		return err
	}

	langs, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT profile_id, language, score
		FROM profile_languages
		WHERE profile_id IN (%s)
		ORDER BY profile_id, rank`, in), args...)
	if err != nil {
		return err
	}
	return scanRows(langs, func() error {
		var id int64
		var score model.LanguageScore
		if err := langs.Scan(&id, &score.Language, &score.Score); err != nil {
			return err
		}
		byID[id].TopLanguages = append(byID[id].TopLanguages, score)
		return nil
	})
}

func scanRows(rows *sql.Rows, scan func() error) error {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		if err := scan(); err != nil {
			return err
		}
	}
	return rows.Err()
}
