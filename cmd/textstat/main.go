// Package main provides the CLI entrypoint for textstat.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/textstat/internal/analysis"
	"github.com/verte-zerg/textstat/internal/charset"
	"github.com/verte-zerg/textstat/internal/config"
	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/langid"
	"github.com/verte-zerg/textstat/internal/logging"
	"github.com/verte-zerg/textstat/internal/model"
	"github.com/verte-zerg/textstat/internal/stats"
	"github.com/verte-zerg/textstat/internal/store"
)

const (
	defaultLang = "en"
	defaultTop  = 10
)

var (
	logLevel  string
	logFormat string
	refDir    string
	dbPath    string

	analyzeLang         string
	analyzeExtraLetters string
	analyzeStopChars    string
	analyzePunctuation  string
	analyzeMaxWords     int
	analyzeTop          int
	analyzeWorkers      int
	analyzePassTimeout  time.Duration
	analyzeNoSave       bool

	fingerprintMaxWords int
	fingerprintForce    bool

	compareLang string

	historyLast int
	historyLang string
	historyPath string

	fileCfg config.FileConfig
	logger  = logging.Discard()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "textstat",
		Short:             "Text corpus statistics and language identification",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&refDir, "refs", config.DefaultReferenceDir(), "reference fingerprint directory")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "profile history database")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newFingerprintCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	fileCfg, err = config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "refs", &refDir, fileCfg.References.Dir)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	refDir = config.ExpandHome(refDir)
	dbPath = config.ExpandHome(dbPath)

	logger, err = logging.New(logging.Options{Level: logLevel, Format: logFormat, Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Profile text files and guess their language",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().StringVar(&analyzeLang, "lang", defaultLang, "language code adding word letters beyond a-z and åäö")
	cmd.Flags().StringVar(&analyzeExtraLetters, "extra-letters", "", "extra word letters, or @file")
	cmd.Flags().StringVar(&analyzeStopChars, "stop-chars", charset.DefaultStopChars, "sentence terminators, or @file")
	cmd.Flags().StringVar(&analyzePunctuation, "punctuation", charset.DefaultPunctuation, "punctuation set, or @file")
	cmd.Flags().IntVar(&analyzeMaxWords, "max-words", analysis.DefaultMaxWords, "trigram word budget (0 for no limit)")
	cmd.Flags().IntVar(&analyzeTop, "top", defaultTop, "rows in ranked tables")
	cmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "concurrent passes (0 for all)")
	cmd.Flags().DurationVar(&analyzePassTimeout, "pass-timeout", 0, "deadline per pass (0 for none)")
	cmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not record the profile in history")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := analysisConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	opts, err := analysis.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	// Validate every input before any pass runs.
	sources := make([]corpus.Source, 0, len(args))
	for _, path := range args {
		src, err := corpus.Validate(path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	lib, err := loadReferences()
	if err != nil {
		return err
	}

	var st *store.Store
	if !analyzeNoSave && !boolValue(fileCfg.Store.Disable) {
		st, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	lower, upper := charset.SplitCase(opts.WordAlphabet)
	reportOpts := stats.ReportOptions{Top: cfg.Top, Lower: lower, Upper: upper}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	for i, src := range sources {
		if len(sources) > 1 {
			logErrf("[%d/%d] %s\n", i+1, len(sources), src.Path())
		}
		file, err := analysis.Run(ctx, src, opts, lib, logger)
		if err != nil {
			return fmt.Errorf("failed to analyze %s: %w", src.Path(), err)
		}
		if err := stats.RenderProfile(out, file, reportOpts); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if st == nil {
			continue
		}
		summary, err := stats.Summarize(file, cfg.Top, time.Now())
		if err != nil {
			return err
		}
		if abs, err := filepath.Abs(summary.Path); err == nil {
			summary.Path = abs
		}
		id, err := st.InsertProfile(ctx, summary)
		if err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		logger.Debug("profile saved", "id", id, "file", src.Name())
	}
	return nil
}

// loadReferences returns an empty library when the reference directory does
// not exist, so analysis still runs without language identification.
func loadReferences() (*langid.Library, error) {
	if _, err := os.Stat(refDir); err != nil {
		if os.IsNotExist(err) {
			logger.Info("reference directory missing, skipping language identification", "dir", refDir)
			return langid.NewLibrary(), nil
		}
		return nil, fmt.Errorf("failed to stat reference directory: %w", err)
	}
	lib, err := langid.LoadLibrary(refDir, logger)
	if err != nil {
		return nil, err
	}
	if lib.Len() == 0 {
		logger.Info("no usable reference fingerprints", "dir", refDir)
		return lib, nil
	}
	logger.Debug("references loaded", "dir", refDir, "languages", lib.Languages())
	return lib, nil
}

func analysisConfig(cmd *cobra.Command) (model.Config, error) {
	a := fileCfg.Analysis
	applyStringConfig(cmd, "lang", &analyzeLang, a.Lang)
	applyStringConfig(cmd, "extra-letters", &analyzeExtraLetters, a.ExtraLetters)
	applyStringConfig(cmd, "stop-chars", &analyzeStopChars, a.StopChars)
	applyStringConfig(cmd, "punctuation", &analyzePunctuation, a.Punctuation)
	applyIntConfig(cmd, "max-words", &analyzeMaxWords, a.MaxWords)
	applyIntConfig(cmd, "top", &analyzeTop, a.Top)
	applyIntConfig(cmd, "workers", &analyzeWorkers, a.Workers)
	timeout, err := a.Timeout()
	if err != nil {
		return model.Config{}, err
	}
	if a.PassTimeout != nil {
		applyDurationConfig(cmd, "pass-timeout", &analyzePassTimeout, &timeout)
	}

	return model.Config{
		Lang:         analyzeLang,
		ExtraLetters: analyzeExtraLetters,
		StopChars:    analyzeStopChars,
		Punctuation:  analyzePunctuation,
		MaxWords:     analyzeMaxWords,
		Top:          analyzeTop,
		Workers:      analyzeWorkers,
		PassTimeout:  analyzePassTimeout,
	}, nil
}

func newFingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint INPUT OUTPUT",
		Short: "Write the trigram fingerprint of a text file as a reference",
		Long: "Write the trigram fingerprint of INPUT to OUTPUT as JSON. A bare language\n" +
			"name as OUTPUT (no extension) writes <refs>/<name>.json.",
		Args: cobra.ExactArgs(2),
		RunE: runFingerprintCmd,
	}
	cmd.Flags().IntVar(&fingerprintMaxWords, "max-words", analysis.DefaultMaxWords, "trigram word budget (0 for no limit)")
	cmd.Flags().BoolVar(&fingerprintForce, "force", false, "overwrite existing files")
	return cmd
}

func runFingerprintCmd(cmd *cobra.Command, args []string) error {
	applyIntConfig(cmd, "max-words", &fingerprintMaxWords, fileCfg.Analysis.MaxWords)
	if fingerprintMaxWords < 0 {
		return fmt.Errorf("--max-words must be >= 0")
	}
	outPath := args[1]
	if filepath.Ext(outPath) == "" && !strings.ContainsRune(outPath, filepath.Separator) {
		outPath = filepath.Join(refDir, outPath+langid.ExtJSON)
	}

	fp, err := analysis.Fingerprint(cmd.Context(), args[0], fingerprintMaxWords)
	if err != nil {
		return err
	}
	if fp.Mass() == 0 {
		return fmt.Errorf("no words found in %s: %w", args[0], langid.ErrZeroNorm)
	}
	if err := langid.SaveReference(outPath, fp, fingerprintForce); err != nil {
		return err
	}
	logErrf("Wrote %s (%d trigrams)\n", outPath, len(fp.Trigrams))
	return nil
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare FILE FILE",
		Short: "Cosine similarity of the word usage of two text files",
		Args:  cobra.ExactArgs(2),
		RunE:  runCompareCmd,
	}
	cmd.Flags().StringVar(&compareLang, "lang", defaultLang, "language code adding word letters beyond a-z and åäö")
	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	applyStringConfig(cmd, "lang", &compareLang, fileCfg.Analysis.Lang)
	alphabet := charset.WordAlphabet(charset.ExtraLetters(compareLang))

	ctx := cmd.Context()
	words := make([]model.WordStats, 0, len(args))
	for _, path := range args {
		src, err := corpus.Validate(path)
		if err != nil {
			return err
		}
		ws, err := analysis.Words(ctx, src, alphabet)
		if err != nil {
			return fmt.Errorf("failed to analyze %s: %w", path, err)
		}
		words = append(words, ws)
	}

	score, err := langid.CompareWords(words[0].Occurrences, words[1].Occurrences)
	if err != nil {
		if errors.Is(err, langid.ErrZeroNorm) {
			return fmt.Errorf("cannot compare files without words: %w", err)
		}
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", score); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List reference fingerprint languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := langid.ListLanguages(refDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logErrf("No references found. Create one with: textstat fingerprint <file.txt> <lang>\n")
			return fmt.Errorf("reference directory does not exist")
		}
		return err
	}
	if len(langs) == 0 {
		logErrf("No references found. Create one with: textstat fingerprint <file.txt> <lang>\n")
		return fmt.Errorf("no references found")
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously analyzed files",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N profiles")
	cmd.Flags().StringVar(&historyLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&historyPath, "path", "", "only profiles of this file")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	filter := store.HistoryFilter{Last: historyLast, Language: historyLang}
	if historyPath != "" {
		// Profiles are stored under absolute paths.
		filter.Path, err = filepath.Abs(historyPath)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", historyPath, err)
		}
	}
	profiles, err := st.ListProfiles(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	return stats.RenderHistory(cmd.OutOrStdout(), profiles)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func validateConfig(cfg model.Config) error {
	if cfg.MaxWords < 0 {
		return fmt.Errorf("--max-words must be >= 0")
	}
	if cfg.Top <= 0 {
		return fmt.Errorf("--top must be > 0")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	if cfg.PassTimeout < 0 {
		return fmt.Errorf("--pass-timeout must be >= 0")
	}
	if cfg.StopChars == "" {
		return fmt.Errorf("--stop-chars must not be empty")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func boolValue(v *bool) bool {
	return v != nil && *v
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
