// Package archive owns the flat output files: writing a run's new
// addresses, finding the latest earlier run and moving old runs into
// dated folders.
package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Wilfredoo/crew-scraper/internal/config"
)

const (
	stampLayout  = "20060102_150405"
	dateLayout   = "20060102"
	folderLayout = "January 02, 2006"
)

type Store struct {
	dir        string
	archiveDir string
	prefix     string
	now        func() time.Time
	create     func(path string) (io.WriteCloser, error)
}

func NewStore(cfg config.OutputConfig) *Store {
	archiveDir := cfg.ArchiveDir
	if !filepath.IsAbs(archiveDir) {
		archiveDir = filepath.Join(cfg.Dir, archiveDir)
	}
	return &Store{
		dir:        cfg.Dir,
		archiveDir: archiveDir,
		prefix:     cfg.Prefix,
		now:        time.Now,
		create:     createExclusive,
	}
}

func createExclusive(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

func (s *Store) Dir() string        { return s.dir }
func (s *Store) ArchiveDir() string { return s.archiveDir }

func (s *Store) pattern() string {
	return s.prefix + "_*.txt"
}

// OutputName is the file name of a run that finished at t.
func (s *Store) OutputName(t time.Time) string {
	return fmt.Sprintf("%s_%s.txt", s.prefix, t.Format(stampLayout))
}

// ParseOutputDate reads the calendar date out of an output file name.
func (s *Store) ParseOutputDate(name string) (time.Time, error) {
	rest, ok := strings.CutPrefix(filepath.Base(name), s.prefix+"_")
	if !ok {
		return time.Time{}, fmt.Errorf("%s does not start with %s_", name, s.prefix)
	}
	datePart, _, _ := strings.Cut(strings.TrimSuffix(rest, ".txt"), "_")
	date, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("no date in %s: %w", name, err)
	}
	return date, nil
}

type ArchiveFailure struct {
	File string
	Err  error
}

type ArchiveReport struct {
	Moved  []string
	Failed []ArchiveFailure
}

// ArchiveExistingOutputs moves every output file of the output directory
// into a folder named after its date. Failures are per file; files that
// cannot be moved stay where they are.
func (s *Store) ArchiveExistingOutputs() ArchiveReport {
	var report ArchiveReport

	files, err := filepath.Glob(filepath.Join(s.dir, s.pattern()))
	if err != nil {
		report.Failed = append(report.Failed, ArchiveFailure{File: s.pattern(), Err: err})
		return report
	}
	sort.Strings(files)

	for _, file := range files {
		if err := s.archiveOne(file); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("⚠️ Error archiving")
			report.Failed = append(report.Failed, ArchiveFailure{File: file, Err: err})
			continue
		}
		report.Moved = append(report.Moved, file)
	}

	if len(files) > 0 {
		log.Info().Int("moved", len(report.Moved)).Int("failed", len(report.Failed)).Msg("📦 Archived previous outputs")
	}
	return report
}

func (s *Store) archiveOne(file string) error {
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", file)
	}

	date, err := s.ParseOutputDate(file)
	if err != nil {
		return err
	}

	folderName := date.Format(folderLayout)
	folder := filepath.Join(s.archiveDir, folderName)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("create %s: %w", folder, err)
	}

	dest := filepath.Join(folder, filepath.Base(file))
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%s already exists", dest)
	}
	if err := os.Rename(file, dest); err != nil {
		return fmt.Errorf("move to %s: %w", dest, err)
	}
	log.Info().Msgf("   Archived %s to %s/", filepath.Base(file), folderName)
	return nil
}

// MostRecentOutput returns the newest output file in the output directory
// or any archive folder. ok is false when there is none.
func (s *Store) MostRecentOutput() (path string, ok bool, err error) {
	var candidates []string
	for _, pattern := range []string{
		filepath.Join(s.dir, s.pattern()),
		filepath.Join(s.archiveDir, "*", s.pattern()),
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return "", false, fmt.Errorf("glob %s: %w", pattern, err)
		}
		candidates = append(candidates, matches...)
	}

	var newest time.Time
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", false, err
		}
		if info.IsDir() {
			continue
		}
		mod := info.ModTime()
		if !ok || mod.After(newest) || (mod.Equal(newest) && filepath.Base(c) > filepath.Base(path)) {
			path, newest, ok = c, mod, true
		}
	}
	return path, ok, nil
}

// SaveNewEmails writes one address per line into a fresh timestamped file.
// Nothing new means no file and success.
func (s *Store) SaveNewEmails(emails []string, filtered int) (string, bool) {
	if len(emails) == 0 {
		log.Info().Int("repeated", filtered).Msg("✅ No new emails found, no file created")
		return "", true
	}

	path, err := s.write(emails)
	if err != nil {
		log.Error().Err(err).Msg("❌ Error saving emails")
		return "", false
	}
	log.Info().Int("saved", len(emails)).Int("filtered", filtered).Str("file", path).Msg("💾 Saved new emails")
	return path, true
}

func (s *Store) write(emails []string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	base := strings.TrimSuffix(s.OutputName(s.now()), ".txt")
	path := filepath.Join(s.dir, base+".txt")
	f, err := s.create(path)
	//two runs in the same second
	for i := 2; errors.Is(err, fs.ErrExist) && i < 100; i++ {
		path = filepath.Join(s.dir, fmt.Sprintf("%s-%d.txt", base, i))
		f, err = s.create(path)
	}
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, e := range emails {
		fmt.Fprintln(w, e)
	}
	err = w.Flush()
	if err != nil {
		f.Close()
		err = fmt.Errorf("write %s: %w", path, err)
	} else if cerr := f.Close(); cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		// a partial file would pass for the previous run next time
		if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			log.Warn().Err(rerr).Str("file", path).Msg("⚠️ Could not remove partial output")
		}
		return "", err
	}
	return path, nil
}

// ReadEmails returns the trimmed, non-blank lines of an output file.
func (s *Store) ReadEmails(path string) ([]string, error) {
	return ReadEmails(path)
}

func ReadEmails(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var emails []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			emails = append(emails, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return emails, nil
}
