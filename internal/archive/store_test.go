package archive

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Wilfredoo/crew-scraper/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(config.OutputConfig{Dir: t.TempDir(), ArchiveDir: "archived_scrapes", Prefix: "emails"})
	s.now = func() time.Time { return time.Date(2025, time.September, 23, 14, 5, 9, 0, time.UTC) }
	return s
}

func touch(t *testing.T, path, body string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestArchiveExistingOutputs(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	touch(t, filepath.Join(s.dir, "emails_20250923_101500.txt"), "a@x.com\n", now)
	touch(t, filepath.Join(s.dir, "emails_20250923_180000.txt"), "b@x.com\n", now)
	touch(t, filepath.Join(s.dir, "emails_20251001_090000.txt"), "c@x.com\n", now)
	touch(t, filepath.Join(s.dir, "emails_latest.txt"), "d@x.com\n", now)
	touch(t, filepath.Join(s.dir, "notes.txt"), "keep", now)

	report := s.ArchiveExistingOutputs()
	assert.Len(t, report.Moved, 3)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(s.dir, "emails_latest.txt"), report.Failed[0].File)

	assert.FileExists(t, filepath.Join(s.archiveDir, "September 23, 2025", "emails_20250923_101500.txt"))
	assert.FileExists(t, filepath.Join(s.archiveDir, "September 23, 2025", "emails_20250923_180000.txt"))
	assert.FileExists(t, filepath.Join(s.archiveDir, "October 01, 2025", "emails_20251001_090000.txt"))
	assert.FileExists(t, filepath.Join(s.dir, "emails_latest.txt"))
	assert.FileExists(t, filepath.Join(s.dir, "notes.txt"))

	again := s.ArchiveExistingOutputs()
	assert.Empty(t, again.Moved)
	assert.Len(t, again.Failed, 1)
}

func TestArchiveExistingOutputs_Collision(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	touch(t, filepath.Join(s.archiveDir, "September 23, 2025", "emails_20250923_101500.txt"), "old\n", now)
	touch(t, filepath.Join(s.dir, "emails_20250923_101500.txt"), "new\n", now)

	report := s.ArchiveExistingOutputs()
	require.Len(t, report.Failed, 1)
	assert.FileExists(t, filepath.Join(s.dir, "emails_20250923_101500.txt"))

	body, err := os.ReadFile(filepath.Join(s.archiveDir, "September 23, 2025", "emails_20250923_101500.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(body))
}

func TestMostRecentOutput(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.MostRecentOutput()
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Now().Add(-time.Hour)
	touch(t, filepath.Join(s.archiveDir, "September 22, 2025", "emails_20250922_100000.txt"), "", base)
	newest := filepath.Join(s.archiveDir, "September 23, 2025", "emails_20250923_100000.txt")
	touch(t, newest, "", base.Add(time.Minute))
	touch(t, filepath.Join(s.dir, "emails_20250921_100000.txt"), "", base.Add(-time.Minute))

	path, ok, err := s.MostRecentOutput()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, newest, path)
}

func TestSaveNewEmails(t *testing.T) {
	s := newTestStore(t)

	path, ok := s.SaveNewEmails(nil, 4)
	assert.True(t, ok)
	assert.Empty(t, path)

	path, ok = s.SaveNewEmails([]string{"b@x.com", "a@x.com"}, 1)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(s.dir, "emails_20250923_140509.txt"), path)

	emails, err := ReadEmails(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com", "a@x.com"}, emails)

	//same second again gets its own file
	second, ok := s.SaveNewEmails([]string{"c@x.com"}, 0)
	require.True(t, ok)
	assert.NotEqual(t, path, second)
	date, err := s.ParseOutputDate(second)
	require.NoError(t, err)
	assert.Equal(t, time.September, date.Month())
}

// brokenFile creates the real file, then fails on write or close.
type brokenFile struct {
	*os.File
	failWrite bool
}

func (b *brokenFile) Write(p []byte) (int, error) {
	if b.failWrite {
		return 0, errors.New("no space left on device")
	}
	return b.File.Write(p)
}

func (b *brokenFile) Close() error {
	if err := b.File.Close(); err != nil {
		return err
	}
	if !b.failWrite {
		return errors.New("input/output error")
	}
	return nil
}

func TestSaveNewEmails_FailedWriteLeavesNoFile(t *testing.T) {
	for _, failWrite := range []bool{true, false} {
		name := "close fails"
		if failWrite {
			name = "flush fails"
		}
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			s.create = func(path string) (io.WriteCloser, error) {
				f, err := createExclusive(path)
				if err != nil {
					return nil, err
				}
				return &brokenFile{File: f.(*os.File), failWrite: failWrite}, nil
			}

			path, ok := s.SaveNewEmails([]string{"a@x.com", "b@x.com"}, 0)
			assert.False(t, ok)
			assert.Empty(t, path)

			matches, err := filepath.Glob(filepath.Join(s.dir, "emails_*.txt"))
			require.NoError(t, err)
			assert.Empty(t, matches)

			_, found, err := s.MostRecentOutput()
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestReadEmails_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails_20250101_000000.txt")
	require.NoError(t, os.WriteFile(path, []byte(" a@x.com \n\n   \nb@x.com"), 0644))

	emails, err := ReadEmails(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, emails)
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")

	unlock, err := AcquireLock(path)
	require.NoError(t, err)

	_, err = AcquireLock(path)
	assert.True(t, errors.Is(err, ErrLocked))

	require.NoError(t, unlock())
	unlock, err = AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
}
