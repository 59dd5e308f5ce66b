package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RoundTripThroughReplay(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	dir := t.TempDir()

	rec, err := NewRecorder(dir)
	require.NoError(t, err)

	require.NoError(t, s.Navigate(ctx, "https://example.com/jobs/", ""))
	require.NoError(t, rec.Record(s))
	require.NoError(t, s.Navigate(ctx, "https://example.com/jobs/?page=2", ""))
	require.NoError(t, rec.Record(s))

	assert.FileExists(t, filepath.Join(dir, "page-001.html"))
	assert.FileExists(t, filepath.Join(dir, "page-002.html"))

	replay, start, err := LoadReplay(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/jobs/", start)

	require.NoError(t, replay.Navigate(ctx, start, "span.crumb"))
	next, err := replay.FindAll("a.next")
	require.NoError(t, err)
	require.NoError(t, replay.Click(ctx, next[0]))
	assert.Equal(t, "https://example.com/jobs/?page=2", replay.URL())
}

func TestLoadReplay_EmptyManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("pages: []\n"), 0644))

	_, _, err := LoadReplay(dir)
	assert.Error(t, err)
}
