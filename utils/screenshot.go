package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
)

// ScreenShotDebugger saves full-page screenshots when a page misbehaves.
type ScreenShotDebugger struct {
	outputDir string
}

// NewScreenShotDebugger writes into dir, or logs/screenshots when dir is empty.
func NewScreenShotDebugger(dir string) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenShotDebugger{outputDir: dir}
}

func (s *ScreenShotDebugger) Path(name string, at time.Time) string {
	filename := fmt.Sprintf("%s_%s.png", name, at.Format("2006-01-02_15-04-05"))
	return filepath.Join(s.outputDir, filename)
}

func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	path := s.Path(name, time.Now())
	log.Info().Msgf("📸 %s", message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to capture screenshot")
		return err
	}

	log.Info().Str("path", path).Msg("   Screenshot saved")
	return nil
}
