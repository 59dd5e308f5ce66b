// Smoke test: launch Chromium with the stealth setup, open the jobs page and
// report what the scraper would see.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/internal/logging"
	"github.com/Wilfredoo/crew-scraper/internal/scraper/crewunited"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file")
	flag.Parse()

	logging.Setup(true)
	fmt.Println("🌐 Testing browser session...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pm, err := browser.NewPlaywright(ctx, cfg.Browser)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start Playwright")
	}
	defer pm.Close()

	session, err := pm.NewSession(nil, "")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session")
	}
	fmt.Println("✅ Session created")

	if err := session.Navigate(ctx, cfg.JobsURL, cfg.Selectors.PageMarker); err != nil {
		log.Error().Err(err).Msg("Jobs page did not show listings")
	}
	fmt.Printf("✅ Page URL: %s\n", session.URL())

	targets, err := crewunited.NewClassifier(cfg).FindTargetElements(session)
	if err != nil {
		log.Error().Err(err).Msg("Classification failed")
	}
	fmt.Printf("🎭 Target listings on first page: %d\n", len(targets))

	if err := session.Screenshot("browser-smoke", "Smoke test screenshot"); err != nil {
		log.Error().Err(err).Msg("Failed to take screenshot")
	}
	fmt.Println("✨ Test complete!")
}
