package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file")
	flag.Parse()

	fmt.Println("🍪 Testing cookie loading...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.CookiesPath == "" {
		log.Fatal().Msg("cookies_path is not set")
	}

	cookies, err := browser.LoadCookies(cfg.CookiesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load cookies")
	}
	fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

	for _, c := range cookies {
		fmt.Printf("   %s (domain %s, secure %t)\n", c.Name, deref(c.Domain), c.Secure != nil && *c.Secure)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
