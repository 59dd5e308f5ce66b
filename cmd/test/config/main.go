// Prints the effective configuration after YAML and env overrides.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/internal/secrets"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file")
	flag.Parse()

	fmt.Println("🔧 Testing config loading...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Jobs URL: %s\n", cfg.JobsURL)
	fmt.Printf("   Categories: %v\n", cfg.TargetCategories)
	fmt.Printf("   Max pages: %d\n", cfg.MaxPages)
	fmt.Printf("   Headless: %t, wait timeout: %s\n", cfg.Browser.Headless, cfg.Browser.WaitTimeout)
	fmt.Printf("   Output: %s (archive %s)\n", cfg.Output.Dir, cfg.Output.ArchiveDir)
	fmt.Printf("   SMTP: %s as %q\n", cfg.Mail.Addr(), cfg.Mail.Sender())
	if _, err := secrets.SMTPPassword(cfg.Mail); err != nil {
		fmt.Printf("   SMTP password: ⚠️ %v\n", err)
	} else {
		fmt.Printf("   SMTP password: found\n")
	}
	fmt.Printf("   Telegram: %t\n", cfg.Telegram.Enabled())
}
