// Command mailer sends the outreach message to the addresses of a scrape
// output file.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Wilfredoo/crew-scraper/internal/archive"
	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/internal/logging"
	"github.com/Wilfredoo/crew-scraper/internal/mailer"
	"github.com/Wilfredoo/crew-scraper/internal/secrets"
)

var (
	configPath string
	password   string
	delay      time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "mailer",
	Short:         "Send the outreach email to scraped addresses",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		logging.Setup(true)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [emails-file]",
	Short: "Mail every address in a file (default: the most recent output)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSend,
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test email to yourself",
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the SMTP password in the OS keychain",
	Args:  cobra.NoArgs,
	RunE:  runSetPassword,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config")
	sendCmd.Flags().DurationVarP(&delay, "delay", "d", config.Default().Mail.Delay, "Pause between two emails")
	setPasswordCmd.Flags().StringVar(&password, "password", "", "Password to store (read from stdin when empty)")

	rootCmd.AddCommand(sendCmd, testCmd, setPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config values with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if f := cmd.Flags().Lookup("delay"); f != nil && f.Changed {
		if delay < 0 {
			return fmt.Errorf("--delay must not be negative, got %s", delay)
		}
		cfg.Mail.Delay = delay
	}
	return cfg.ValidateMail()
}

func newSender(cmd *cobra.Command) (*mailer.Sender, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, nil, err
	}
	pw, err := secrets.SMTPPassword(cfg.Mail)
	if err != nil {
		return nil, nil, err
	}
	return mailer.NewSender(mailer.NewSMTPMailer(cfg.Mail, pw), cfg.Mail), cfg, nil
}

func runSend(cmd *cobra.Command, args []string) error {
	sender, cfg, err := newSender(cmd)
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		latest, ok, err := archive.NewStore(cfg.Output).MostRecentOutput()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no emails file found, run the scraper first")
		}
		path = latest
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := sender.SendFile(ctx, path)
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%d of %d emails failed", len(res.Failed), res.Total)
	}
	return nil
}

func runTest(cmd *cobra.Command, _ []string) error {
	sender, _, err := newSender(cmd)
	if err != nil {
		return err
	}
	return sender.SendTest(cmd.Context())
}

func runSetPassword(*cobra.Command, []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	pw := password
	if pw == "" {
		fmt.Fprint(os.Stderr, "SMTP password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		pw = strings.TrimSpace(line)
	}

	if err := secrets.SetSMTPPassword(cfg.Mail, pw); err != nil {
		return err
	}
	log.Info().Str("account", secrets.KeyringAccount(cfg.Mail)).Msg("🔐 Password stored in keychain")
	return nil
}
