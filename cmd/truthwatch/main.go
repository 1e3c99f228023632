package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/truthwatch/internal/classify"
	"github.com/stellarlinkco/truthwatch/internal/config"
	"github.com/stellarlinkco/truthwatch/internal/cursor"
	"github.com/stellarlinkco/truthwatch/internal/feed"
	"github.com/stellarlinkco/truthwatch/internal/monitor"
	"github.com/stellarlinkco/truthwatch/internal/notify"
)

var rootCmd = &cobra.Command{
	Use:   "truthwatch",
	Short: "truthwatch - market-impact monitor for Truth Social posts",
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll the account and push alerts until interrupted",
	RunE:  runMonitor,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single polling cycle and print the outcome",
	RunE:  runCheck,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and state directory",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show truthwatch status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(monitorCmd, checkCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildMonitor wires the collaborators from config.
func buildMonitor(cfg *config.Config) (*monitor.Monitor, error) {
	if cfg.Account.Handle == "" {
		return nil, fmt.Errorf("account handle is not set. Run 'truthwatch onboard' or set TRUTHWATCH_ACCOUNT")
	}

	classifier, err := classify.New(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("init classifier: %w", err)
	}

	manager, err := notify.NewManager(cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("init channels: %w", err)
	}
	if len(manager.EnabledChannels()) == 0 {
		return nil, fmt.Errorf("no notification channel enabled. Set a ntfy topic or telegram bot in %s", config.ConfigPath())
	}

	fetcher := feed.NewClient(cfg.Account)
	store := cursor.NewFileStore(cfg.CursorPath())

	return monitor.New(cfg, fetcher, classifier, manager, store)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mon, err := buildMonitor(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mon, err := buildMonitor(cfg)
	if err != nil {
		return err
	}

	res, err := mon.Cycle(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Print(formatResult(res))
	return nil
}

func formatResult(res monitor.Result) string {
	switch res.Outcome {
	case monitor.OutcomeFetchError:
		return fmt.Sprintf("Fetch failed: %v\n", res.FetchErr)
	case monitor.OutcomeNoPosts:
		return "No posts found.\n"
	case monitor.OutcomeDuplicate:
		return fmt.Sprintf("No new posts (newest %s already processed).\n", res.PostID)
	default:
		out := fmt.Sprintf("Processed post %s\n", res.PostID)
		switch {
		case res.ClassifyErr != nil:
			out += fmt.Sprintf("Classification failed: %v\n", res.ClassifyErr)
		case res.Rationale == "":
			out += "No extractable text, classification skipped.\n"
		case res.Verdict:
			out += fmt.Sprintf("Verdict: could impact market\nAnalysis: %s\n", res.Rationale)
			if res.Notified {
				out += "Alert sent.\n"
			} else if res.NotifyErr != nil {
				out += fmt.Sprintf("Alert failed: %v\n", res.NotifyErr)
			}
		default:
			out += fmt.Sprintf("Verdict: unlikely to impact market\nAnalysis: %s\n", res.Rationale)
		}
		return out
	}
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your API key and a ntfy topic\n", cfgPath)
	fmt.Println("  2. Or set TRUTHWATCH_API_KEY and TRUTHWATCH_NTFY_TOPIC")
	fmt.Println("  3. Run 'truthwatch check' to test a single cycle")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Account: @%s (%s)\n", cfg.Account.Handle, cfg.Account.BaseURL)
	fmt.Printf("Provider: %s\n", providerDisplay(cfg.Provider.Type))
	fmt.Printf("Model: %s\n", cfg.Provider.ModelName())
	fmt.Printf("API Key: %s\n", maskKey(cfg.Provider.APIKey))
	fmt.Printf("Poll: every %s (lookback %s)\n", cfg.Poll.IntervalDuration(), cfg.Poll.LookbackDuration())
	fmt.Printf("Ntfy: enabled=%v topic=%q\n", cfg.Channels.Ntfy.Enabled, cfg.Channels.Ntfy.Topic)
	fmt.Printf("Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)

	store := cursor.NewFileStore(cfg.CursorPath())
	lastID, err := store.Load()
	switch {
	case err != nil:
		fmt.Printf("Cursor: error (%v)\n", err)
	case lastID == "":
		fmt.Println("Cursor: none (cold start)")
	default:
		fmt.Printf("Cursor: %s\n", lastID)
	}

	return nil
}

func providerDisplay(t string) string {
	if t == "" {
		return "anthropic (default)"
	}
	return t
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "set"
}
