// Package main provides the Chrono CLI: a conversational assistant that
// discovers and books appointment slots on a scheduling page by driving a
// headless browser.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/chrono/pkg/agent"
	"github.com/entrhq/chrono/pkg/agent/tools"
	"github.com/entrhq/chrono/pkg/config"
	"github.com/entrhq/chrono/pkg/llm/openai"
	"github.com/entrhq/chrono/pkg/logging"
	"github.com/entrhq/chrono/pkg/scheduler"
	"github.com/entrhq/chrono/pkg/tools/booking"
	"github.com/entrhq/chrono/pkg/ui"
)

const version = "0.1.0"

// cliFlags holds command-line overrides; config file values fill the gaps.
type cliFlags struct {
	ConfigFile  string
	CalendarURL string
	Model       string
	APIKey      string
	BaseURL     string
	Headed      bool
	ShowVersion bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("Chrono v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down...")
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "chrono: %v\n", err)
		os.Exit(1)
	}
	cancel()
}

func parseFlags() *cliFlags {
	flags := &cliFlags{}

	flag.StringVar(&flags.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&flags.CalendarURL, "url", "", "Booking page URL (overrides config)")
	flag.StringVar(&flags.Model, "model", "", "LLM model to use (overrides config)")
	flag.StringVar(&flags.APIKey, "api-key", "", "OpenAI API key (overrides config and environment)")
	flag.StringVar(&flags.BaseURL, "base-url", "", "OpenAI API base URL (overrides config and environment)")
	flag.BoolVar(&flags.Headed, "headed", false, "Run the browser with a visible window")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Chrono - Conversational appointment booking\n\n")
		fmt.Fprintf(os.Stderr, "Usage: chrono [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chrono -url https://example.com/team/30min\n")
		fmt.Fprintf(os.Stderr, "  chrono -config ./chrono.yaml -model gpt-4o\n")
	}

	flag.Parse()
	return flags
}

func run(ctx context.Context, flags *cliFlags) error {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlagOverrides(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logErr := logging.NewLogger("chrono")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", logErr)
	}
	defer logger.Close()

	provider, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	manager, err := scheduler.NewSessionManager(scheduler.SessionOptions{
		Headless:          cfg.Browser.Headless,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		SelectorTimeout:   cfg.Browser.SelectorTimeout,
		AllowedHosts:      cfg.EffectiveAllowedHosts(),
	})
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	console := ui.NewConsole(os.Stdout)
	console.Info("Starting browser...")
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer manager.Shutdown()

	engine, err := scheduler.New(scheduler.Config{
		BookingURL:        cfg.Calendar.URL,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		SelectorTimeout:   cfg.Browser.SelectorTimeout,
		SlotListTimeout:   cfg.Browser.SlotListTimeout,
	}, manager, logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	ag := agent.New(provider, logger,
		agent.WithCustomInstructions(buildAssistantInstructions(time.Now())),
	)
	if err := registerTools(ag, engine); err != nil {
		return err
	}

	return repl(ctx, ag, console)
}

// applyFlagOverrides lets CLI flags win over file and environment values.
func applyFlagOverrides(cfg *config.Config, flags *cliFlags) {
	if flags.CalendarURL != "" {
		cfg.Calendar.URL = flags.CalendarURL
	}
	if flags.Model != "" {
		cfg.LLM.Model = flags.Model
	}
	if flags.APIKey != "" {
		cfg.LLM.APIKey = flags.APIKey
	}
	if flags.BaseURL != "" {
		cfg.LLM.BaseURL = flags.BaseURL
	}
	if flags.Headed {
		cfg.Browser.Headless = false
	}
}

func newProvider(cfg *config.Config) (*openai.Provider, error) {
	opts := []openai.ProviderOption{openai.WithModel(cfg.LLM.Model)}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}
	return openai.NewProvider(cfg.LLM.APIKey, opts...)
}

func registerTools(ag *agent.Agent, engine *scheduler.Engine) error {
	bookingTools := []tools.Tool{
		booking.NewDiscoverSlotsTool(engine),
		booking.NewBookSlotTool(engine),
		booking.NewEndConversationTool(),
	}
	for _, tool := range bookingTools {
		if err := ag.RegisterTool(tool); err != nil {
			return fmt.Errorf("failed to register tool: %w", err)
		}
	}
	return nil
}

// repl runs the line-based conversation loop until EOF, "exit", or
// cancellation.
func repl(ctx context.Context, ag *agent.Agent, console *ui.Console) error {
	console.Banner(version)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Print(console.Prompt())
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			console.Info("Goodbye.")
			return nil
		}

		reply, err := ag.HandleMessage(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			console.Error(err)
			continue
		}
		console.Assistant(reply)
	}
}
