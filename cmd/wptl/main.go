// Command wptl translates WordPress pages into draft copies using AI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ZaguanLabs/wptl"
	"github.com/ZaguanLabs/wptl/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app holds the global flags and what is built from them.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	quiet      bool
	jsonOut    bool

	cfg    *config.Config
	logger *zap.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   wptl.Name,
		Short: "Translate WordPress pages into draft copies using AI",
		Long: `wptl fetches a WordPress page, translates its visible text while keeping
every tag, attribute, script and page-builder wrapper intact, and creates
the translation as a new draft page.

Configuration is read from .wptl.yaml (or --config) and the environment:
  WPTL_WP_URL, WPTL_WP_USER, WPTL_WP_APP_PASSWORD
  GEMINI_API_KEY / GOOGLE_API_KEY, OPENAI_API_KEY
  WPTL_REDIS_URL`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose development logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress progress output")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Write results as JSON")

	root.AddCommand(
		a.newPagesCmd(),
		a.newTranslateCmd(),
		a.newFileCmd(),
		a.newExtractCmd(),
		a.newDiffCmd(),
		a.newCacheCmd(),
		a.newLanguagesCmd(),
		a.newVersionCmd(),
	)

	return root
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", wptl.Name, wptl.FullVersion())
			if c := wptl.Commit(); c != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", c)
			}
			if wptl.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", wptl.BuildDate)
			}
		},
	}
}

// load reads and validates the configuration and builds the logger.
// Commands call it lazily so that version and help work without a config.
func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(a.stderr, cfg.Log.Level, a.verbose)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// newLogger builds a console logger at debug level for --verbose and a JSON
// logger at the configured level otherwise.
func newLogger(w io.Writer, level string, verbose bool) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	var lvl zapcore.Level

	if verbose {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		lvl = zapcore.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		if level == "" {
			level = "info"
		}
		parsed, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
