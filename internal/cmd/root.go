package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/drigo-app/drigo-single/internal/project"
)

var (
	// Global flags
	rootDir      string
	debug        bool
	buildTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "drigo-single",
	Short: "Package the app and its browser assets into one HTML file",
	Long: `drigo-single inlines the DuckDB-WASM engine and the Fireproof module into
the application's index.html, producing a single self-contained file.

Run it in the project root with no arguments to build dist/index.html:
  drigo-single

Other commands:
  drigo-single resolve    Show which files will be embedded
  drigo-single verify     Check dist/index.html against the current sources
  drigo-single init       Write singlefile.yml with the default configuration`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	RunE: runBuild,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "C", "", "Project directory (default: nearest directory with singlefile.yml, else the current directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&buildTimeout, "timeout", 2*time.Minute, "Abort if the build takes longer than this (0 disables)")
}

// Execute runs the CLI. Interrupts cancel any running build.
func Execute(version string) error {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadProject finds the project for this invocation: --dir if given,
// otherwise the nearest ancestor holding singlefile.yml, otherwise the
// current directory with the built-in configuration.
func loadProject() (*project.Project, error) {
	dir := rootDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		dir = cwd
		if found, err := project.FindProjectDir(cwd); err == nil {
			dir = found
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	p, err := project.LoadOrDefault(abs)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	log.Debug().Str("root", p.Path).Msg("Loaded project")
	return p, nil
}

// withTimeout bounds ctx by --timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if buildTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, buildTimeout)
}
