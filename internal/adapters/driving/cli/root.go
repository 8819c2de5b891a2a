// Package cli provides the megafile command-line interface built on cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/megafile/internal/core/ports/driving"
	"github.com/custodia-labs/megafile/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Options are the global flags handed to the bootstrap function.
type Options struct {
	Verbose   bool
	Ephemeral bool
	DataDir   string
}

// Services holds the driving ports the commands call.
type Services struct {
	Search    driving.SearchService
	Assistant driving.AssistantService
	Operation driving.OperationService
	Evidence  driving.EvidenceService
	Settings  driving.SettingsService
	Actions   driving.ResultActionService
}

// Bootstrap builds the services once flags are parsed. The returned
// cleanup runs after the command finishes.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	opts      Options
	bootstrap Bootstrap
	cleanupFn func()

	searchService    driving.SearchService
	assistantService driving.AssistantService
	operationService driving.OperationService
	evidenceService  driving.EvidenceService
	settingsService  driving.SettingsService
	actionService    driving.ResultActionService
)

// skipBootstrap marks commands that never touch the services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "megafile",
	Short: "Search and question the documents of your client operations",
	Long: `megafile stores the documents uploaded for each client operation, extracts
their text and fields, and answers questions over them with cited matches.

Run 'megafile serve' for the HTTP API, 'megafile tui' for the interactive
assistant, or 'megafile search' for a one-off query.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	// cmd.Print* defaults to stderr; results belong on stdout.
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.Ephemeral, "ephemeral", false, "keep everything in memory for this run")
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default ~/.megafile/data)")
}

// SetBootstrap registers the function that wires the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs the driving ports directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	searchService = s.Search
	assistantService = s.Assistant
	operationService = s.Operation
	evidenceService = s.Evidence
	settingsService = s.Settings
	actionService = s.Actions
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases whatever the bootstrap opened.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanupFn != nil {
			cleanupFn()
			cleanupFn = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] != "" {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, cleanup, err := bootstrap(ctx, opts)
	if err != nil {
		return fmt.Errorf("starting megafile: %w", err)
	}
	SetServices(s)
	cleanupFn = cleanup
	return nil
}
