package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [question]",
	Short: "Launch the interactive assistant",
	Long: `Launch the interactive terminal assistant.

Ask questions about the uploaded documents, browse the matches behind each
answer, and inspect or reprocess operations.

Controls:
  Enter    - Ask / Select
  Tab      - Switch between input and matches
  Ctrl+B   - Toggle strict and broad search
  Ctrl+O   - Browse operations
  F1       - Help
  Ctrl+C   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	addSearchFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the configured services.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Assistant: assistantService,
		Operation: operationService,
		Actions:   actionService,
		Settings:  settingsService,
	}
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if len(args) == 1 {
		req, err := searchRequest(args[0])
		if err != nil {
			return err
		}
		app.WithInitialRequest(req)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
