package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/services"
)

var (
	searchOperation string
	searchMode      string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Search uploaded documents",
	Long: `Ranks every extracted document against the question and prints the best
matches with their evidence snippet.

Strict mode (default) keeps the tight cluster around the best match; broad mode
keeps every document that matched at least one term.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output matches as JSON")
	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&searchOperation, "operation", "o", "", "restrict to one operation ID")
	cmd.Flags().StringVarP(&searchMode, "mode", "m", "", "relevance mode: strict or broad (default from settings)")
}

// searchRequest builds a validated request from the argument and flags.
func searchRequest(question string) (domain.SearchRequest, error) {
	if err := services.ValidateQuestion(question); err != nil {
		return domain.SearchRequest{}, err
	}
	req := domain.SearchRequest{Question: question, OperationID: searchOperation}
	if searchMode != "" {
		mode, err := domain.ParseSearchMode(searchMode)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		req.Mode = mode
	}
	return req, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	req, err := searchRequest(args[0])
	if err != nil {
		return err
	}

	result, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	matches := domain.PublicMatches(result.Matches)
	if searchJSON {
		return printJSON(cmd, matches)
	}

	printMatches(cmd, newPalette(cmd), matches)
	return nil
}

func printMatches(cmd *cobra.Command, p palette, matches []domain.PublicMatch) {
	if len(matches) == 0 {
		cmd.Println("No relevant matches found.")
		return
	}

	cmd.Println(p.Title("Matches:"))
	cmd.Println()
	for i := range matches {
		m := &matches[i]
		cmd.Printf("  [%d] %s %s\n", i+1, m.FileName, p.Dim("("+string(m.MatchReason)+")"))
		cmd.Printf("      Operation: %s  Document: %s\n", m.OperationID, m.DocumentID)
		if m.Snippet != "" {
			cmd.Printf("      %s\n", p.Accent(m.Snippet))
		}
		cmd.Println()
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
