package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant about uploaded documents",
	Long: `Searches the documents, then asks the configured LLM to answer using only
the retrieved context. Without an LLM, or when it is too slow, the answer lists
the most relevant documents instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	addSearchFlags(askCmd)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	req, err := searchRequest(args[0])
	if err != nil {
		return err
	}

	answer, err := assistantService.Ask(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	p := newPalette(cmd)
	cmd.Println(answer.Text)
	if answer.Source == domain.AnswerSourceFallback {
		cmd.Println(p.Warn("(the assistant was unavailable; showing the closest documents)"))
	}
	if len(answer.Matches) > 0 {
		cmd.Println()
		printMatches(cmd, p, answer.Matches)
	}
	return nil
}
