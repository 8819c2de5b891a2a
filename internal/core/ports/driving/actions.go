package driving

import (
	"context"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// ResultActionService provides actions on search matches for external actors.
// This is used by the TUI and CLI adapters.
type ResultActionService interface {
	// CopyToClipboard copies text to the system clipboard.
	CopyToClipboard(ctx context.Context, text string) error

	// OpenDocument opens the matched document in the default application.
	OpenDocument(ctx context.Context, match *domain.PublicMatch) error
}
