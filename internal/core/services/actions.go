package services

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService provides actions on search matches.
type ResultActionService struct {
	store driven.OperationStore

	copyText func(text string) error
	open     func(target string) error
}

// NewResultActionService creates a new result action service.
func NewResultActionService(store driven.OperationStore) *ResultActionService {
	return &ResultActionService{
		store:    store,
		copyText: copyToClipboard,
		open:     openURL,
	}
}

// CopyToClipboard copies text to the system clipboard.
func (s *ResultActionService) CopyToClipboard(_ context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("copy: %w: empty text", domain.ErrInvalidInput)
	}
	return s.copyText(text)
}

// OpenDocument opens the matched document in the default application.
func (s *ResultActionService) OpenDocument(ctx context.Context, match *domain.PublicMatch) error {
	if match == nil {
		return fmt.Errorf("open: %w: match is nil", domain.ErrInvalidInput)
	}

	doc, err := s.store.GetDocument(ctx, match.DocumentID)
	if err != nil {
		return fmt.Errorf("open %s: %w", match.DocumentID, err)
	}

	target, ok := openableURL(doc.StorageURL)
	if !ok {
		return fmt.Errorf("open %s: %w", match.DocumentID, domain.ErrUnsupportedStorage)
	}
	return s.open(target)
}

// openableURL converts a storage URL to something the OS can open.
// Inline data: URLs have no openable form.
func openableURL(storageURL string) (string, bool) {
	switch {
	case strings.HasPrefix(storageURL, "file://"):
		return strings.TrimPrefix(storageURL, "file://"), true
	case strings.HasPrefix(storageURL, "http://"), strings.HasPrefix(storageURL, "https://"):
		return storageURL, true
	default:
		return "", false
	}
}

// openURL opens a URL/path using the system default handler.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", url)
	case osLinux:
		cmd = exec.Command("xdg-open", url)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// copyToClipboard copies text to the system clipboard using OS-specific commands.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("pbcopy")
	case osLinux:
		// Try xclip first, fall back to xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("no clipboard utility found (install xclip or xsel)")
		}
	case osWindows:
		cmd = exec.Command("cmd", "/c", "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
