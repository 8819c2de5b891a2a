// Package extract turns uploaded files into searchable text and fields.
//
// PDF text comes from the text layer reader. When an LLM is configured it
// is asked for a JSON object with the document type, relevant fields and a
// short summary; the reply is parsed tolerantly.
package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.DocumentExtractor = (*Extractor)(nil)

// DefaultExtractionPrompt is used when no PromptStore is configured.
// Placeholders: file name, MIME type, document text.
const DefaultExtractionPrompt = `Analyse this banking, identity or invoice document and reply with JSON only:
{
  "tipo_documento": "...",
  "campos_relevantes": {"key": "value"},
  "resumen": "..."
}
Use null for anything you cannot read.

File: %s
Type: %s

Text found in the document:
%s`

// noTextPlaceholder replaces the text of files without a text layer.
const noTextPlaceholder = "No text could be extracted from the file."

const (
	defaultMaxPromptChars = 12000
	extractionMaxTokens   = 1200
)

// Extractor implements driven.DocumentExtractor.
type Extractor struct {
	reader         driven.TextLayerReader
	llm            driven.LLMService
	promptStore    driven.PromptStore
	maxPromptChars int
}

// NewExtractor creates an extractor. llm may be nil: documents then keep
// their PDF text and get empty fields.
func NewExtractor(reader driven.TextLayerReader, llm driven.LLMService, maxPromptChars int) *Extractor {
	if maxPromptChars <= 0 {
		maxPromptChars = defaultMaxPromptChars
	}
	return &Extractor{
		reader:         reader,
		llm:            llm,
		maxPromptChars: maxPromptChars,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (e *Extractor) SetPromptStore(store driven.PromptStore) {
	e.promptStore = store
}

// Extract reads the document and asks the LLM for structured fields.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document, data []byte) (*domain.ExtractionResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}

	text := e.pdfText(doc, data)

	if e.llm == nil {
		return &domain.ExtractionResult{Text: text, Fields: map[string]any{}}, nil
	}

	reply, err := e.llm.Generate(ctx, e.prompt(doc, text), driven.GenerateOptions{
		MaxTokens: extractionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting fields of %s: %w", doc.FileName, err)
	}

	fields := JSONBlock(reply)
	if text == "" {
		text = replyText(fields, reply)
	}

	logger.Debug("Extracted %s: %d text chars, %d fields", doc.FileName, utf8.RuneCountInString(text), len(fields))
	return &domain.ExtractionResult{Text: text, Fields: fields}, nil
}

func (e *Extractor) pdfText(doc *domain.Document, data []byte) string {
	if !doc.IsPDF() || e.reader == nil {
		return ""
	}
	text, err := e.reader.PlainText(data)
	if err != nil {
		logger.Warn("Could not read text layer of %s: %v", doc.FileName, err)
		return ""
	}
	return text
}

func (e *Extractor) prompt(doc *domain.Document, text string) string {
	body := truncateRunes(text, e.maxPromptChars)
	if strings.TrimSpace(body) == "" {
		body = noTextPlaceholder
	}
	prompt, ok := driven.FormatPrompt(e.loadPrompt(driven.PromptExtraction, DefaultExtractionPrompt),
		DefaultExtractionPrompt, doc.FileName, doc.MIMEType, body)
	if !ok {
		logger.Warn("Extraction prompt needs exactly three %%s placeholders, using the built-in prompt")
	}
	return prompt
}

// loadPrompt loads a prompt from the store, falling back to the default.
func (e *Extractor) loadPrompt(name, fallback string) string {
	if e.promptStore == nil {
		return fallback
	}
	prompt, err := e.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// replyText is the searchable text of files without a text layer: the
// model's summary when it gave one, else its whole reply.
func replyText(fields map[string]any, reply string) string {
	if summary, ok := fields["resumen"].(string); ok && strings.TrimSpace(summary) != "" {
		return strings.TrimSpace(summary)
	}
	return strings.TrimSpace(reply)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
