package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
	"github.com/custodia-labs/megafile/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// Default prompts used if PromptStore is not available or fails.
const (
	defaultAnswerSystemPrompt = `You are an expert assistant for banking operations documents.
Answer precisely, using ONLY the provided context.
If information is missing, say so explicitly.
End with a "References" section listing the operation and document IDs you used.`

	defaultAnswerPrompt = "Question: %s\n\nContext:\n%s"
)

const fallbackReferences = 4

// AssistantService answers questions from the ranked documents.
// The answer generator is optional; without it every answer is the
// deterministic fallback.
type AssistantService struct {
	search      driving.SearchService
	llm         driven.LLMService
	promptStore driven.PromptStore
	settings    domain.AssistantSettings
}

// NewAssistantService creates a new assistant service.
// The llm parameter is optional (can be nil).
func NewAssistantService(
	search driving.SearchService,
	llm driven.LLMService,
	settings domain.AssistantSettings,
) *AssistantService {
	if settings.AnswerTimeout <= 0 {
		settings.AnswerTimeout = domain.DefaultSettings().Assistant.AnswerTimeout
	}
	return &AssistantService{
		search:   search,
		llm:      llm,
		settings: settings,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AssistantService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ask searches the corpus and answers from the retrieved context.
func (s *AssistantService) Ask(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error) {
	if err := ValidateQuestion(req.Question); err != nil {
		return nil, err
	}

	result, err := s.search.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	if !result.HasMatches() {
		logger.Debug("No matches, skipping answer generation")
		return &domain.Answer{
			Text:    domain.NoMatchesAnswer,
			Source:  domain.AnswerSourceNoMatch,
			Matches: []domain.PublicMatch{},
		}, nil
	}

	matches := domain.PublicMatches(result.Matches)

	if s.llm == nil {
		logger.Debug("No LLM configured, using fallback answer")
		return &domain.Answer{Text: FallbackAnswer(result.Matches), Source: domain.AnswerSourceFallback, Matches: matches}, nil
	}

	logger.Section("Answer Generation")
	start := time.Now()
	text, err := s.generate(ctx, req.Question, result.Context)
	switch {
	case err == nil:
		logger.Debug("Answer generated in %s by %s", time.Since(start), s.llm.ModelName())
		return &domain.Answer{Text: text, Source: domain.AnswerSourceLLM, Matches: matches}, nil
	case ctx.Err() != nil:
		return nil, fmt.Errorf("ask: %w", ctx.Err())
	default:
		logger.Warn("Answer generation failed, using fallback: %v", err)
		return &domain.Answer{Text: FallbackAnswer(result.Matches), Source: domain.AnswerSourceFallback, Matches: matches}, nil
	}
}

type generation struct {
	text string
	err  error
}

// generate races the answer generator against the answer timeout.
// On timeout the generator keeps running and its result is discarded.
func (s *AssistantService) generate(ctx context.Context, question, promptContext string) (string, error) {
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: s.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt)},
		{Role: driven.RoleUser, Content: s.answerPrompt(question, promptContext)},
	}
	opts := driven.ChatOptions{MaxTokens: s.settings.MaxTokens, Temperature: 0.2}

	done := make(chan generation, 1)
	genCtx := context.WithoutCancel(ctx)
	go func() {
		text, err := s.llm.Chat(genCtx, messages, opts)
		done <- generation{text: text, err: err}
	}()

	timer := time.NewTimer(s.settings.AnswerTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if strings.TrimSpace(r.text) == "" {
			return "", errors.New("empty answer")
		}
		return strings.TrimSpace(r.text), nil
	case <-timer.C:
		return "", domain.ErrAnswerTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// answerPrompt fills the answer template, reverting to the built-in one when
// a customised template does not take exactly a question and a context.
func (s *AssistantService) answerPrompt(question, promptContext string) string {
	prompt, ok := driven.FormatPrompt(s.loadPrompt(driven.PromptAnswer, defaultAnswerPrompt), defaultAnswerPrompt, question, promptContext)
	if !ok {
		logger.Warn("Answer prompt needs exactly two %%s placeholders, using the built-in prompt")
	}
	return prompt
}

// loadPrompt loads a prompt from the store, falling back to the default.
func (s *AssistantService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// FallbackAnswer lists the identifiers of the top matches.
func FallbackAnswer(matches []domain.SearchMatch) string {
	var b strings.Builder
	b.WriteString("The assistant could not produce an answer right now. Most relevant documents:\n")
	for i := 0; i < len(matches) && i < fallbackReferences; i++ {
		m := &matches[i]
		fmt.Fprintf(&b, "- Operation %s, document %s (%s): %s\n", m.OperationID, m.DocumentID, m.FileName, m.MatchReason)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ValidateQuestion rejects questions too short to search.
func ValidateQuestion(question string) error {
	if utf8.RuneCountInString(strings.TrimSpace(question)) < domain.MinQuestionLength {
		return fmt.Errorf("%w: question must have at least %d characters", domain.ErrInvalidInput, domain.MinQuestionLength)
	}
	return nil
}
