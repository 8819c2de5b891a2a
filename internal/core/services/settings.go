package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keySearchMode        = "search.default_mode"
	keyMaxOperations     = "search.max_operations"
	keyMaxTextChars      = "search.max_text_chars"
	keyMaxFieldsChars    = "search.max_fields_chars"
	keyMaxSummaryChars   = "search.max_summary_chars"
	keyMaxContextMatches = "search.max_context_matches"
	keyMaxMatches        = "search.max_matches"
	keyScoreSlack        = "search.strict.score_slack"
	keyTokenSlack        = "search.strict.token_slack"
	keyMinScore          = "search.strict.min_score"
	keyMinTokens         = "search.strict.min_tokens"
	keyMaxBoxesPerPage   = "search.highlights.max_boxes_per_page"
	keyMaxPages          = "search.highlights.max_pages"

	keyAnswerTimeout = "assistant.answer_timeout"
	keyAnswerTokens  = "assistant.max_tokens"

	keyExtractWorkers = "extraction.workers"
	keyExtractRate    = "extraction.rate_per_second"
	keyExtractBurst   = "extraction.burst"
	keyExtractPrompt  = "extraction.max_prompt_chars"

	keyServerAddr = "server.addr"
	keyDataDir    = "data_dir"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Search: domain.SearchSettings{
			DefaultMode:       s.getSearchMode(defaults.Search.DefaultMode),
			MaxOperations:     s.getInt(keyMaxOperations, defaults.Search.MaxOperations),
			MaxTextChars:      s.getInt(keyMaxTextChars, defaults.Search.MaxTextChars),
			MaxFieldsChars:    s.getInt(keyMaxFieldsChars, defaults.Search.MaxFieldsChars),
			MaxSummaryChars:   s.getInt(keyMaxSummaryChars, defaults.Search.MaxSummaryChars),
			MaxContextMatches: s.getInt(keyMaxContextMatches, defaults.Search.MaxContextMatches),
			Selection: domain.SelectionPolicy{
				MaxMatches: s.getInt(keyMaxMatches, defaults.Search.Selection.MaxMatches),
				ScoreSlack: s.getInt(keyScoreSlack, defaults.Search.Selection.ScoreSlack),
				TokenSlack: s.getInt(keyTokenSlack, defaults.Search.Selection.TokenSlack),
				MinScore:   s.getInt(keyMinScore, defaults.Search.Selection.MinScore),
				MinTokens:  s.getInt(keyMinTokens, defaults.Search.Selection.MinTokens),
			},
			Highlights: domain.HighlightLimits{
				MaxBoxesPerPage: s.getInt(keyMaxBoxesPerPage, defaults.Search.Highlights.MaxBoxesPerPage),
				MaxPages:        s.getInt(keyMaxPages, defaults.Search.Highlights.MaxPages),
			},
		},
		Assistant: domain.AssistantSettings{
			AnswerTimeout: s.getDuration(keyAnswerTimeout, defaults.Assistant.AnswerTimeout),
			MaxTokens:     s.getInt(keyAnswerTokens, defaults.Assistant.MaxTokens),
		},
		Extraction: domain.ExtractionSettings{
			Workers:        s.getInt(keyExtractWorkers, defaults.Extraction.Workers),
			RatePerSecond:  s.getFloat(keyExtractRate, defaults.Extraction.RatePerSecond),
			Burst:          s.getInt(keyExtractBurst, defaults.Extraction.Burst),
			MaxPromptChars: s.getInt(keyExtractPrompt, defaults.Extraction.MaxPromptChars),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		DataDir: s.getString(keyDataDir, defaults.DataDir),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keySearchMode, settings.Search.DefaultMode.String()},
		{keyMaxOperations, settings.Search.MaxOperations},
		{keyMaxTextChars, settings.Search.MaxTextChars},
		{keyMaxFieldsChars, settings.Search.MaxFieldsChars},
		{keyMaxSummaryChars, settings.Search.MaxSummaryChars},
		{keyMaxContextMatches, settings.Search.MaxContextMatches},
		{keyMaxMatches, settings.Search.Selection.MaxMatches},
		{keyScoreSlack, settings.Search.Selection.ScoreSlack},
		{keyTokenSlack, settings.Search.Selection.TokenSlack},
		{keyMinScore, settings.Search.Selection.MinScore},
		{keyMinTokens, settings.Search.Selection.MinTokens},
		{keyMaxBoxesPerPage, settings.Search.Highlights.MaxBoxesPerPage},
		{keyMaxPages, settings.Search.Highlights.MaxPages},
		{keyAnswerTimeout, settings.Assistant.AnswerTimeout.String()},
		{keyAnswerTokens, settings.Assistant.MaxTokens},
		{keyExtractWorkers, settings.Extraction.Workers},
		{keyExtractRate, settings.Extraction.RatePerSecond},
		{keyExtractBurst, settings.Extraction.Burst},
		{keyExtractPrompt, settings.Extraction.MaxPromptChars},
		{keyServerAddr, settings.Server.Addr},
		{keyDataDir, settings.DataDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetDefaultSearchMode updates the mode used when a request names none.
func (s *SettingsService) SetDefaultSearchMode(mode domain.SearchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: search mode %q", domain.ErrInvalidInput, mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Search.DefaultMode = mode
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	val := s.configStore.GetString(keySearchMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.SearchMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
