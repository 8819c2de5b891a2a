package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini through its OpenAI-compatible endpoint.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name. Empty means the provider default.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// SearchSettings bounds the candidate universe and tunes the selector.
type SearchSettings struct {
	// DefaultMode applies when a request names no mode.
	DefaultMode SearchMode

	MaxOperations     int
	MaxTextChars      int
	MaxFieldsChars    int
	MaxSummaryChars   int
	MaxContextMatches int

	Selection  SelectionPolicy
	Highlights HighlightLimits
}

// CandidateQuery returns the load bounds for an optional operation filter.
func (s SearchSettings) CandidateQuery(operationID string) CandidateQuery {
	return CandidateQuery{
		OperationID:     operationID,
		MaxOperations:   s.MaxOperations,
		MaxTextChars:    s.MaxTextChars,
		MaxFieldsChars:  s.MaxFieldsChars,
		MaxSummaryChars: s.MaxSummaryChars,
	}.WithDefaults()
}

// AssistantSettings tunes answer generation.
type AssistantSettings struct {
	// AnswerTimeout bounds the wait for the answer generator.
	AnswerTimeout time.Duration

	// MaxTokens caps the generated answer length.
	MaxTokens int
}

// ExtractionSettings tunes the background extraction queue.
type ExtractionSettings struct {
	// Workers is the number of concurrent extraction jobs.
	Workers int

	// RatePerSecond limits LLM extraction calls. Zero disables limiting.
	RatePerSecond float64

	// Burst is the limiter burst size.
	Burst int

	// MaxPromptChars bounds the document text sent to the LLM.
	MaxPromptChars int
}

// ServerSettings configures the HTTP host.
type ServerSettings struct {
	Addr string
}

// Settings is the explicit configuration object passed to services.
type Settings struct {
	LLM        LLMSettings
	Search     SearchSettings
	Assistant  AssistantSettings
	Extraction ExtractionSettings
	Server     ServerSettings

	// DataDir holds the database and stored uploads.
	DataDir string
}

// DefaultSettings returns settings with sensible defaults.
// The LLM is left unconfigured; search works without it.
func DefaultSettings() Settings {
	return Settings{
		Search: SearchSettings{
			DefaultMode:       SearchModeStrict,
			MaxOperations:     DefaultMaxOperations,
			MaxTextChars:      DefaultMaxTextChars,
			MaxFieldsChars:    DefaultMaxFieldsChars,
			MaxSummaryChars:   DefaultMaxSummaryChars,
			MaxContextMatches: DefaultMaxContextMatches,
			Selection:         DefaultSelectionPolicy(),
			Highlights:        DefaultHighlightLimits(),
		},
		Assistant: AssistantSettings{
			AnswerTimeout: 10 * time.Second,
			MaxTokens:     700,
		},
		Extraction: ExtractionSettings{
			Workers:        3,
			RatePerSecond:  2,
			Burst:          1,
			MaxPromptChars: 12000,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}
