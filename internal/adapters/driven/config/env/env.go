// Package env overlays environment variables on top of the stored settings.
//
// Deployments configure the provider and its key through the environment;
// values set here win over ~/.megafile/config.toml for the current process
// and are never written back.
package env

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// Overrides holds the recognised environment variables.
type Overrides struct {
	Provider     string `env:"AI_PROVIDER"`
	OpenAIKey    string `env:"OPENAI_API_KEY"`
	AnthropicKey string `env:"ANTHROPIC_API_KEY"`
	GeminiKey    string `env:"GEMINI_API_KEY"`
	Model        string `env:"MEGAFILE_LLM_MODEL"`
	BaseURL      string `env:"MEGAFILE_LLM_BASE_URL"`

	Addr          string        `env:"MEGAFILE_ADDR"`
	DataDir       string        `env:"MEGAFILE_DATA_DIR"`
	AnswerTimeout time.Duration `env:"MEGAFILE_ANSWER_TIMEOUT"`
}

// Load reads the overrides from the process environment.
func Load() (Overrides, error) {
	return parse(env.Options{})
}

// LoadFrom reads the overrides from the given variables instead of the
// process environment.
func LoadFrom(environ map[string]string) (Overrides, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Overrides, error) {
	var o Overrides
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return Overrides{}, fmt.Errorf("reading environment: %w", err)
	}

	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Provider != "" && !domain.AIProvider(o.Provider).IsValid() {
		return Overrides{}, fmt.Errorf("%w: AI_PROVIDER=%q", domain.ErrUnsupportedType, o.Provider)
	}
	if o.AnswerTimeout < 0 {
		return Overrides{}, fmt.Errorf("%w: MEGAFILE_ANSWER_TIMEOUT must be positive", domain.ErrInvalidInput)
	}
	return o, nil
}

// Apply writes the overrides into settings.
//
// The provider is AI_PROVIDER when set. Otherwise a stored provider is
// kept, and with none stored the first provider with a key wins (OpenAI,
// then Gemini, then Anthropic). The key is taken from the variable that
// matches the resolved provider.
func (o Overrides) Apply(settings *domain.Settings) {
	provider := o.resolveProvider(settings.LLM.Provider)
	if provider != settings.LLM.Provider {
		settings.LLM = domain.LLMSettings{Provider: provider}
	}
	if key := o.keyFor(provider); key != "" {
		settings.LLM.APIKey = key
	}
	if o.Model != "" {
		settings.LLM.Model = o.Model
	}
	if o.BaseURL != "" {
		settings.LLM.BaseURL = o.BaseURL
	}

	if o.Addr != "" {
		settings.Server.Addr = o.Addr
	}
	if o.DataDir != "" {
		settings.DataDir = o.DataDir
	}
	if o.AnswerTimeout > 0 {
		settings.Assistant.AnswerTimeout = o.AnswerTimeout
	}
}

func (o Overrides) resolveProvider(stored domain.AIProvider) domain.AIProvider {
	if o.Provider != "" {
		return domain.AIProvider(o.Provider)
	}
	if stored.IsValid() {
		return stored
	}
	switch {
	case o.OpenAIKey != "":
		return domain.AIProviderOpenAI
	case o.GeminiKey != "":
		return domain.AIProviderGemini
	case o.AnthropicKey != "":
		return domain.AIProviderAnthropic
	default:
		return stored
	}
}

func (o Overrides) keyFor(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return o.OpenAIKey
	case domain.AIProviderGemini:
		return o.GeminiKey
	case domain.AIProviderAnthropic:
		return o.AnthropicKey
	default:
		return ""
	}
}
