package llm

import "fmt"

// Config selects and configures a chat model provider.
type Config struct {
	Provider       string
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	AnthropicKey   string
	AnthropicModel string
}

// New returns the configured provider's model.
func New(cfg Config) (ChatModel, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return NewAnthropicClient(cfg.AnthropicKey, cfg.AnthropicModel, ""), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
