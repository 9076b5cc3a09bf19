package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kestrelhq/articulate/internal/common"
	"github.com/kestrelhq/articulate/internal/llm"
)

// LoadVerifierConfig loads LLM verifier configuration. Precedence:
// 1. Viper configuration (from config file or ARTICULATE_ env vars)
// 2. Provider-specific environment variables (ANTHROPIC_API_KEY, OPENAI_API_KEY)
// 3. Default values
func LoadVerifierConfig() (llm.Config, error) {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}

	if cfg.Provider == "" {
		cfg.Provider = "anthropic"
	}

	if v := viper.GetDuration("llm.retry_delay"); v > 0 {
		cfg.RetryDelay = v
	}
	if v := viper.GetDuration("llm.cache_ttl"); v > 0 {
		cfg.CacheTTL = v
	} else {
		cfg.CacheTTL = 15 * time.Minute
	}

	if cfg.APIKey == "" {
		switch strings.ToLower(cfg.Provider) {
		case "anthropic":
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("%w: no API key for LLM provider %q", common.ErrMissingConfig, cfg.Provider)
	}

	return cfg, nil
}
