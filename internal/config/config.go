// Package config loads the namegate service settings.
//
// Settings come from environment variables first, with an optional
// namegate.yaml file layered underneath. Every setting has a usable
// default so the service starts with zero configuration; in particular,
// a missing OPENAI_API_KEY is not an error — the LLM client degrades to
// deterministic fallback suggestions instead.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shivansh-labs/namegate/internal/model"
)

// Settings is the central configuration for the service, populated by
// viper from environment variables and an optional config file.
type Settings struct {
	// ListenAddr is the HTTP listen address of the API server.
	ListenAddr string `mapstructure:"listen_addr"`

	// RedisURL is the connection URL of the result cache.
	RedisURL string `mapstructure:"redis_url"`

	// OpenAIAPIKey authorizes calls to the suggestion model API.
	// Empty disables LLM calls and routes to fallback suggestions.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// OpenAIBaseURL is the API endpoint, overridable for compatible
	// self-hosted backends and for tests.
	OpenAIBaseURL string `mapstructure:"openai_base_url"`

	// ModelFast is used for routine suggestion requests.
	ModelFast string `mapstructure:"openai_model_fast"`

	// ModelSmart is used on the final retry attempt.
	ModelSmart string `mapstructure:"openai_model_smart"`

	// CacheTTL bounds how long a cached check result stays valid.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// WebDriverURL is the HTTP endpoint of the browser driver
	// (geckodriver). Empty means a local driver is started on demand.
	WebDriverURL string `mapstructure:"webdriver_url"`

	// PortalProfile is the path to a JSONC locator profile overriding
	// the embedded default.
	PortalProfile string `mapstructure:"portal_profile"`

	// HistoryDB is the sqlite file recording completed checks.
	// Empty disables history.
	HistoryDB string `mapstructure:"history_db"`

	// StaticDir serves the frontend when present.
	StaticDir string `mapstructure:"static_dir"`

	// ScreenshotDir receives error screenshots from failed automation steps.
	ScreenshotDir string `mapstructure:"screenshot_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format"`
}

// Load reads settings from the environment and, when present, from a
// namegate.yaml file in the working directory or at the given path.
// Pass an empty path to rely on the default search locations.
func Load(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_model_fast", "gpt-4o-mini")
	v.SetDefault("openai_model_smart", "gpt-4o")
	v.SetDefault("cache_ttl", 7*24*time.Hour)
	v.SetDefault("webdriver_url", "")
	v.SetDefault("portal_profile", "")
	v.SetDefault("history_db", "namegate.db")
	v.SetDefault("static_dir", "static")
	v.SetDefault("screenshot_dir", "error-screenshots")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Environment variables map to keys by uppercasing and replacing
	// dots: NAMEGATE_LISTEN_ADDR, NAMEGATE_REDIS_URL, and so on.
	// OPENAI_API_KEY is additionally bound without the prefix because
	// that is the conventional variable name forwarded by the
	// bootstrap orchestrator.
	v.SetEnvPrefix("NAMEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai_api_key", "NAMEGATE_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("redis_url", "NAMEGATE_REDIS_URL", "REDIS_URL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to read config file %q", path), err)
		}
	} else {
		v.SetConfigName("namegate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		// The default config file is optional; only a malformed file
		// is an error.
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, model.WrapCLIError(model.ExitConfigError,
					"failed to read namegate.yaml", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			"unmarshalling config to struct", err)
	}

	if s.CacheTTL <= 0 {
		s.CacheTTL = 7 * 24 * time.Hour
	}

	return &s, nil
}
