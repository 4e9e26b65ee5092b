package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/viper"
)

// Settings is the runtime configuration of the API server and its workers.
// Every key can be overridden by the upper-cased environment variable of the
// same name, e.g. API_PORT or ANTHROPIC_API_KEY.
type Settings struct {
	Environment string `mapstructure:"environment"`
	APIHost     string `mapstructure:"api_host"`
	APIPort     int    `mapstructure:"api_port"`
	APIURL      string `mapstructure:"api_url"`

	DatabaseURL string `mapstructure:"database_url"`

	JWTSecret     string `mapstructure:"jwt_secret"`
	JWTExpMinutes int    `mapstructure:"jwt_exp_minutes"`

	MetaAdsToken   string `mapstructure:"meta_ads_token"`
	MetaBusinessID string `mapstructure:"meta_business_id"`
	MetaAPIBaseURL string `mapstructure:"meta_api_base_url"`

	CompIntelAPIKey  string `mapstructure:"comp_intel_api_key"`
	CompIntelBaseURL string `mapstructure:"comp_intel_base_url"`

	LLMProvider     string `mapstructure:"llm_provider"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	GoogleAPIKey    string `mapstructure:"google_api_key"`
	GeminiModel     string `mapstructure:"gemini_model"`
	ClaudeModel     string `mapstructure:"claude_model"`

	AlertWebhookURL string `mapstructure:"alert_webhook_url"`
	AlertEmails     string `mapstructure:"alert_emails"`

	ReportBucketPath string `mapstructure:"report_bucket_path"`

	DeepgramAPIKey string `mapstructure:"deepgram_api_key"`
	RapidAPIKey    string `mapstructure:"rapidapi_key"`
	RapidAPIHost   string `mapstructure:"rapidapi_host"`

	RefreshAccountID string `mapstructure:"refresh_account_id"`
	RefreshDomain    string `mapstructure:"refresh_domain"`
	RefreshWorkers   int    `mapstructure:"refresh_workers"`
}

var defaults = map[string]any{
	"environment":         "local",
	"api_host":            "0.0.0.0",
	"api_port":            8000,
	"api_url":             "http://localhost:8000",
	"database_url":        "growth-agent.db",
	"jwt_secret":          "change-me",
	"jwt_exp_minutes":     60,
	"meta_ads_token":      "",
	"meta_business_id":    "",
	"meta_api_base_url":   "https://graph.facebook.com/v18.0",
	"comp_intel_api_key":  "",
	"comp_intel_base_url": "https://api.trafficintel.com/v1",
	"llm_provider":        "claude",
	"anthropic_api_key":   "",
	"google_api_key":      "",
	"gemini_model":        "gemini-1.5-pro",
	"claude_model":        "claude-3-5-sonnet-20240620",
	"alert_webhook_url":   "",
	"alert_emails":        "",
	"report_bucket_path":  "./reports",
	"deepgram_api_key":    "",
	"rapidapi_key":        "",
	"rapidapi_host":       "similar-web-data.p.rapidapi.com",
	"refresh_account_id":  "123456789",
	"refresh_domain":      "example.com",
	"refresh_workers":     2,
}

// LoadSettings reads defaults, then the optional config file at path, then
// the environment.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &cfg, nil
}

func (s *Settings) Addr() string {
	return net.JoinHostPort(s.APIHost, strconv.Itoa(s.APIPort))
}

func (s *Settings) IsLocal() bool {
	return s.Environment == "local"
}
