package config

import (
	"os"
	"time"

	"collegenet-backend/internal/scrapers/r25"
	"collegenet-backend/lib/configutil"
	"collegenet-backend/lib/timezone"
)

type ApiConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// TimeoutSeconds of a single page request.
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type ScrapeConfig struct {
	PageSize       int      `json:"page_size"`
	MaxPages       int      `json:"max_pages"`
	// CategoryFilter defaults to r25.DefaultCategoryFilter, [] keeps every category.
	CategoryFilter []string `json:"category_filter"`
	Timezone       string   `json:"timezone"`
	Lookback       string   `json:"lookback"`
	Lookahead      string   `json:"lookahead"`
}

type ExportConfig struct {
	Database string `json:"database"`
}

type MailConfig struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

// Config is the contents of config.json5.
type Config struct {
	Api    ApiConfig    `json:"api"`
	Scrape ScrapeConfig `json:"scrape"`
	Export ExportConfig `json:"export"`
	Mail   MailConfig   `json:"mail"`
}

func Defaults() Config {
	return Config{
		Api: ApiConfig{
			TimeoutSeconds: int(r25.DefaultTimeout / time.Second),
		},
		Scrape: ScrapeConfig{
			PageSize:       r25.DefaultPageSize,
			MaxPages:       r25.DefaultMaxPages,
			CategoryFilter: append([]string{}, r25.DefaultCategoryFilter...),
			Lookback:       "+0",
			Lookahead:      "+7",
		},
		Export: ExportConfig{
			Database: "reservations.db",
		},
		Mail: MailConfig{
			Port: 587,
		},
	}
}

const (
	envBaseUrl  = "API_BASE_URL"
	envUsername = "API_USERNAME"
	envPassword = "API_PASSWORD"
)

// Load reads the config file (and its .local override) on top of the defaults, then
// applies the API_BASE_URL, API_USERNAME and API_PASSWORD environment variables.
// A missing file is not an error so credentials can come from the environment alone.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, Defaults())
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if value, ok := lookup(envBaseUrl); ok && value != "" {
		c.Api.BaseUrl = value
	}
	if value, ok := lookup(envUsername); ok && value != "" {
		c.Api.Username = value
	}
	if value, ok := lookup(envPassword); ok && value != "" {
		c.Api.Password = value
	}
}

// Validate checks the config without making any request, failures are *r25.ConfigurationError.
func (c Config) Validate() error {
	opts, err := c.Options()
	if err != nil {
		return err
	}
	return opts.Validate()
}

// Options converts the config into scraper options.
func (c Config) Options() (r25.Options, error) {
	location, err := timezone.Load(c.Scrape.Timezone)
	if err != nil {
		return r25.Options{}, &r25.ConfigurationError{Field: "timezone", Reason: err.Error()}
	}
	if c.Api.TimeoutSeconds < 0 {
		return r25.Options{}, &r25.ConfigurationError{Field: "timeout_seconds", Reason: "must not be negative"}
	}
	return r25.Options{
		BaseUrl:           c.Api.BaseUrl,
		Username:          c.Api.Username,
		Password:          c.Api.Password,
		PageSize:          c.Scrape.PageSize,
		MaxPages:          c.Scrape.MaxPages,
		CategoryFilter:    c.Scrape.CategoryFilter,
		Location:          location,
		Timeout:           time.Duration(c.Api.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.Api.RequestsPerSecond,
	}, nil
}

// MailEnabled is true when enough of the mail section is filled in to send a report.
func (c Config) MailEnabled() bool {
	return c.Mail.Host != "" && c.Mail.From != ""
}
