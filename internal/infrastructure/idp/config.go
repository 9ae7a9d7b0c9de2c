package idp

import (
	"errors"
	"net/url"
	"strings"
)

// Config holds configuration for the hosted identity provider API
type Config struct {
	// BaseURL is the provider API origin, e.g. https://id.example.com
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageSize is the number of identities requested per directory page
	PageSize int
}

// Errors for identity provider configuration
var (
	ErrConfigMissingBaseURL = errors.New("idp: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("idp: base URL must be an absolute http(s) URL")
)

// NewConfig creates a new provider configuration with defaults
func NewConfig(baseURL string) *Config {
	return &Config{
		BaseURL:        baseURL,
		TimeoutSeconds: 10,
		PageSize:       200,
	}
}

// Validate validates the provider configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if c.PageSize <= 0 {
		c.PageSize = 200
	}
	return nil
}
