// Package config loads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/AmmannChristian/go-forgeauth/oauth2client"
	"github.com/AmmannChristian/go-forgeauth/secrets"
	"github.com/AmmannChristian/go-forgeauth/tokencache"
	"github.com/caarlos0/env/v11"
)

// Config is the process configuration.
type Config struct {
	ClientIDParameter     string        `env:"FORGE_CLIENT_ID_PARAM,required,notEmpty"`
	ClientSecretParameter string        `env:"FORGE_CLIENT_SECRET_PARAM,required,notEmpty"`
	Region                string        `env:"AWS_REGION,required,notEmpty"`
	Profile               string        `env:"AWS_PROFILE" envDefault:"default"`
	SSMEndpoint           string        `env:"AWS_SSM_ENDPOINT"`
	TokenURL              string        `env:"FORGE_TOKEN_URL" envDefault:"https://developer.api.autodesk.com/authentication/v2/token"`
	APIURL                string        `env:"FORGE_API_URL" envDefault:"https://developer.api.autodesk.com"`
	HTTPAddr              string        `env:"HTTP_ADDR" envDefault:":3000"`
	HTTPTimeout           time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	TLSCertFile           string        `env:"TLS_CERT_FILE"`
	TLSKeyFile            string        `env:"TLS_KEY_FILE"`
	ExpiryLeeway          time.Duration `env:"TOKEN_EXPIRY_LEEWAY" envDefault:"0s"`
	LogTokenEvents        bool          `env:"LOG_TOKEN_EVENTS" envDefault:"true"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return errors.New("config: HTTP_TIMEOUT must be positive")
	}
	if c.ExpiryLeeway < 0 {
		return errors.New("config: TOKEN_EXPIRY_LEEWAY must not be negative")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("config: TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if c.ClientIDParameter == c.ClientSecretParameter {
		return errors.New("config: FORGE_CLIENT_ID_PARAM and FORGE_CLIENT_SECRET_PARAM must differ")
	}
	return nil
}

// TLSEnabled reports whether the server should terminate TLS.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Credentials returns the parameter names used to mint tokens.
func (c Config) Credentials() tokencache.Credentials {
	return tokencache.Credentials{
		ClientIDParameter:     c.ClientIDParameter,
		ClientSecretParameter: c.ClientSecretParameter,
	}
}

// SecretStore returns the parameter store settings.
func (c Config) SecretStore() secrets.Config {
	return secrets.Config{
		Region:   c.Region,
		Profile:  c.Profile,
		Endpoint: c.SSMEndpoint,
	}
}

// IssuerURL returns the token endpoint, falling back to the default.
func (c Config) IssuerURL() string {
	if c.TokenURL == "" {
		return oauth2client.DefaultTokenURL
	}
	return c.TokenURL
}
