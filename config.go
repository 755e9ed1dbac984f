package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"
)

// ErrNoToken is returned when stdio mode starts without a FASTIDIOUS_TOKEN.
var ErrNoToken = errors.New("FASTIDIOUS_TOKEN environment variable is required")

// Config holds process configuration sourced from the environment.
type Config struct {
	// Token is the bearer token used for every remote call in stdio mode.
	// Hosted mode ignores it: there each connection brings its own token.
	Token string `validate:"omitempty,startswith=fst_"`
	// BaseURL is the root of the Fastidious API.
	BaseURL string `validate:"required,url"`
	// Addr is the hosted mode listen address.
	Addr string `validate:"required"`
}

var validate = validator.New()

// LoadConfig reads configuration from the environment, loading a .env file
// first when one is present in the working directory.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:   osenv.Secret("FASTIDIOUS_TOKEN", ""),
		BaseURL: osenv.Value("FASTIDIOUS_URL", DefaultBaseURL),
		Addr:    ":" + osenv.Value("PORT", DefaultPort),
	}

	if err := validate.Struct(cfg); err != nil {
		var vErr validator.ValidationErrors
		if errors.As(err, &vErr) {
			return nil, fmt.Errorf("invalid configuration: %s", describe(vErr))
		}
		return nil, err
	}
	return cfg, nil
}

// RequireToken checks the invariants that only stdio mode imposes: a token
// must be present and carry the service prefix.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return ErrNoToken
	}
	if !strings.HasPrefix(c.Token, TokenPrefix) {
		return fmt.Errorf("FASTIDIOUS_TOKEN must start with %q", TokenPrefix)
	}
	return nil
}

// describe renders validation errors as a single readable line.
func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s failed on %q", e.Field(), e.Tag()))
	}
	return strings.Join(parts, "; ")
}
