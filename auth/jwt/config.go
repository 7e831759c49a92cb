package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names an HMAC algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// Config lives under the "jwt" key; JWT_SECRET sets Secret.
type Config struct {
	Secret string        `yaml:"secret" mapstructure:"secret"`
	Method SigningMethod `yaml:"method" mapstructure:"method"`
	Issuer string        `yaml:"issuer" mapstructure:"issuer"`
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("jwt: secret is required")
	}
	if c.signingMethod() == nil {
		return fmt.Errorf("jwt: unsupported signing method %q", c.Method)
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	}
	return nil
}
