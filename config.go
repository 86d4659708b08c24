package tourbase

import (
	"os"
	"strconv"
)

// Environment presentation modes for the error boundary.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// SimpleConfig is a plain Config implementation.
type SimpleConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	AuthScheme      string
	ContextKey      string
	Environment     string
}

var _ Config = (*SimpleConfig)(nil)

func (c *SimpleConfig) GetSigningKey() string  { return c.SigningKey }
func (c *SimpleConfig) GetIssuer() string      { return c.Issuer }
func (c *SimpleConfig) GetAudience() []string  { return c.Audience }
func (c *SimpleConfig) GetEnvironment() string { return c.Environment }

func (c *SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}

func (c *SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

// LoadConfigFromEnv builds a SimpleConfig from the process environment.
func LoadConfigFromEnv() *SimpleConfig {
	expiration := 24
	if raw := os.Getenv("JWT_EXPIRES_IN_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			expiration = parsed
		}
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	return &SimpleConfig{
		SigningKey:      os.Getenv("JWT_SECRET"),
		TokenExpiration: expiration,
		Issuer:          os.Getenv("JWT_ISSUER"),
		Environment:     env,
	}
}
