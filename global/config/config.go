package config

import (
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// AppConfig is populated once at startup from the environment and never
// mutated afterwards; every component reads it through the Global value.
type AppConfig struct {
	Port int `mapstructure:"PORT"`

	// Comma-separated backend targets, "id:transport:host:port" each.
	ChatBackends   string `mapstructure:"CHAT_BACKENDS"`
	DefaultBackend string `mapstructure:"DEFAULT_BACKEND"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret    string `mapstructure:"JWT_SECRET"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	TokenTTLDays int    `mapstructure:"TOKEN_TTL_DAYS"`

	NodeID int64 `mapstructure:"NODE_ID"`
}

var Global = defaults()

func defaults() AppConfig {
	return AppConfig{
		Port: 8080,
		ChatBackends: "java:tcp:localhost:8000,rust:tcp:localhost:8001," +
			"javarmi:tcp:localhost:8201,grpc:grpc:localhost:50051",
		DefaultBackend: "java",
		RedisAddr:      "127.0.0.1:6379",
		JWTSecret:      "replace-this-with-a-long-random-secret-for-production",
		JWTIssuer:      "nimbus-chat",
		JWTAudience:    "nimbus-chat-client",
		TokenTTLDays:   30,
		NodeID:         1,
	}
}

// Load overlays environment variables onto the defaults. Values come in as
// strings, so the decode is weakly typed (PORT=8080 → int, etc.).
func Load() error {
	return LoadFrom(envMap())
}

// LoadFrom decodes a raw key/value set into Global; split out for tests.
func LoadFrom(raw map[string]string) error {
	cfg := defaults()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "build config decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return errors.Wrap(err, "decode config from env")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	Global = cfg
	return nil
}

func (c AppConfig) TokenTTL() time.Duration {
	days := c.TokenTTLDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func envMap() map[string]string {
	keys := []string{
		"PORT", "CHAT_BACKENDS", "DEFAULT_BACKEND", "DATABASE_URL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "JWT_ISSUER", "JWT_AUDIENCE", "TOKEN_TTL_DAYS", "NODE_ID",
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			out[k] = v
		}
	}
	return out
}
