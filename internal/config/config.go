// Package config loads storefront settings: built-in defaults, then an
// optional YAML file, then STOREFRONT_* environment variables, then
// validation.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/storefront/internal/validator"
	"github.com/caarlos0/env/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "STOREFRONT_"

// Config holds all configuration for the storefront.
type Config struct {
	LogLevel  string `mapstructure:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" env:"LOG_FORMAT" validate:"oneof=text json"`

	// Admins is the static allowlist of admin actor IDs.
	Admins     []int64  `mapstructure:"admins" env:"ADMINS" envSeparator:","`
	Categories []string `mapstructure:"categories" env:"CATEGORIES" envSeparator:"," validate:"min=1"`
	FAQ        string   `mapstructure:"faq" env:"FAQ"`
	Contact    string   `mapstructure:"contact" env:"CONTACT"`

	BroadcastDelay time.Duration `mapstructure:"broadcast_delay" env:"BROADCAST_DELAY" validate:"gte=0"`
	// SessionTTL expires idle sessions; 0 keeps them forever.
	SessionTTL time.Duration `mapstructure:"session_ttl" env:"SESSION_TTL" validate:"gte=0"`

	Storage    StorageConfig    `mapstructure:"storage" envPrefix:"STORAGE_"`
	HTTP       HTTPConfig       `mapstructure:"http" envPrefix:"HTTP_"`
	Kafka      KafkaConfig      `mapstructure:"kafka" envPrefix:"KAFKA_"`
	Encryption EncryptionConfig `mapstructure:"encryption" envPrefix:"ENCRYPTION_"`
}

// StorageConfig selects the session and record backends.
type StorageConfig struct {
	Sessions string `mapstructure:"sessions" env:"SESSIONS" validate:"oneof=memory file redis"`
	Records  string `mapstructure:"records" env:"RECORDS" validate:"oneof=memory file postgres"`

	// Dir is the root for the file backends.
	Dir string `mapstructure:"dir" env:"DIR" validate:"required_if=Sessions file,required_if=Records file"`

	RedisAddr     string `mapstructure:"redis_addr" env:"REDIS_ADDR" validate:"required_if=Sessions redis"`
	RedisPassword string `mapstructure:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"redis_db" env:"REDIS_DB" validate:"gte=0"`
	// RedisLock coordinates sessions across replicas.
	RedisLock bool `mapstructure:"redis_lock" env:"REDIS_LOCK"`

	PostgresDSN string `mapstructure:"postgres_dsn" env:"POSTGRES_DSN" validate:"required_if=Records postgres"`
}

// HTTPConfig configures the webhook server and the outbound gateway.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" env:"ADDR" validate:"required"`
	// GatewayURL sends outbound messages to a chat gateway. Empty streams
	// them over server-sent events instead.
	GatewayURL string `mapstructure:"gateway_url" env:"GATEWAY_URL" validate:"omitempty,url"`
}

// KafkaConfig enables order event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" env:"BROKERS" envSeparator:","`
	Topic   string   `mapstructure:"topic" env:"TOPIC" validate:"required"`
}

// EncryptionConfig enables session encryption when Key is set.
// Keys are base64-encoded 32-byte AES keys.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key" env:"KEY"`
	FallbackKeys []string `mapstructure:"fallback_keys" env:"FALLBACK_KEYS" envSeparator:","`
}

// Enabled reports whether a key is configured.
func (e EncryptionConfig) Enabled() bool {
	return e.Key != ""
}

// Decode returns the active and fallback keys.
func (e EncryptionConfig) Decode() ([]byte, [][]byte, error) {
	active, err := decodeKey(e.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	fallbacks := make([][]byte, 0, len(e.FallbackKeys))
	for i, k := range e.FallbackKeys {
		b, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallbacks = append(fallbacks, b)
	}
	return active, fallbacks, nil
}

func decodeKey(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(b) != 32 {
		return nil, errors.New("must decode to 32 bytes")
	}
	return b, nil
}

// Default returns the built-in configuration: everything in memory.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Categories:     []string{"Clothing", "Shoes", "Accessories"},
		BroadcastDelay: 50 * time.Millisecond,
		Storage: StorageConfig{
			Sessions: "memory",
			Records:  "memory",
			Dir:      ".storefront",
		},
		HTTP:  HTTPConfig{Addr: ":8080"},
		Kafka: KafkaConfig{Topic: "storefront.orders"},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Encryption.Enabled() {
		if _, _, err := cfg.Encryption.Decode(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

// loadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("create config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}
