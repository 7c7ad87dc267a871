// Package config assembles server settings from defaults, an optional YAML file
// and the environment. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	envPrefix = "LLMCHESS_"
)

// DevAdminSecret is the fixed admin signing secret used in dev mode
const DevAdminSecret = "dev-secret-minimum-32-characters-long"

type Config struct {
	Host            string        `yaml:"host" validate:"required"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	Provider        string        `yaml:"provider" validate:"oneof=openai anthropic"`
	DefaultModel    string        `yaml:"default_model" validate:"omitempty,max=100,printascii"`
	ProviderBaseURL string        `yaml:"provider_base_url" validate:"omitempty,url"`
	ProviderTimeout time.Duration `yaml:"provider_timeout" validate:"min=1s,max=5m"`
	Temperature     float64       `yaml:"temperature" validate:"min=0,max=2"`
	APIKey          string        `yaml:"api_key" validate:"omitempty,printascii"`
	APIKeySecretID  string        `yaml:"api_key_secret_id" validate:"omitempty,max=512"`
	AWSRegion       string        `yaml:"aws_region" validate:"omitempty,max=64"`
	AllowOrigins    string        `yaml:"allow_origins" validate:"required"`
	RateLimit       int           `yaml:"rate_limit" validate:"min=1,max=10000"`
	AdminSecret     string        `yaml:"admin_secret" validate:"omitempty,min=32"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string        `yaml:"log_format" validate:"oneof=text json"`
	Dev             bool          `yaml:"dev"`

	// vendor key variables, resolved against Provider in Validate
	openAIKey    string
	anthropicKey string
	explicitKey  bool
}

// Default returns the settings used when nothing else is supplied
func Default() Config {
	return Config{
		Host:            "localhost",
		Port:            8000,
		Provider:        ProviderOpenAI,
		ProviderTimeout: 30 * time.Second,
		Temperature:     0.2,
		AllowOrigins:    "http://localhost:4200",
		RateLimit:       10,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads defaults, then the YAML file at path when non-empty, then the environment
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	str("HOST", &c.Host)
	str("PROVIDER", &c.Provider)
	str("DEFAULT_MODEL", &c.DefaultModel)
	str("PROVIDER_BASE_URL", &c.ProviderBaseURL)
	str("API_KEY_SECRET_ID", &c.APIKeySecretID)
	str("AWS_REGION", &c.AWSRegion)
	str("ALLOW_ORIGINS", &c.AllowOrigins)
	str("ADMIN_SECRET", &c.AdminSecret)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	// the provider may still change through flags, so only collect vendor keys here
	c.openAIKey, _ = lookup("OPENAI_API_KEY")
	c.anthropicKey, _ = lookup("ANTHROPIC_API_KEY")
	if v, ok := lookup(envPrefix + "API_KEY"); ok && v != "" {
		c.APIKey = v
		c.explicitKey = true
	}

	var errs []error
	if v, ok := lookup(envPrefix + "PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPORT: %w", envPrefix, err))
		}
		c.Port = n
	}
	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err))
		}
		c.RateLimit = n
	}
	if v, ok := lookup(envPrefix + "PROVIDER_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPROVIDER_TIMEOUT: %w", envPrefix, err))
		}
		c.ProviderTimeout = d
	}
	if v, ok := lookup(envPrefix + "TEMPERATURE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTEMPERATURE: %w", envPrefix, err))
		}
		c.Temperature = f
	}
	if v, ok := lookup(envPrefix + "DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDEV: %w", envPrefix, err))
		}
		c.Dev = b
	}
	return errors.Join(errs...)
}

// Validate checks field constraints and fills dev-mode defaults
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.resolveVendorKey()
	if c.Dev && c.AdminSecret == "" {
		c.AdminSecret = DevAdminSecret
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// resolveVendorKey applies the provider's own key variable unless LLMCHESS_API_KEY was set
func (c *Config) resolveVendorKey() {
	if c.explicitKey {
		return
	}
	vendorKey := c.openAIKey
	if c.Provider == ProviderAnthropic {
		vendorKey = c.anthropicKey
	}
	if vendorKey != "" {
		c.APIKey = vendorKey
	}
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins splits AllowOrigins on commas
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
