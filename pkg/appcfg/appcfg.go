package appcfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Language             string `yaml:"language"`  // "ru" | "en"
	LogLevel             string `yaml:"log_level"` // "debug"|"info"|"warn"|"error"
	HideSecretsInConsole bool   `yaml:"hide_secrets_in_console"`

	Service Service `yaml:"service"`
	HTTP    HTTP    `yaml:"http"`
	Batch   Batch   `yaml:"batch"`
	Files   Files   `yaml:"files"`
}

// Service describes the referral backend.
type Service struct {
	VerifyURL   string            `yaml:"verify_url"`
	RegisterURL string            `yaml:"register_url"` // {code} is replaced with the referral code
	Headers     map[string]string `yaml:"headers"`
}

type HTTP struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Batch struct {
	Pace time.Duration `yaml:"pace"` // pause after every wallet
}

type Files struct {
	Proxies string `yaml:"proxies"`
	Wallets string `yaml:"wallets"`
	Logs    string `yaml:"logs"`
}

// env holds WALLETREG_* overrides. Empty values leave the file config untouched.
type env struct {
	Language    string        `envconfig:"LANGUAGE"`
	LogLevel    string        `envconfig:"LOG_LEVEL"`
	HideSecrets *bool         `envconfig:"HIDE_SECRETS"`
	VerifyURL   string        `envconfig:"VERIFY_URL"`
	RegisterURL string        `envconfig:"REGISTER_URL"`
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS"`
	RetryDelay  time.Duration `envconfig:"RETRY_DELAY"`
	Timeout     time.Duration `envconfig:"TIMEOUT"`
	Pace        time.Duration `envconfig:"PACE"`
	Proxies     string        `envconfig:"PROXIES"`
	Wallets     string        `envconfig:"WALLETS"`
}

const envPrefix = "walletreg"

// dotEnvFile is optional; a file that exists must parse.
var dotEnvFile = ".env"

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the yaml file at path; a missing file yields the defaults.
// Environment overrides (and a .env file in the working directory) are applied last.
func Load(path string) (*Config, error) {
	c := &Config{}
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("open app config %q: %w", path, err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(c); err != nil {
			return nil, fmt.Errorf("decode app yaml %q: %w", path, err)
		}
	}

	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dotEnvFile, err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return c, c.validate()
}

func (c *Config) applyEnv() error {
	var e env
	if err := envconfig.Process(envPrefix, &e); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setStr(&c.Language, e.Language)
	setStr(&c.LogLevel, e.LogLevel)
	setStr(&c.Service.VerifyURL, e.VerifyURL)
	setStr(&c.Service.RegisterURL, e.RegisterURL)
	setStr(&c.Files.Proxies, e.Proxies)
	setStr(&c.Files.Wallets, e.Wallets)
	if e.HideSecrets != nil {
		c.HideSecretsInConsole = *e.HideSecrets
	}
	if e.MaxAttempts > 0 {
		c.HTTP.MaxAttempts = e.MaxAttempts
	}
	if e.RetryDelay > 0 {
		c.HTTP.RetryDelay = e.RetryDelay
	}
	if e.Timeout > 0 {
		c.HTTP.Timeout = e.Timeout
	}
	if e.Pace > 0 {
		c.Batch.Pace = e.Pace
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.MaxAttempts <= 0 {
		c.HTTP.MaxAttempts = 30
	}
	if c.HTTP.RetryDelay <= 0 {
		c.HTTP.RetryDelay = 2 * time.Second
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 60 * time.Second
	}
	if c.Batch.Pace <= 0 {
		c.Batch.Pace = 2 * time.Second
	}
	if c.Files.Proxies == "" {
		c.Files.Proxies = "proxies.txt"
	}
	if c.Files.Wallets == "" {
		c.Files.Wallets = "wallets.json"
	}
	if c.Files.Logs == "" {
		c.Files.Logs = "logs"
	}
}

func (c *Config) validate() error {
	if c.Service.VerifyURL == "" {
		return errors.New("service.verify_url must not be empty")
	}
	if c.Service.RegisterURL == "" {
		return errors.New("service.register_url must not be empty")
	}
	if !strings.Contains(c.Service.RegisterURL, "{code}") {
		return fmt.Errorf("service.register_url %q must contain {code}", c.Service.RegisterURL)
	}
	return nil
}
