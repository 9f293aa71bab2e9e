// Package config loads .wptl.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/wptl"
	"github.com/ZaguanLabs/wptl/cache"
	"github.com/ZaguanLabs/wptl/processor"
	"github.com/ZaguanLabs/wptl/wordpress"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".wptl.yaml"

// Providers accepted in translation.provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is the top-level .wptl.yaml structure.
type Config struct {
	WordPress   WordPress   `yaml:"wordpress"`
	Translation Translation `yaml:"translation"`
	Cache       Cache       `yaml:"cache"`
	Log         Log         `yaml:"log"`
}

// WordPress holds the destination site and its application password.
type WordPress struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	AppPassword string `yaml:"app_password,omitempty"`
}

// Translation configures the provider and the pipeline.
type Translation struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	Target   string `yaml:"target,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Budget   int    `yaml:"budget,omitempty"`
	// Strategy is "tree" (default) or "literal".
	Strategy string `yaml:"strategy,omitempty"`
	// Anchored restricts literal matches to tag or whitespace boundaries.
	Anchored bool          `yaml:"anchored,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	Retries  int           `yaml:"retries,omitempty"`
	RPM      int           `yaml:"rpm,omitempty"`
}

// Cache selects the translation cache backend.
type Cache struct {
	Type       string        `yaml:"type"`
	TTL        time.Duration `yaml:"ttl,omitempty"`
	MaxEntries int           `yaml:"max_entries,omitempty"`
	Path       string        `yaml:"path,omitempty"`
	RedisURL   string        `yaml:"redis_url,omitempty"`
	KeyPrefix  string        `yaml:"key_prefix,omitempty"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Translation: Translation{
			Provider: ProviderGemini,
			Budget:   wptl.DefaultBatchBudget,
			Strategy: string(processor.StrategyTree),
			Timeout:  60 * time.Second,
			Retries:  3,
		},
		Cache: Cache{
			Type:       cache.TypeMemory,
			TTL:        24 * time.Hour,
			MaxEntries: 10000,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the config file at path on top of the defaults, then applies
// environment overrides. An empty path looks for FileName in the working
// directory and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path) // #nosec G304 - user-selected config path
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides values from the environment. Secrets are only ever
// taken from the file or the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.WordPress.URL, "WPTL_WP_URL")
	set(&c.WordPress.Username, "WPTL_WP_USER")
	set(&c.WordPress.AppPassword, "WPTL_WP_APP_PASSWORD")
	set(&c.Cache.RedisURL, "WPTL_REDIS_URL")

	switch c.Translation.Provider {
	case ProviderOpenAI:
		set(&c.Translation.APIKey, "OPENAI_API_KEY")
	default:
		set(&c.Translation.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
}

// Validate reports malformed values. Missing credentials are checked
// separately because not every command needs them.
func (c *Config) Validate() error {
	var errs []error

	switch c.Translation.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("translation.provider: unknown provider %q", c.Translation.Provider))
	}
	if _, ok := processor.ParseStrategy(c.Translation.Strategy); !ok {
		errs = append(errs, fmt.Errorf("translation.strategy: unknown strategy %q", c.Translation.Strategy))
	}
	if c.Translation.Budget < 0 {
		errs = append(errs, errors.New("translation.budget: must not be negative"))
	}
	if c.Translation.Retries < 0 {
		errs = append(errs, errors.New("translation.retries: must not be negative"))
	}
	if c.Translation.RPM < 0 {
		errs = append(errs, errors.New("translation.rpm: must not be negative"))
	}

	switch c.Cache.Type {
	case "", cache.TypeNone, cache.TypeMemory:
	case cache.TypeFile:
		if c.Cache.Path == "" {
			errs = append(errs, errors.New("cache.path: required for the file cache"))
		}
	case cache.TypeRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url: required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.type: unknown cache type %q", c.Cache.Type))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// RequireWordPress reports missing destination settings.
func (c *Config) RequireWordPress() error {
	var missing []string
	if c.WordPress.URL == "" {
		missing = append(missing, "wordpress.url (WPTL_WP_URL)")
	}
	if c.WordPress.Username == "" {
		missing = append(missing, "wordpress.username (WPTL_WP_USER)")
	}
	if c.WordPress.AppPassword == "" {
		missing = append(missing, "wordpress.app_password (WPTL_WP_APP_PASSWORD)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireAPIKey reports a missing provider key.
func (c *Config) RequireAPIKey() error {
	if c.Translation.APIKey != "" {
		return nil
	}
	if c.Translation.Provider == ProviderOpenAI {
		return errors.New("missing configuration: translation.api_key (OPENAI_API_KEY)")
	}
	return errors.New("missing configuration: translation.api_key (GEMINI_API_KEY or GOOGLE_API_KEY)")
}

// StoreConfig maps the cache section onto cache.Open's config.
func (c Cache) StoreConfig() cache.Config {
	return cache.Config{
		Type:       c.Type,
		TTL:        c.TTL,
		MaxEntries: c.MaxEntries,
		Path:       c.Path,
		RedisURL:   c.RedisURL,
		KeyPrefix:  c.KeyPrefix,
	}
}

// Credentials returns the WordPress section as client credentials.
func (w WordPress) Credentials() wordpress.Credentials {
	return wordpress.Credentials{
		SiteURL:     w.URL,
		Username:    w.Username,
		AppPassword: w.AppPassword,
	}
}
