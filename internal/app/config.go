package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete client configuration, loadable from environment
// variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	APIBaseURL    string        `default:"http://localhost:3000" usage:"Storefront API base URL" flag:"api-base-url"`
	DataDir       string        `usage:"Directory for the persisted cart and checkout draft (defaults to the user config dir)" flag:"data-dir"`
	HTTPTimeout   time.Duration `default:"15s"   usage:"HTTP request timeout" flag:"http-timeout"`
	DraftDebounce time.Duration `default:"300ms" usage:"Checkout draft save debounce" flag:"draft-debounce"`
	Breaker       BreakerConfig
	Health        HealthConfig
}

// BreakerConfig tunes the catalog circuit breaker.
type BreakerConfig struct {
	ConsecutiveFailures uint32        `default:"3"   usage:"Catalog failures before the breaker opens"`
	Timeout             time.Duration `default:"30s" usage:"How long the breaker stays open"`
}

// HealthConfig tunes the backend reachability probe.
type HealthConfig struct {
	Interval time.Duration `default:"30s" usage:"Reachability probe interval"`
	Timeout  time.Duration `default:"5s"  usage:"Reachability probe timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills values that need runtime lookups: the BASE_URL variable
// the browser client honors, and a per-user data directory.
func (c *Config) applyDefaults() error {
	if v := os.Getenv("BASE_URL"); v != "" && c.APIBaseURL == "http://localhost:3000" {
		c.APIBaseURL = v
	}
	if c.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return errors.Wrap(err, "resolve user config dir")
		}
		c.DataDir = filepath.Join(base, "storefront")
	}
	return nil
}
