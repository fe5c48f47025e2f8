package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tranvictor/blockseek/networks"
)

const (
	DEFAULT_NETWORK  = "bsc"
	DEFAULT_ENV_FILE = ".env"

	// NodeURLVariable names the node endpoint used by the binary search
	// fallback.
	NodeURLVariable = "RPC_URL"
)

type Config struct {
	Network       string        `env:"NETWORK" envDefault:"bsc"`
	IndexAPIKey   string        `env:"BSCSCAN_API_KEY"`
	IndexAPIURL   string        `env:"INDEX_API_URL"`
	NodeURL       string        `env:"RPC_URL"`
	TokenNodeURL  string        `env:"TOKEN_RPC_URL"`
	IndexCooldown time.Duration `env:"INDEX_COOLDOWN" envDefault:"2s"`
	Verbose       bool          `env:"VERBOSE"`
	MetricsAddr   string        `env:"METRICS_ADDR"`

	network networks.Network
}

// Load reads envFiles (".env" when none are given, missing files are
// skipped), parses the environment and fills the remaining fields from
// the selected network. A non-empty network overrides NETWORK.
func Load(network string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DEFAULT_ENV_FILE}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config from environment: %w", err)
	}
	if network != "" {
		cfg.Network = network
	}
	if err := cfg.applyNetworkDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyNetworkDefaults() error {
	if c.Network == "" {
		c.Network = DEFAULT_NETWORK
	}
	n, err := networks.GetNetwork(c.Network)
	if err != nil {
		return err
	}
	c.network = n

	c.IndexAPIKey = strings.TrimSpace(c.IndexAPIKey)
	if c.IndexAPIKey == "" && n.GetBlockExplorerAPIKeyVariableName() != "" {
		c.IndexAPIKey = strings.TrimSpace(os.Getenv(n.GetBlockExplorerAPIKeyVariableName()))
	}
	if c.IndexAPIURL == "" {
		c.IndexAPIURL = n.GetBlockExplorerAPIURL()
	}
	if c.NodeURL == "" && n.GetNodeVariableName() != "" {
		c.NodeURL = strings.TrimSpace(os.Getenv(n.GetNodeVariableName()))
	}
	if c.TokenNodeURL == "" {
		c.TokenNodeURL = n.GetPublicNode()
	}
	return nil
}

// Validate checks the settings that must be sane before anything runs.
// A missing API key or node URL is not an error here; it is reported
// when the path that needs it is reached.
func (c *Config) Validate() error {
	var errs []error
	if _, err := networks.GetNetwork(c.Network); err != nil {
		errs = append(errs, err)
	}
	if c.IndexCooldown <= 0 {
		errs = append(errs, fmt.Errorf("INDEX_COOLDOWN must be positive, got %s", c.IndexCooldown))
	}
	for name, value := range map[string]string{
		"INDEX_API_URL": c.IndexAPIURL,
		NodeURLVariable: c.NodeURL,
		"TOKEN_RPC_URL": c.TokenNodeURL,
	} {
		if value == "" {
			continue
		}
		if err := validateURL(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// GetNetwork returns the network selected by Network.
func (c *Config) GetNetwork() networks.Network {
	if c.network == nil {
		n, err := networks.GetNetwork(c.Network)
		if err != nil {
			return nil
		}
		c.network = n
	}
	return c.network
}

func (c *Config) ChainID() uint64 {
	if n := c.GetNetwork(); n != nil {
		return n.GetChainID()
	}
	return 0
}

// IndexAPIKeyVariableName is the setting reported when the explorer key
// is missing.
func (c *Config) IndexAPIKeyVariableName() string {
	if n := c.GetNetwork(); n != nil && n.GetBlockExplorerAPIKeyVariableName() != "" {
		return n.GetBlockExplorerAPIKeyVariableName()
	}
	return "BSCSCAN_API_KEY"
}
