package repo

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/systemshift/gitlet/internal/dag"
)

// Common-ancestor strategies for merge.
const (
	AncestorChain   = "chain"
	AncestorNearest = "nearest"
)

// Config is the repository configuration stored in .gitlet/config.yml.
type Config struct {
	DefaultBranch string      `yaml:"default_branch"`
	Ignore        []string    `yaml:"ignore"`
	Merge         MergeConfig `yaml:"merge"`
}

// MergeConfig tunes the merge engine.
type MergeConfig struct {
	Ancestor string `yaml:"ancestor"`
}

// DefaultConfig returns the configuration written by Init.
func DefaultConfig() Config {
	return Config{
		DefaultBranch: "master",
		Ignore:        []string{},
		Merge:         MergeConfig{Ancestor: AncestorChain},
	}
}

// Validate checks field values and fills in defaults for empty ones.
func (c *Config) Validate() error {
	if c.DefaultBranch == "" {
		c.DefaultBranch = "master"
	}
	if err := dag.ValidBranchName(c.DefaultBranch); err != nil {
		return fmt.Errorf("default_branch: %w", err)
	}
	switch c.Merge.Ancestor {
	case "":
		c.Merge.Ancestor = AncestorChain
	case AncestorChain, AncestorNearest:
	default:
		return fmt.Errorf("merge.ancestor: unknown strategy %q", c.Merge.Ancestor)
	}
	var err error
	for _, p := range c.Ignore {
		if !doublestar.ValidatePattern(p) {
			err = multierr.Append(err, fmt.Errorf("ignore: invalid pattern %q", p))
		}
	}
	return err
}

// LoadConfig reads the config file at path. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file at path.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := dag.SafeWrite(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
