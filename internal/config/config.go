// Package config loads ulibctl's optional JSON-with-comments config file,
// generalizing the teacher's own jsonc config loader
// (tk.json/hujson.Standardize) to this module's call/registry defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

// FileName is the default config file name ulibctl looks for in the
// current directory.
const FileName = "ulibctl.jsonc"

// Config holds ulibctl's configurable defaults.
type Config struct {
	// MatchCriteria names the [ipc.MatchCriteria] "call" uses to resolve
	// the cipher interface: one of "equals", "greater_than", "lower_than",
	// "any". The math capabilities and "query" do not read it.
	MatchCriteria string `json:"match_criteria,omitempty"`

	// RegistryImage is the default flash image path for the "registry"
	// command.
	RegistryImage string `json:"registry_image,omitempty"`
}

// Default returns ulibctl's built-in defaults.
func Default() Config {
	return Config{
		MatchCriteria: "any",
		RegistryImage: "registry.img",
	}
}

// Load reads and parses path as JSONC. A missing file is not an error:
// Load returns [Default] unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: invalid JSONC: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: invalid JSON: %w", path, err)
	}

	return cfg, nil
}

// MatchCriteriaValue resolves the configured match-criteria name to an
// [ipc.MatchCriteria]. An unrecognized name falls back to [ipc.Any].
func (c Config) MatchCriteriaValue() ipc.MatchCriteria {
	switch c.MatchCriteria {
	case "equals":
		return ipc.Equals
	case "greater_than":
		return ipc.GreaterThan
	case "lower_than":
		return ipc.LowerThan
	default:
		return ipc.Any
	}
}
