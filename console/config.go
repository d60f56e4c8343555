package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Config is the console configuration, usually loaded from a YAML file.
type Config struct {
	// Prompt is shown when a new chunk begins.
	Prompt string `yaml:"prompt"`
	// Continue is shown while a chunk is incomplete.
	Continue string `yaml:"continue"`
	// History is the file terminal history is kept in. A leading ~ names the
	// home directory. Empty disables history.
	History string `yaml:"history"`
	// Bootstrap lists script files evaluated in order by every new shell.
	Bootstrap []string `yaml:"bootstrap"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`
	// Listen is the address to serve websocket consoles on. Empty disables
	// the server.
	Listen string `yaml:"listen"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Prompt:   "> ",
		Continue: ". ",
		History:  "~/.cscript_history",
		LogLevel: "warning",
	}
}

// LoadConfig reads a YAML configuration file. Fields the file omits keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read config: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig decodes a YAML configuration. Unknown fields are errors.
func ParseConfig(b []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(b, cfg); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %w", err)
	}
	return cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, path[1:])
}
