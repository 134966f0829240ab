package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the per-project settings file at the workspace root.
const ConfigFileName = ".phpls.json"

// Config holds the per-project settings.
type Config struct {
	// Exclude lists directory names skipped during scanning, on top of
	// the built-in defaults.
	Exclude []string `json:"exclude,omitempty"`
}

// LoadConfig reads the project configuration from the workspace root. A
// missing file yields the zero config, not an error.
func LoadConfig(rootPath string) (*Config, error) {
	content, err := os.ReadFile(filepath.Join(rootPath, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	var config Config
	if err := json.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}

	return &config, nil
}
