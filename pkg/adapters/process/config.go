package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToolSpec describes one external command exposed as a tool.
type ToolSpec struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile is the structure of a tools.yaml (or tools.json) file.
type ConfigFile struct {
	Tools []ToolSpec `yaml:"tools" json:"tools"`
}

// LoadTools reads a tool configuration file and returns the specs keyed
// by name. A missing file means no tools configured, not an error.
func LoadTools(path string) (map[string]ToolSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ToolSpec{}, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse tools config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse tools config: %w", err)
		}
	}

	specs := make(map[string]ToolSpec)
	for _, tool := range cfg.Tools {
		if tool.Name == "" {
			continue
		}
		specs[tool.Name] = tool
	}

	return specs, nil
}
