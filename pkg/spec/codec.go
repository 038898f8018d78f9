package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes a manifest as indented JSON, the canonical storage
// form.
func MarshalJSON(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a manifest from JSON.
func UnmarshalJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// MarshalYAML encodes a manifest as YAML, the human-edited form.
func MarshalYAML(m *Manifest) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}

// UnmarshalYAML decodes a manifest from YAML.
func UnmarshalYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// LoadFile reads a manifest from disk, choosing the codec by extension
// (.json, .yaml, .yml).
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return UnmarshalJSON(data)
	case ".yaml", ".yml":
		return UnmarshalYAML(data)
	default:
		return nil, fmt.Errorf("unsupported manifest extension: %s", path)
	}
}

// SaveFile writes a manifest to disk, choosing the codec by extension.
func SaveFile(path string, m *Manifest) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = MarshalJSON(m)
	case ".yaml", ".yml":
		data, err = MarshalYAML(m)
	default:
		return fmt.Errorf("unsupported manifest extension: %s", path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
