package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"financial_forecast/pkg/core/utils"
)

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatHJSON Format = "hjson"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hjson":
		return FormatHJSON, nil
	default:
		return "", fmt.Errorf("unsupported scenario file extension %q", filepath.Ext(path))
	}
}

// Load reads one scenario file. An empty name defaults to the file's base name.
func Load(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// LoadAll reads every path in order and stops at the first error.
func LoadAll(paths []string) ([]*Scenario, error) {
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Parse decodes a scenario. JSON input goes through the lenient parser, so
// hand-edited files with comments or trailing commas still load.
func Parse(data []byte, format Format) (*Scenario, error) {
	var s Scenario
	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalStrict(data, &s); err != nil {
			return nil, fmt.Errorf("parse yaml scenario: %w", err)
		}
	case FormatJSON:
		if _, err := utils.SmartParse(string(data), &s); err != nil {
			return nil, fmt.Errorf("parse json scenario: %w", err)
		}
	case FormatHJSON:
		converted, err := utils.ParseHJSON(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse hjson scenario: %w", err)
		}
		if err := json.Unmarshal([]byte(converted), &s); err != nil {
			return nil, fmt.Errorf("decode hjson scenario: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}
	return &s, nil
}

// Marshal encodes a scenario as YAML.
func Marshal(s *Scenario) ([]byte, error) {
	return yaml.Marshal(s)
}
