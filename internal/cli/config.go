package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig holds the values read from a --config file. Nil pointers mark
// fields the file does not set.
type FileConfig struct {
	Input        *string
	Output       *string
	ClientName   *string
	IncludeTags  []string
	ExcludeTags  []string
	Methods      []string
	PathPatterns []string
	DryRun       *bool
	Verbose      *bool
	EnumsInput   *string
	EnumsOutput  *string
}

func loadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	cfg := &FileConfig{}
	for key, value := range raw {
		fieldErr := func(err error) error {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
		switch normalizeKey(key) {
		case "input":
			if cfg.Input, err = stringField(value); err != nil {
				return nil, fieldErr(err)
			}
		case "output":
			if cfg.Output, err = stringField(value); err != nil {
				return nil, fieldErr(err)
			}
		case "clientname":
			if cfg.ClientName, err = stringField(value); err != nil {
				return nil, fieldErr(err)
			}
		case "includetags":
			if cfg.IncludeTags, err = valueAsStringSlice(value); err != nil {
				return nil, fieldErr(err)
			}
		case "excludetags":
			if cfg.ExcludeTags, err = valueAsStringSlice(value); err != nil {
				return nil, fieldErr(err)
			}
		case "methods":
			if cfg.Methods, err = valueAsStringSlice(value); err != nil {
				return nil, fieldErr(err)
			}
		case "paths":
			if cfg.PathPatterns, err = valueAsStringSlice(value); err != nil {
				return nil, fieldErr(err)
			}
		case "dryrun":
			if cfg.DryRun, err = boolField(value); err != nil {
				return nil, fieldErr(err)
			}
		case "verbose":
			if cfg.Verbose, err = boolField(value); err != nil {
				return nil, fieldErr(err)
			}
		case "enumsinput":
			if cfg.EnumsInput, err = stringField(value); err != nil {
				return nil, fieldErr(err)
			}
		case "enumsoutput":
			if cfg.EnumsOutput, err = stringField(value); err != nil {
				return nil, fieldErr(err)
			}
		default:
			return nil, newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}
	return cfg, nil
}

func stringField(v any) (*string, error) {
	s, err := valueAsString(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func boolField(v any) (*bool, error) {
	b, err := valueAsBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// sanitizeList trims, drops empties and removes duplicates, keeping order.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

// configFromFlags loads the --config file named on cmd's persistent flags,
// returning an empty FileConfig when none is given.
func configFromFlags(getString func(string) (string, error)) (*FileConfig, string, error) {
	path, err := getString("config")
	if err != nil {
		return nil, "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return &FileConfig{}, "", nil
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
