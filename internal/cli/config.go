package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/apiview/internal/view"
)

// RenderConfig captures all inputs that influence render and preview after
// merging defaults, config file values, and CLI overrides.
type RenderConfig struct {
	Input          string
	Out            string
	TextOut        string
	Flavor         string
	PackageName    string
	EndpointName   string
	CredentialName string
	CredentialType string
	IncludeGroups  []string
	ExcludeGroups  []string
	BodyTemplates  string
	ConfigPath     string
	DryRun         bool
	Force          bool
	Pretty         bool
	Verbose        bool
	Debug          bool
}

func defaultRenderConfig() RenderConfig {
	return RenderConfig{
		Flavor:         view.DefaultFlavor,
		CredentialName: view.DefaultCredentialName,
		CredentialType: view.DefaultCredentialType,
	}
}

func (c *RenderConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.TextOut = strings.TrimSpace(c.TextOut)
	c.Flavor = strings.ToLower(strings.TrimSpace(c.Flavor))
	c.PackageName = strings.TrimSpace(c.PackageName)
	c.EndpointName = strings.TrimSpace(c.EndpointName)
	c.CredentialName = strings.TrimSpace(c.CredentialName)
	c.CredentialType = strings.TrimSpace(c.CredentialType)
	c.IncludeGroups = sanitizeNames(c.IncludeGroups)
	c.ExcludeGroups = sanitizeNames(c.ExcludeGroups)
	c.BodyTemplates = strings.TrimSpace(c.BodyTemplates)
}

func applyRenderConfigFromFile(cfg *RenderConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	strs := map[string]*string{
		"input":          &cfg.Input,
		"out":            &cfg.Out,
		"textout":        &cfg.TextOut,
		"flavor":         &cfg.Flavor,
		"packagename":    &cfg.PackageName,
		"endpointname":   &cfg.EndpointName,
		"credentialname": &cfg.CredentialName,
		"credentialtype": &cfg.CredentialType,
		"bodytemplates":  &cfg.BodyTemplates,
	}
	lists := map[string]*[]string{
		"includegroups": &cfg.IncludeGroups,
		"excludegroups": &cfg.ExcludeGroups,
	}
	bools := map[string]*bool{
		"dryrun":  &cfg.DryRun,
		"force":   &cfg.Force,
		"pretty":  &cfg.Pretty,
		"verbose": &cfg.Verbose,
		"debug":   &cfg.Debug,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = str
			continue
		}
		if dst, ok := lists[normalized]; ok {
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = sanitizeNames(list)
			continue
		}
		if dst, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = val
			continue
		}
		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
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
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// sanitizeNames trims and de-duplicates group names, keeping order.
func sanitizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
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
