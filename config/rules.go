package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/match"
)

// ErrExists is returned when a defaults file would overwrite an existing one.
var ErrExists = errors.New("file already exists")

// LoadRules returns the keyword rules. Labels present in the file replace the
// built-in ones; everything else keeps its default. An empty path yields the
// defaults. The boolean reports whether a file was read.
func LoadRules(path string) (classify.Rules, bool, error) {
	defaults := classify.DefaultRules()
	clean := strings.TrimSpace(path)
	if clean == "" {
		return defaults, false, nil
	}
	data, err := os.ReadFile(filepath.Clean(clean))
	if err != nil {
		return defaults, false, fmt.Errorf("read rules: %w", err)
	}
	var overrides classify.Rules
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return defaults, false, fmt.Errorf("parse rules %s: %w", filepath.Base(clean), err)
	}
	return defaults.Merge(overrides), true, nil
}

// WriteDefaultRules writes the built-in rules to path as a starting point for
// editing. An existing file is kept unless force is set.
func WriteDefaultRules(path string, force bool) error {
	return writeDefaults(path, classify.DefaultRules(), force)
}

// LoadMapping reads a layer-keyword mapping file (layer or glob -> synonyms).
// An empty path yields an empty mapping.
func LoadMapping(path string) (match.LayerMapping, error) {
	m := match.LayerMapping{}
	clean := strings.TrimSpace(path)
	if clean == "" {
		return m, nil
	}
	data, err := os.ReadFile(filepath.Clean(clean))
	if err != nil {
		return nil, fmt.Errorf("read layer mapping: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse layer mapping %s: %w", filepath.Base(clean), err)
	}
	if m == nil {
		m = match.LayerMapping{}
	}
	return m, nil
}

func writeDefaults(path string, v any, force bool) error {
	clean := filepath.Clean(strings.TrimSpace(path))
	if !force {
		if _, err := os.Stat(clean); err == nil {
			return fmt.Errorf("%s: %w", clean, ErrExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", clean, err)
		}
	}
	if dir := filepath.Dir(clean); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rules dir: %w", err)
		}
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	if err := os.WriteFile(clean, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", clean, err)
	}
	return nil
}
