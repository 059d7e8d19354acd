package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix.
const DefaultEnvPrefix = "JSONDB_"

// Load merges defaults, the YAML file at path (optional), and
// environment variables, then verifies the result.
//
// Environment variables map underscored names onto config keys:
// JSONDB_WAL_FLUSH_MODE=always becomes wal.flush_mode. Section names
// contain no underscores, so only the first underscore after a known
// section splits; the remainder stays as the key.
func Load(path string) (*Spec, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(DefaultEnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	spec := Default()
	if err := k.Unmarshal("", spec); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	Sanitize(spec)
	if err := Verify(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// sections whose children keep their underscores intact.
var envSections = []string{"security", "wal", "log"}

func envTransform(s string) string {
	s = strings.TrimPrefix(s, DefaultEnvPrefix)
	s = strings.ToLower(s)
	for _, section := range envSections {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}
