package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/Harshitk-cp/abstractor/internal/aggregate"
	"github.com/Harshitk-cp/abstractor/internal/domain"
)

type exclusionEntry struct {
	When string `yaml:"when"`
	Drop string `yaml:"drop"`
}

// precedenceFile mirrors the YAML layout. Omitted keys keep their defaults.
type precedenceFile struct {
	Status        []string         `yaml:"status"`
	NoteType      []string         `yaml:"note_type"`
	Section       []string         `yaml:"section"`
	TrackedFields []string         `yaml:"tracked_fields"`
	PerformedOnly []string         `yaml:"performed_only"`
	Exclusions    []exclusionEntry `yaml:"exclusions"`
}

// ParsePrecedence decodes a YAML precedence document over the defaults and
// validates the result.
func ParsePrecedence(data []byte) (aggregate.Config, error) {
	var f precedenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return aggregate.Config{}, fmt.Errorf("parse precedence: %w", err)
	}

	cfg := aggregate.DefaultConfig()
	if f.Status != nil {
		cfg.Precedence.Status = make([]domain.Status, len(f.Status))
		for i, s := range f.Status {
			cfg.Precedence.Status[i] = domain.Status(s)
		}
	}
	if f.NoteType != nil {
		cfg.Precedence.NoteType = make([]domain.NoteType, len(f.NoteType))
		for i, t := range f.NoteType {
			cfg.Precedence.NoteType[i] = domain.NoteType(t)
		}
	}
	if f.Section != nil {
		cfg.Precedence.Section = f.Section
	}
	if f.TrackedFields != nil {
		cfg.TrackedFields = f.TrackedFields
	}
	if f.PerformedOnly != nil {
		cfg.PerformedOnly = f.PerformedOnly
	}
	if f.Exclusions != nil {
		cfg.Exclusions = make([]aggregate.Exclusion, len(f.Exclusions))
		for i, e := range f.Exclusions {
			cfg.Exclusions[i] = aggregate.Exclusion{When: e.When, Drop: e.Drop}
		}
	}

	if err := cfg.Validate(); err != nil {
		return aggregate.Config{}, fmt.Errorf("invalid precedence: %w", err)
	}
	return cfg, nil
}

// LoadPrecedence reads the precedence file at path. An empty path or a
// missing file yields aggregate.DefaultConfig.
func LoadPrecedence(path string) (aggregate.Config, error) {
	if path == "" {
		return aggregate.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return aggregate.DefaultConfig(), nil
	}
	if err != nil {
		return aggregate.Config{}, fmt.Errorf("read precedence %s: %w", path, err)
	}
	return ParsePrecedence(data)
}
