// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package config loads settings for the jvalue command-line tool.
//
// A config file may be written in YAML (.yaml, .yml) or in JSON with
// comments and trailing commas (.json, .hujson):
//
//	max_depth: 500
//	log_level: debug
//	bench:
//	  iterations: 2000
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creachadair/jvalue/ast"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Config holds settings for the command-line tool. A zero value for any
// field means the built-in default should be used.
type Config struct {
	MaxDepth int    `yaml:"max_depth"`
	LogLevel string `yaml:"log_level"`
	Bench    Bench  `yaml:"bench"`
}

// Bench holds settings for the bench command.
type Bench struct {
	Iterations int `yaml:"iterations"`
}

var logLevels = []string{"", "debug", "info", "warn", "error"}

// Load reads the config file at path. The format is chosen by the file
// extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	case ".json", ".hujson":
		cfg, err = ParseHuJSON(data)
	default:
		return nil, fmt.Errorf("config %q: unknown format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// ParseYAML parses a YAML config. Unknown keys are errors.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseHuJSON parses a JSON config, which may contain comments and trailing
// commas. Unknown keys are errors.
func ParseHuJSON(data []byte) (*Config, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}
	v, err := ast.Parse(std)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(ast.Object)
	if !ok {
		return nil, fmt.Errorf("got %s, want object", v)
	}
	var cfg Config
	for _, m := range obj {
		switch m.Key {
		case "max_depth":
			err = intField(m, &cfg.MaxDepth)
		case "log_level":
			err = stringField(m, &cfg.LogLevel)
		case "bench":
			b, ok := m.Value.(ast.Object)
			if !ok {
				return nil, fmt.Errorf("field %q: got %s, want object", m.Key, m.Value)
			}
			for _, bm := range b {
				if bm.Key != "iterations" {
					return nil, fmt.Errorf("unknown field %q in bench", bm.Key)
				}
				err = intField(bm, &cfg.Bench.Iterations)
			}
		default:
			return nil, fmt.Errorf("unknown field %q", m.Key)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func intField(m *ast.Member, out *int) error {
	n, ok := m.Value.(ast.Int)
	if !ok {
		return fmt.Errorf("field %q: got %s, want integer", m.Key, m.Value.JSON())
	}
	*out = int(n)
	return nil
}

func stringField(m *ast.Member, out *string) error {
	s, ok := m.Value.(ast.String)
	if !ok {
		return fmt.Errorf("field %q: got %s, want string", m.Key, m.Value.JSON())
	}
	*out = string(s)
	return nil
}

// Validate reports an error if c contains out-of-range settings.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", c.MaxDepth)
	}
	if c.Bench.Iterations < 0 {
		return fmt.Errorf("bench.iterations must be non-negative, got %d", c.Bench.Iterations)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}
