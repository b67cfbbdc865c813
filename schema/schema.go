// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package schema implements a small declarative validator for value trees
// produced by the ast package.
//
// A schema is itself a JSON object, for example:
//
//	{
//	  "type": "object",
//	  "properties": {
//	    "name":  {"type": "string", "required": true},
//	    "tags":  {"type": "array", "items": {"type": "string"}}
//	  }
//	}
//
// Properties present in a value are validated recursively; a property
// missing from the value is an error only if its schema sets "required".
// Properties not named by the schema are ignored.
package schema

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/creachadair/jvalue/ast"
	"github.com/creachadair/mds/mapset"
	"github.com/tailscale/hujson"
)

// Type names accepted in the "type" field of a schema.
const (
	Object  = "object"
	Array   = "array"
	String  = "string"
	Number  = "number"
	Integer = "integer"
	Boolean = "boolean"
	Null    = "null"
)

var typeNames = mapset.New(Object, Array, String, Number, Integer, Boolean, Null)

// A Schema describes the expected shape of a value.
type Schema struct {
	Type       string             // if empty, any type is accepted
	Required   bool               // meaningful only for a property schema
	Properties map[string]*Schema // for objects
	Items      *Schema            // for arrays
}

// Compile constructs a Schema from a parsed schema description.
func Compile(v ast.Value) (*Schema, error) { return compile(v, "") }

func compile(v ast.Value, path string) (*Schema, error) {
	obj, ok := v.(ast.Object)
	if !ok {
		return nil, fmt.Errorf("schema%s: got %T, want object", at(path), v)
	}
	var s Schema
	for _, m := range obj {
		switch m.Key {
		case "type":
			t, ok := m.Value.(ast.String)
			if !ok {
				return nil, fmt.Errorf("schema%s: type must be a string", at(path))
			} else if !typeNames.Has(string(t)) {
				return nil, fmt.Errorf("schema%s: unknown type %q", at(path), t)
			}
			s.Type = string(t)

		case "required":
			b, ok := m.Value.(ast.Bool)
			if !ok {
				return nil, fmt.Errorf("schema%s: required must be a bool", at(path))
			}
			s.Required = bool(b)

		case "properties":
			props, ok := m.Value.(ast.Object)
			if !ok {
				return nil, fmt.Errorf("schema%s: properties must be an object", at(path))
			}
			s.Properties = make(map[string]*Schema, len(props))
			for _, p := range props {
				ps, err := compile(p.Value, join(path, p.Key))
				if err != nil {
					return nil, err
				}
				s.Properties[p.Key] = ps
			}

		case "items":
			is, err := compile(m.Value, path+"[]")
			if err != nil {
				return nil, err
			}
			s.Items = is
		}
		// Other keys (title, description, ...) are ignored.
	}
	return &s, nil
}

// Parse compiles a schema from its text. The text may use comments and
// trailing commas.
func Parse(text []byte) (*Schema, error) {
	std, err := hujson.Standardize(text)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	v, err := ast.Parse(std)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return Compile(v)
}

// Load reads and compiles the schema stored in the specified file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate reports whether v satisfies s.
func (s *Schema) Validate(v ast.Value) bool { return s.Check(v) == nil }

// ErrInvalid is reported by Check for values that do not satisfy a schema.
var ErrInvalid = errors.New("value does not match schema")

// A ValidationError describes the first location at which a value failed to
// satisfy a schema.
type ValidationError struct {
	Path    string // dotted path of the failing value, "" for the root
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Is reports whether target is ErrInvalid.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Check reports nil if v satisfies s; otherwise it returns a
// *ValidationError for the first failure found.
func (s *Schema) Check(v ast.Value) error { return s.check(v, "") }

func (s *Schema) check(v ast.Value, path string) error {
	if s == nil {
		return nil
	}
	if m, ok := v.(*ast.Member); ok {
		v = m.Value
	}
	if s.Type != "" && !hasType(v, s.Type) {
		return &ValidationError{Path: path, Message: fmt.Sprintf("got %s, want %s", typeOf(v), s.Type)}
	}
	switch t := v.(type) {
	case ast.Object:
		for _, key := range sortedKeys(s.Properties) {
			ps := s.Properties[key]
			m := t.Find(key)
			if m == nil {
				if ps.Required {
					return &ValidationError{Path: join(path, key), Message: "required property is missing"}
				}
				continue
			}
			if err := ps.check(m.Value, join(path, key)); err != nil {
				return err
			}
		}
	case ast.Array:
		if s.Items != nil {
			for i, elt := range t {
				if err := s.Items.check(elt, join(path, strconv.Itoa(i))); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func hasType(v ast.Value, want string) bool {
	switch want {
	case Number:
		_, isInt := v.(ast.Int)
		_, isFloat := v.(ast.Float)
		return isInt || isFloat
	default:
		return typeOf(v) == want
	}
}

func typeOf(v ast.Value) string {
	switch v.(type) {
	case ast.Object:
		return Object
	case ast.Array:
		return Array
	case ast.String:
		return String
	case ast.Int:
		return Integer
	case ast.Float:
		return Number
	case ast.Bool:
		return Boolean
	case ast.NullType:
		return Null
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys(m map[string]*Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func at(path string) string {
	if path == "" {
		return ""
	}
	return " at " + path
}
