// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"io"
	"os"

	"github.com/creachadair/jvalue"
)

// DefaultMaxDepth is the maximum nesting depth used by a Parser whose
// MaxDepth field is not positive.
const DefaultMaxDepth = 1000

// A Parser constructs value trees from JSON text. A zero Parser is ready for
// use. A Parser keeps no state between calls, and is safe for concurrent use
// by multiple goroutines.
type Parser struct {
	// MaxDepth is the maximum permitted nesting depth of objects and arrays.
	// Input nested more deeply is rejected with a DepthError.
	// If MaxDepth ≤ 0, DefaultMaxDepth is used.
	MaxDepth int
}

func (p *Parser) maxDepth() int {
	if p != nil && p.MaxDepth > 0 {
		return p.MaxDepth
	}
	return DefaultMaxDepth
}

// Parse parses text as a single JSON value and returns its tree.  Text after
// the value, other than whitespace, is an error. In case of error, no partial
// value is returned, and the error has concrete type *jvalue.Error.
func (p *Parser) Parse(text []byte) (Value, error) {
	ps := &parseState{s: jvalue.NewScanner(text), max: p.maxDepth()}

	if err := ps.s.Next(); err == io.EOF {
		return nil, ps.s.Errorf(jvalue.SyntaxError, "empty input")
	} else if err != nil {
		return nil, err
	}
	v, err := ps.parseValue(0)
	if err != nil {
		return nil, err
	}
	if err := ps.s.Next(); err == nil {
		return nil, ps.s.Errorf(jvalue.SyntaxError, "trailing characters after value: %v", ps.s.Token())
	} else if err != io.EOF {
		return nil, err
	}
	return v, nil
}

// ParseString parses text as a single JSON value. See Parse.
func (p *Parser) ParseString(text string) (Value, error) { return p.Parse([]byte(text)) }

// ParseFile reads the contents of the named file and parses it as a single
// JSON value. Errors reading the file are returned unchanged.
func (p *Parser) ParseFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(data)
}

// ParseStream is reserved for incremental parsing of r. It is not
// implemented, and always reports jvalue.ErrStreamUnsupported.
func (p *Parser) ParseStream(r io.Reader) (Value, error) {
	return nil, jvalue.ErrStreamUnsupported
}

// Parse parses text as a single JSON value using a default Parser.
func Parse(text []byte) (Value, error) { return new(Parser).Parse(text) }

// ParseString parses text as a single JSON value using a default Parser.
func ParseString(text string) (Value, error) { return new(Parser).Parse([]byte(text)) }

// parseState carries the scanner for a single call to Parse.  Nesting depth
// is passed explicitly through the recursive calls.
type parseState struct {
	s   *jvalue.Scanner
	max int
}

// parseValue consumes a single value of any type.
// Precondition: the current token is the first token of the value.
func (ps *parseState) parseValue(depth int) (Value, error) {
	switch tok := ps.s.Token(); tok {
	case jvalue.LBrace:
		return ps.parseObject(depth)
	case jvalue.LSquare:
		return ps.parseArray(depth)
	case jvalue.String:
		return String(ps.s.Unescape()), nil
	case jvalue.Integer:
		return Int(ps.s.Int64()), nil
	case jvalue.Number:
		return Float(ps.s.Float64()), nil
	case jvalue.True:
		return Bool(true), nil
	case jvalue.False:
		return Bool(false), nil
	case jvalue.Null:
		return Null, nil
	default:
		return nil, ps.s.Errorf(jvalue.SyntaxError, "expected a value, got %v", tok)
	}
}

// parseObject consumes zero or more key:value object members.
// Precondition: token == LBrace.
// Postcondition: token == RBrace.
func (ps *parseState) parseObject(depth int) (Value, error) {
	if err := ps.checkDepth(depth); err != nil {
		return nil, err
	}
	obj := Object{}
	var idx memberIndex
	for {
		tok, err := ps.advance("object")
		if err != nil {
			return nil, err
		}
		if len(obj) != 0 {
			// Check whether we have more members (",") or are done ("}").
			if tok == jvalue.RBrace {
				return obj, nil
			} else if tok != jvalue.Comma {
				return nil, ps.s.Errorf(jvalue.SyntaxError, "expected %v or %v, got %v", jvalue.Comma, jvalue.RBrace, tok)
			}
			if tok, err = ps.advance("object"); err != nil {
				return nil, err
			}
		} else if tok == jvalue.RBrace {
			return obj, nil // empty object
		}

		// Parse a single member: "key": value
		if tok != jvalue.String {
			return nil, ps.s.Errorf(jvalue.SyntaxError, "object key must be a string, got %v", tok)
		}
		key := ps.s.Unescape()
		if tok, err := ps.advance("object"); err != nil {
			return nil, err
		} else if tok != jvalue.Colon {
			return nil, ps.s.Errorf(jvalue.SyntaxError, "expected %v after object key, got %v", jvalue.Colon, tok)
		}
		if _, err := ps.advance("object"); err != nil {
			return nil, err
		}
		v, err := ps.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		obj = idx.set(obj, key, v)
	}
}

// parseArray consumes zero or more comma-separated array values.
// Precondition: token == LSquare.
// Postcondition: token == RSquare.
func (ps *parseState) parseArray(depth int) (Value, error) {
	if err := ps.checkDepth(depth); err != nil {
		return nil, err
	}
	arr := Array{}
	for {
		tok, err := ps.advance("array")
		if err != nil {
			return nil, err
		}
		if len(arr) != 0 {
			if tok == jvalue.RSquare {
				return arr, nil
			} else if tok != jvalue.Comma {
				return nil, ps.s.Errorf(jvalue.SyntaxError, "expected %v or %v, got %v", jvalue.Comma, jvalue.RSquare, tok)
			}
			if _, err := ps.advance("array"); err != nil {
				return nil, err
			}
		} else if tok == jvalue.RSquare {
			return arr, nil // empty array
		}

		v, err := ps.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func (ps *parseState) checkDepth(depth int) error {
	if depth >= ps.max {
		return ps.s.Errorf(jvalue.DepthError, "nesting depth exceeds maximum of %d", ps.max)
	}
	return nil
}

// advance reads the next token inside an object or array.  Running out of
// input there means the enclosing value is unterminated.
func (ps *parseState) advance(within string) (jvalue.Token, error) {
	if err := ps.s.Next(); err == io.EOF {
		return jvalue.Invalid, ps.s.Errorf(jvalue.SyntaxError, "unterminated %s", within)
	} else if err != nil {
		return jvalue.Invalid, err
	}
	return ps.s.Token(), nil
}

// indexThreshold is the object size at which duplicate key detection switches
// from a linear scan to a map.
const indexThreshold = 16

// A memberIndex locates existing members of an object under construction, so
// that a repeated key replaces the value of the earlier member.
type memberIndex map[string]int

func (mi *memberIndex) set(obj Object, key string, v Value) Object {
	if *mi == nil && len(obj) >= indexThreshold {
		*mi = make(memberIndex, 2*len(obj))
		for i, m := range obj {
			(*mi)[m.Key] = i
		}
	}
	if *mi != nil {
		if i, ok := (*mi)[key]; ok {
			obj[i].Value = v
			return obj
		}
		(*mi)[key] = len(obj)
	} else if m := obj.Find(key); m != nil {
		m.Value = v
		return obj
	}
	return append(obj, &Member{Key: key, Value: v})
}
