// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a tree of JSON values, and a parser that constructs
// value trees from JSON source.
package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/jvalue"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON returns the compact JSON encoding of the value.
	JSON() string

	// String returns a human-readable rendering of the value. For strings
	// this is the unquoted text.
	String() string
}

// An Object is a collection of key-value members in input order.
type Object []*Member

// Find returns the member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Len returns the number of members in o.
func (o Object) Len() int { return len(o) }

func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o)) }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// Field constructs an object member with the given key and value.
// The value is converted as by ToValue.
func Field(key string, value any) *Member { return &Member{Key: key, Value: ToValue(value)} }

func (m *Member) JSON() string { return jvalue.Quote(m.Key) + ":" + m.Value.JSON() }

func (m *Member) String() string { return fmt.Sprintf("Member(%q)", m.Key) }

// An Array is a sequence of values.
type Array []Value

// ArrayOf constructs an array of the given values, converted as by ToValue.
func ArrayOf(vs ...any) Array {
	out := make(Array, len(vs))
	for i, v := range vs {
		out[i] = ToValue(v)
	}
	return out
}

// Len returns the number of elements in a.
func (a Array) Len() int { return len(a) }

func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// An Int is an integer value: a number written with no fraction or exponent.
type Int int64

func (z Int) JSON() string   { return strconv.FormatInt(int64(z), 10) }
func (z Int) String() string { return z.JSON() }

// A Float is a floating-point value: a number written with a fraction or an
// exponent, or an integer literal outside the range of Int.
type Float float64

// JSON renders f so that parsing the result yields a Float again.
// Infinities and NaN have no JSON representation and render as null.
func (f Float) JSON() string {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "null"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (b Bool) JSON() string   { return strconv.FormatBool(bool(b)) }
func (b Bool) String() string { return b.JSON() }

// A String is a string value.
type String string

func (s String) JSON() string   { return jvalue.Quote(string(s)) }
func (s String) String() string { return string(s) }

// Len returns the length of s in bytes.
func (s String) Len() int { return len(s) }

// NullType is the type of the null constant.
type NullType struct{}

// Null represents the null constant.
var Null NullType

func (NullType) JSON() string   { return "null" }
func (NullType) String() string { return "null" }
