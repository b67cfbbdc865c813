// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ToValue converts a Go value into a JSON value tree.
//
// Values of type nil, bool, string, and the built-in integer and floating-point
// types are converted to the corresponding JSON scalars. A []any becomes an
// Array, and a map[string]any becomes an Object with members sorted by key.
// A Value is returned unchanged. ToValue panics for any other type.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(t)
	case int8:
		return Int(t)
	case int16:
		return Int(t)
	case int32:
		return Int(t)
	case int64:
		return Int(t)
	case uint8:
		return Int(t)
	case uint16:
		return Int(t)
	case uint32:
		return Int(t)
	case float32:
		return Float(t)
	case float64:
		return Float(t)
	case []any:
		return ArrayOf(t...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(Object, len(keys))
		for i, k := range keys {
			obj[i] = Field(k, t[k])
		}
		return obj
	default:
		panic(fmt.Sprintf("cannot convert %T to a JSON value", v))
	}
}

// Native converts v into the plain Go representation produced by decoding
// JSON into an any with encoding/json: objects become map[string]any, arrays
// []any, numbers float64, and null nil. A *Member converts to its value.
//
// Because numbers become float64, integers beyond 2^53 may lose precision.
func Native(v Value) any {
	switch t := v.(type) {
	case Object:
		out := make(map[string]any, len(t))
		for _, m := range t {
			out[m.Key] = Native(m.Value)
		}
		return out
	case *Member:
		return Native(t.Value)
	case Array:
		out := make([]any, len(t))
		for i, elt := range t {
			out[i] = Native(elt)
		}
		return out
	case String:
		return string(t)
	case Int:
		return float64(t)
	case Float:
		return float64(t)
	case Bool:
		return bool(t)
	case NullType, nil:
		return nil
	default:
		panic(fmt.Sprintf("unknown value type %T", v))
	}
}

// Keys returns the keys of the members of o, in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Sorted returns a copy of o with its members ordered by key.
// The members themselves are shared.
func (o Object) Sorted() Object {
	out := slices.Clone(o)
	slices.SortStableFunc(out, func(a, b *Member) int { return strings.Compare(a.Key, b.Key) })
	return out
}
