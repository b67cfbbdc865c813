// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jvalue

import (
	"errors"
	"io"

	"github.com/creachadair/jvalue/internal/escape"
	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(AppendQuote(nil, src)) }

// AppendQuote appends the JSON string encoding of src to buf and returns the
// extended buffer.
func AppendQuote(buf []byte, src string) []byte { return escape.AppendQuote(buf, mem.S(src)) }

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
// Unquote reports an error if src is not exactly one valid JSON string.
func Unquote(src string) (string, error) {
	s := NewScanner([]byte(src))
	if err := s.Next(); err == io.EOF {
		return "", errors.New("missing quotations")
	} else if err != nil {
		return "", err
	} else if s.Token() != String {
		return "", s.Errorf(SyntaxError, "expected string, got %v", s.Token())
	}
	out := s.Unescape()
	if err := s.Next(); err != io.EOF {
		if err != nil {
			return "", err
		}
		return "", s.Errorf(SyntaxError, "trailing characters after string")
	}
	return out, nil
}
