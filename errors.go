// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jvalue

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors reported by the scanner and parser.
type ErrorKind byte

// Constants defining the valid ErrorKind values.
const (
	SyntaxError   ErrorKind = iota + 1 // grammar violation
	EncodingError                      // invalid escape or encoding in a string
	DepthError                         // nesting depth limit exceeded
)

var kindStr = [...]string{
	SyntaxError:   "syntax error",
	EncodingError: "encoding error",
	DepthError:    "depth error",
}

func (k ErrorKind) String() string {
	if k == 0 || int(k) >= len(kindStr) {
		return "unknown error"
	}
	return kindStr[k]
}

// Sentinel errors for use with errors.Is. Any *Error matches the sentinel
// with the same Kind.
var (
	ErrSyntax   = &Error{Kind: SyntaxError, Message: "invalid JSON syntax"}
	ErrEncoding = &Error{Kind: EncodingError, Message: "invalid string encoding"}
	ErrDepth    = &Error{Kind: DepthError, Message: "nesting too deep"}
)

// ErrStreamUnsupported is reported by parsers that do not implement
// incremental parsing.
var ErrStreamUnsupported = errors.New("streaming parse is not supported")

// Error is the concrete type of errors reported by the Scanner and by the
// parsers built on it. No partial result accompanies an Error.
type Error struct {
	Kind     ErrorKind
	Offset   int     // byte offset in the input where the error was detected
	Location LineCol // line and column corresponding to Offset
	Char     rune    // the offending character, or 0 if not applicable
	Text     string  // the offending input text, if any
	Message  string
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%v at %s (offset %d): %s", e.Kind, e.Location, e.Offset, e.Message)
}

// Is reports whether target is an *Error of the same kind as e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(src []byte, kind ErrorKind, pos int, msg string) *Error {
	return &Error{
		Kind:     kind,
		Offset:   pos,
		Location: lineColAt(src, pos),
		Message:  msg,
	}
}
