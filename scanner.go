// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jvalue

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/jvalue/internal/escape"
	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// eof is the current character past the end of the input.
const eof = -1

// A Scanner reads lexical tokens from an input buffer.  Each call to Next
// advances the scanner to the next token, or reports an error.
//
// The Scanner does not copy its input; the caller must not modify the buffer
// while the scanner is in use.
type Scanner struct {
	src []byte
	pos int // offset of the current character

	tok        Token
	start, end int    // span of the current token
	str        []byte // decoded contents of a String token
	ival       int64  // value of an Integer token
	fval       float64
	err        error
}

// NewScanner constructs a new lexical scanner that consumes input from src.
func NewScanner(src []byte) *Scanner { return &Scanner{src: src} }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF. Any other error has concrete
// type *Error.
func (s *Scanner) Next() error {
	s.tok = Invalid
	s.err = nil
	s.str = s.str[:0]

	s.skipWhitespace()
	s.start, s.end = s.pos, s.pos

	ch := s.cur()
	switch {
	case ch == eof:
		return s.setErr(io.EOF)
	case ch == '"':
		return s.scanString()
	case isNumStart(ch):
		return s.scanNumber()
	case isNameRune(ch):
		return s.scanKeyword()
	}

	// Handle punctuation.
	if t, ok := selfDelim(ch); ok {
		s.advance()
		s.end = s.pos
		s.tok = t
		return nil
	}

	r, _ := utf8.DecodeRune(s.src[s.pos:])
	e := s.failf(SyntaxError, s.pos, "invalid character %q", r)
	e.Char = r
	return e
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token.  The return value is
// a view of the scanner's input and must not be modified.
func (s *Scanner) Text() []byte { return s.src[s.start:s.end] }

// Unescape returns the decoded contents of the current String token, with the
// enclosing quotes removed and escape sequences replaced. For other tokens it
// returns the empty string.
func (s *Scanner) Unescape() string {
	if s.tok != String {
		return ""
	}
	return string(s.str)
}

// Int64 returns the value of the current Integer token, or 0 for any other
// token type.
func (s *Scanner) Int64() int64 {
	if s.tok != Integer {
		return 0
	}
	return s.ival
}

// Float64 returns the value of the current Integer or Number token, or 0 for
// any other token type.
func (s *Scanner) Float64() float64 {
	switch s.tok {
	case Integer:
		return float64(s.ival)
	case Number:
		return s.fval
	}
	return 0
}

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.start, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: lineColAt(s.src, s.start),
		Last:  lineColAt(s.src, s.end),
	}
}

// Errorf returns an error of the given kind positioned at the start of the
// current token. The text of the current token is recorded in the error.
// Parsers built on a Scanner use this to report grammar errors.
func (s *Scanner) Errorf(kind ErrorKind, msg string, args ...any) error {
	e := newError(s.src, kind, s.start, fmt.Sprintf(msg, args...))
	if text := s.Text(); len(text) != 0 {
		e.Text = string(text)
		if len(text) == 1 {
			e.Char = rune(text[0])
		}
	}
	return e
}

// cur returns the character at the current offset, or eof.  Only ASCII
// characters are significant outside strings, so a byte suffices.
func (s *Scanner) cur() rune {
	if s.pos >= len(s.src) {
		return eof
	}
	return rune(s.src[s.pos])
}

func (s *Scanner) advance() { s.pos++ }

func (s *Scanner) skipWhitespace() {
	for isSpace(s.cur()) {
		s.advance()
	}
}

func (s *Scanner) scanString() error {
	s.advance() // opening quote
	run := s.pos
	for {
		ch := s.cur()
		switch {
		case ch == eof:
			return s.failf(SyntaxError, s.pos, "unterminated string starting at offset %d", s.start)

		case ch == '"':
			s.str = append(s.str, s.src[run:s.pos]...)
			s.advance()
			s.end = s.pos
			s.tok = String
			return nil

		case ch == '\\':
			s.str = append(s.str, s.src[run:s.pos]...)
			if err := s.scanEscape(); err != nil {
				return err
			}
			run = s.pos

		case ch < ' ':
			e := s.failf(SyntaxError, s.pos, "unescaped control %q in string", ch)
			e.Char = ch
			return e

		case ch < utf8.RuneSelf:
			s.advance()

		default:
			r, n := utf8.DecodeRune(s.src[s.pos:])
			if r == utf8.RuneError && n == 1 {
				e := s.failf(EncodingError, s.pos, "invalid UTF-8 byte %#x in string", ch)
				e.Text = string(s.src[s.pos : s.pos+1])
				return e
			}
			s.pos += n
		}
	}
}

// scanEscape decodes the escape sequence at the current offset into s.str.
// Precondition: the current character is '\\'.
func (s *Scanner) scanEscape() error {
	at := s.pos
	s.advance()
	ch := s.cur()
	if ch == eof {
		return s.failf(SyntaxError, s.pos, "unterminated string starting at offset %d", s.start)
	}
	s.advance()
	if b, ok := escape.Single(byte(ch)); ok {
		s.str = append(s.str, b)
		return nil
	} else if ch != 'u' {
		r, n := utf8.DecodeRune(s.src[at+1:])
		s.pos = at + 1 + n
		e := s.failf(EncodingError, at, "invalid escape sequence %q", s.src[at:s.pos])
		e.Char, e.Text = r, string(s.src[at:s.pos])
		return e
	}

	r, err := s.readHex4(at)
	if err != nil {
		return err
	}
	if escape.IsHighSurrogate(r) && s.hasPrefix(`\u`) {
		// Look ahead for the low half of a surrogate pair. If the next escape
		// is not a low surrogate, leave it for the next iteration.
		save := s.pos
		s.pos += 2
		lo, err := s.readHex4(save)
		if err != nil {
			return err
		} else if escape.IsLowSurrogate(lo) {
			r = escape.Pair(r, lo)
		} else {
			s.pos = save
		}
	}
	if escape.IsHighSurrogate(r) || escape.IsLowSurrogate(r) {
		r = utf8.RuneError // unpaired surrogate
	}
	s.str = utf8.AppendRune(s.str, r)
	return nil
}

// readHex4 reads exactly 4 hexadecimal digits following a \u escape that
// begins at offset at.
func (s *Scanner) readHex4(at int) (rune, error) {
	tail := s.src[s.pos:]
	if r, ok := escape.Hex4(tail); ok {
		s.pos += 4
		return r, nil
	}

	// Distinguish a truncated string from bad digits.
	i := 0
	for i < len(tail) && i < 4 && tail[i] != '"' {
		i++
	}
	if i < 4 && i == len(tail) {
		return 0, s.failf(SyntaxError, len(s.src), "unterminated string starting at offset %d", s.start)
	}
	seq := string(s.src[at : s.pos+i])
	e := s.failf(EncodingError, at, "invalid Unicode escape %q", seq)
	e.Text = seq
	return 0, e
}

func (s *Scanner) hasPrefix(p string) bool {
	return mem.HasPrefix(mem.B(s.src[s.pos:]), mem.S(p))
}

func (s *Scanner) scanNumber() error {
	if s.cur() == '-' {
		s.advance()
	}

	// Integer part: a lone zero, or a nonzero digit followed by more digits.
	switch ch := s.cur(); {
	case ch == '0':
		s.advance()
		if isDigit(s.cur()) {
			return s.failNumber("leading zero in number")
		}
	case isDigit(ch):
		s.skipDigits()
	default:
		return s.failExpect("digit after minus sign")
	}

	// If a decimal point follows, consume a fractional part.
	var isFloat bool
	if s.cur() == '.' {
		s.advance()
		if !isDigit(s.cur()) {
			return s.failExpect("digit after decimal point")
		}
		s.skipDigits()
		isFloat = true
	}

	// If an exponent follows, consume it.
	if ch := s.cur(); ch == 'e' || ch == 'E' {
		s.advance()
		if ch := s.cur(); ch == '+' || ch == '-' {
			s.advance()
		}
		if !isDigit(s.cur()) {
			return s.failExpect("digit in exponent")
		}
		s.skipDigits()
		isFloat = true
	}

	s.end = s.pos
	text := string(s.Text())
	if !isFloat {
		v, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			s.ival = v
			s.tok = Integer
			return nil
		} else if !errors.Is(err, strconv.ErrRange) {
			return s.failNumber("malformed number")
		}
		// The literal is outside the range of int64; report the nearest
		// floating-point value instead.
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return s.failNumber("malformed number")
	}
	s.fval = v // ±Inf if out of range
	s.tok = Number
	return nil
}

func (s *Scanner) skipDigits() {
	for isDigit(s.cur()) {
		s.advance()
	}
}

// failExpect reports a missing construct at the current offset.
func (s *Scanner) failExpect(want string) error {
	ch := s.cur()
	var e *Error
	if ch == eof {
		e = s.failf(SyntaxError, s.pos, "expected %s, got end of input", want)
	} else {
		r, _ := utf8.DecodeRune(s.src[s.pos:])
		e = s.failf(SyntaxError, s.pos, "expected %s, got %q", want, r)
		e.Char = r
	}
	e.Text = string(s.src[s.start:s.pos])
	return e
}

// failNumber reports a malformed numeric literal starting at the current
// token, including the offending text.
func (s *Scanner) failNumber(msg string) error {
	for isDigit(s.cur()) {
		s.advance()
	}
	text := string(s.src[s.start:s.pos])
	e := s.failf(SyntaxError, s.start, "%s: %q", msg, text)
	e.Text = text
	return e
}

func (s *Scanner) scanKeyword() error {
	for isNameRune(s.cur()) {
		s.advance()
	}
	s.end = s.pos

	word := mem.B(s.Text())
	switch {
	case word.Equal(mem.S("true")):
		s.tok = True
	case word.Equal(mem.S("false")):
		s.tok = False
	case word.Equal(mem.S("null")):
		s.tok = Null
	default:
		e := s.failf(SyntaxError, s.start, "unknown keyword %q", word.StringCopy())
		e.Text = word.StringCopy()
		return e
	}
	return nil
}

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) failf(kind ErrorKind, pos int, msg string, args ...any) *Error {
	e := newError(s.src, kind, pos, fmt.Sprintf(msg, args...))
	s.err = e
	return e
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch rune) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch rune) bool    { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Token, bool) {
	if ch < 0 {
		return Invalid, false
	}
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
