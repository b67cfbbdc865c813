// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jvalue implements a JSON scanner, and the error types shared by the
// parsers built on it.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON.  Construct a scanner
// from an input buffer and call its Next method to iterate over the tokens.
// Next advances to the next input token and returns nil, or reports an error:
//
//	s := jvalue.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// has concrete type *jvalue.Error and describes a lexical error in the input.
//
//	if s.Err() != io.EOF {
//	   log.Fatalf("Scanning failed: %v", s.Err())
//	}
//
// The scanner decodes the values of tokens as it scans them: string escapes
// are replaced (see Unescape), and numbers are converted (see Int64 and
// Float64). A number with neither a fraction nor an exponent is an Integer;
// any other number is a Number. An integer literal too large for int64 is
// reported as a Number holding the nearest float64.
//
// # Errors
//
// Errors from the scanner and from the parser in package ast have concrete
// type *Error, whose Kind is one of SyntaxError, EncodingError, or DepthError.
// Use errors.Is with ErrSyntax, ErrEncoding, or ErrDepth to test the kind:
//
//	if errors.Is(err, jvalue.ErrDepth) {
//	   log.Print("Input is nested too deeply")
//	}
//
// A \uXXXX escape naming the high half of a UTF-16 surrogate pair, followed
// immediately by an escape naming the low half, decodes to a single code
// point. An unpaired surrogate decodes to the Unicode replacement rune.
package jvalue
