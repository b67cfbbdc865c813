// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package bench compares the running time of the ast parser with other
// JSON decoders over the same input.
//
// The results are observational only: they are wall-clock times for a fixed
// number of iterations and depend on the machine and its load.
package bench

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/creachadair/jvalue/ast"
	"github.com/valyala/fastjson"
)

// DefaultIterations is the number of iterations used by Compare when the
// caller does not specify a positive value.
const DefaultIterations = 1000

// A Result reports the total time spent by each decoder.
type Result struct {
	Iterations int           `json:"iterations"`
	Custom     time.Duration `json:"custom"`   // ast.Parse
	Native     time.Duration `json:"native"`   // encoding/json.Unmarshal into any
	FastJSON   time.Duration `json:"fastjson"` // fastjson.Parser.ParseBytes
}

// Ratio reports the ratio of Custom to Native time, or 0 if Native is 0.
func (r Result) Ratio() float64 {
	if r.Native == 0 {
		return 0
	}
	return float64(r.Custom) / float64(r.Native)
}

func (r Result) String() string {
	return fmt.Sprintf("%d iterations: custom %v, native %v, fastjson %v (ratio %.2f)",
		r.Iterations, r.Custom, r.Native, r.FastJSON, r.Ratio())
}

// Compare parses input with each decoder the given number of times, and
// reports the elapsed time for each. If iterations ≤ 0, DefaultIterations
// is used. The input must be valid JSON; Compare reports an error without
// timing anything if any of the decoders rejects it.
func Compare(input []byte, iterations int) (Result, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	var fp fastjson.Parser
	if err := check(input, &fp); err != nil {
		return Result{}, err
	}

	res := Result{Iterations: iterations}
	res.Custom = timeLoop(iterations, func() { ast.Parse(input) })
	res.Native = timeLoop(iterations, func() {
		var v any
		json.Unmarshal(input, &v)
	})
	res.FastJSON = timeLoop(iterations, func() { fp.ParseBytes(input) })
	return res, nil
}

func check(input []byte, fp *fastjson.Parser) error {
	if _, err := ast.Parse(input); err != nil {
		return fmt.Errorf("custom parser: %w", err)
	}
	var v any
	if err := json.Unmarshal(input, &v); err != nil {
		return fmt.Errorf("native parser: %w", err)
	}
	if _, err := fp.ParseBytes(input); err != nil {
		return fmt.Errorf("fastjson parser: %w", err)
	}
	return nil
}

func timeLoop(n int, f func()) time.Duration {
	start := time.Now()
	for range n {
		f()
	}
	return time.Since(start)
}
