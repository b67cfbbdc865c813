// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program jvalue parses, validates, and benchmarks JSON documents.
//
// Usage:
//
//	jvalue parse [--max-depth N] [--path author.name] [--sort] FILE
//	jvalue validate --schema SCHEMA FILE
//	jvalue bench [--iterations N] FILE
//
// A FILE of "-" reads standard input. Settings not given as flags may be
// read from a --config file in YAML or HuJSON.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/creachadair/jvalue"
	"github.com/creachadair/jvalue/ast"
	"github.com/creachadair/jvalue/ast/cursor"
	"github.com/creachadair/jvalue/bench"
	"github.com/creachadair/jvalue/internal/config"
	"github.com/creachadair/jvalue/schema"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type cli struct {
	Config string `help:"Path of a YAML or HuJSON config file." type:"existingfile"`
	Debug  bool   `help:"Enable debug logging." short:"d"`

	Parse    parseCmd    `cmd:"" help:"Parse a document and print it as compact JSON."`
	Validate validateCmd `cmd:"" help:"Check a document against a schema."`
	Bench    benchCmd    `cmd:"" help:"Compare parse times with other decoders."`
}

// env carries the settings shared by all commands.
type env struct {
	cfg    *config.Config
	log    log.Logger
	stdin  io.Reader
	stdout io.Writer
}

func (e *env) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(path)
}

func (e *env) parser(flagDepth int) *ast.Parser {
	depth := e.cfg.MaxDepth
	if flagDepth > 0 {
		depth = flagDepth
	}
	return &ast.Parser{MaxDepth: depth}
}

type parseCmd struct {
	MaxDepth int    `help:"Maximum nesting depth (default 1000)." name:"max-depth"`
	Path     string `help:"Dotted path of a value to print, for example author.name or features.0."`
	Sort     bool   `help:"Sort object keys in the output."`
	Indent   bool   `help:"Indent the output."`
	File     string `arg:"" help:"Input file, or - for standard input."`
}

func (c *parseCmd) Run(e *env) error {
	data, err := e.readInput(c.File)
	if err != nil {
		return err
	}
	p := e.parser(c.MaxDepth)
	level.Debug(e.log).Log("msg", "parsing input", "file", c.File, "bytes", len(data), "maxDepth", p.MaxDepth)

	v, err := p.Parse(data)
	if err != nil {
		logParseError(e.log, c.File, err)
		return fmt.Errorf("parse %s: %w", c.File, err)
	}
	if c.Path != "" {
		cur := cursor.New(v).Down(cursor.ParsePath(c.Path)...)
		if err := cur.Err(); err != nil {
			return fmt.Errorf("path %q: %w", c.Path, err)
		}
		v = cur.Value()
	}
	if c.Sort {
		v = sortKeys(v)
	}
	out := []byte(v.JSON())
	if c.Indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return err
		}
		out = buf.Bytes()
	}
	_, err = fmt.Fprintf(e.stdout, "%s\n", out)
	return err
}

type validateCmd struct {
	Schema   string `help:"Schema file (JSON, comments allowed)." required:"" type:"existingfile"`
	MaxDepth int    `help:"Maximum nesting depth (default 1000)." name:"max-depth"`
	File     string `arg:"" help:"Input file, or - for standard input."`
}

func (c *validateCmd) Run(e *env) error {
	s, err := schema.Load(c.Schema)
	if err != nil {
		return err
	}
	data, err := e.readInput(c.File)
	if err != nil {
		return err
	}
	v, err := e.parser(c.MaxDepth).Parse(data)
	if err != nil {
		logParseError(e.log, c.File, err)
		return fmt.Errorf("parse %s: %w", c.File, err)
	}
	if err := s.Check(v); err != nil {
		level.Info(e.log).Log("msg", "validation failed", "file", c.File, "err", err)
		return fmt.Errorf("validate %s: %w", c.File, err)
	}
	level.Debug(e.log).Log("msg", "validation succeeded", "file", c.File, "schema", c.Schema)
	_, err = fmt.Fprintln(e.stdout, "valid")
	return err
}

type benchCmd struct {
	Iterations int    `help:"Number of iterations per decoder." short:"n"`
	File       string `arg:"" help:"Input file, or - for standard input."`
}

func (c *benchCmd) Run(e *env) error {
	data, err := e.readInput(c.File)
	if err != nil {
		return err
	}
	n := e.cfg.Bench.Iterations
	if c.Iterations > 0 {
		n = c.Iterations
	}
	level.Debug(e.log).Log("msg", "starting benchmark", "file", c.File, "bytes", len(data), "iterations", n)
	res, err := bench.Compare(data, n)
	if err != nil {
		return fmt.Errorf("bench %s: %w", c.File, err)
	}
	level.Info(e.log).Log("msg", "benchmark complete", "iterations", res.Iterations,
		"custom", res.Custom, "native", res.Native, "fastjson", res.FastJSON)
	_, err = fmt.Fprintf(e.stdout, "custom_parser\t%v\nnative_parser\t%v\nfastjson\t%v\nratio\t%.3f\n",
		res.Custom, res.Native, res.FastJSON, res.Ratio())
	return err
}

// logParseError logs the location details of a parse error.
func logParseError(logger log.Logger, file string, err error) {
	var jerr *jvalue.Error
	if !errors.As(err, &jerr) {
		return
	}
	level.Debug(logger).Log("msg", "parse failed", "file", file, "kind", jerr.Kind,
		"offset", jerr.Offset, "line", jerr.Location.Line, "column", jerr.Location.Column,
		"text", jerr.Text)
}

func sortKeys(v ast.Value) ast.Value {
	switch t := v.(type) {
	case ast.Object:
		out := make(ast.Object, len(t))
		for i, m := range t.Sorted() {
			out[i] = &ast.Member{Key: m.Key, Value: sortKeys(m.Value)}
		}
		return out
	case ast.Array:
		out := make(ast.Array, len(t))
		for i, elt := range t {
			out[i] = sortKeys(elt)
		}
		return out
	default:
		return v
	}
}

func newLogger(w io.Writer, debug bool, name string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	opt := level.AllowInfo()
	switch {
	case debug:
		opt = level.AllowDebug()
	case name != "":
		opt = level.Allow(level.ParseDefault(name, level.InfoValue()))
	}
	return log.With(level.NewFilter(logger, opt), "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

// run executes the command line given by args, and returns an exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var c cli
	exited := false
	parser, err := kong.New(&c,
		kong.Name("jvalue"),
		kong.Description("Parse, validate, and benchmark JSON documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(stderr, "jvalue: %v\n", err)
		return 2
	}
	ctx, err := parser.Parse(args)
	if exited {
		return 0 // --help
	} else if err != nil {
		fmt.Fprintf(stderr, "jvalue: %v\n", err)
		return 2
	}

	cfg := new(config.Config)
	if c.Config != "" {
		cfg, err = config.Load(c.Config)
		if err != nil {
			fmt.Fprintf(stderr, "jvalue: %v\n", err)
			return 2
		}
	}
	logger := newLogger(stderr, c.Debug, cfg.LogLevel)
	level.Debug(logger).Log("msg", "starting", "command", ctx.Command(), "config", c.Config)

	if err := ctx.Run(&env{cfg: cfg, log: logger, stdin: stdin, stdout: stdout}); err != nil {
		level.Error(logger).Log("msg", "command failed", "command", ctx.Command(), "err", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
