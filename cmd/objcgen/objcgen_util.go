// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/BrainiumLLC/objc-util/compiler"
	"github.com/BrainiumLLC/objc-util/syntax"
)

func splitPath(path string) []string {
	var out []string
	for {
		dir, file := filepath.Split(path)
		if dir == "" {
			out = append(out, file)
			slices.Reverse(out)
			return out
		}
		out = append(out, file)
		path = dir[:len(dir)-1]
	}
}

// sourcePath is the path recorded in generated code. Absolute paths are
// reduced to their base name, so output does not depend on the checkout
// location.
func sourcePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Base(path)
	}
	return strings.Join(splitPath(filepath.Clean(path)), "/")
}

type diagnostic interface {
	Code() uint32
	Message() string
	Span() syntax.Span
}

type report struct {
	offset uint32
	text   string
}

type compiled struct {
	path    string
	src     []byte
	set     *compiler.DeclarationSet
	reports []report
}

func (c *compiled) failed() bool {
	return c.set == nil
}

func (c *compiled) report(kind string, diag diagnostic) {
	span := diag.Span()
	pos := syntax.LineCol(c.src, span.Start())
	c.reports = append(c.reports, report{
		offset: span.Start(),
		text: fmt.Sprintf(
			"%s:%d:%d: %s%d: %s",
			c.path, pos.Line, pos.Column, kind, diag.Code(), diag.Message(),
		),
	})
}

// compileFile parses and compiles one declaration file. Diagnostics are
// collected in the result; the returned error is for I/O failures only.
func compileFile(path string) (*compiled, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := &compiled{path: path, src: src}

	parsed, err := syntax.Parse(src)
	if err != nil {
		var syntaxErr *syntax.Error
		if !errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out.report("E", syntaxErr)
		return out, nil
	}

	result := compiler.Compile(parsed, compiler.WithSourcePath(sourcePath(path)))
	for _, warn := range result.Warnings {
		out.report("W", warn)
	}
	for _, err := range result.Errors {
		out.report("E", err)
	}
	slices.SortStableFunc(out.reports, func(a, b report) int {
		return int(a.offset) - int(b.offset)
	})
	out.set = result.DeclarationSet()
	return out, nil
}

// compileAll compiles paths concurrently. Results are in argument order.
func compileAll(ctx context.Context, env *cmdEnv, paths []string) ([]*compiled, error) {
	results := make([]*compiled, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(env.jobs())
	for ii, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			env.logger.Debug("Compiling", "path", path)
			result, err := compileFile(path)
			if err != nil {
				return err
			}
			results[ii] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// printReports writes every diagnostic to stderr, and reports whether any
// file failed to compile.
func printReports(env *cmdEnv, results []*compiled) bool {
	failed := false
	for _, result := range results {
		for _, r := range result.reports {
			fmt.Fprintln(env.stderr, r.text)
		}
		if result.failed() {
			failed = true
		}
	}
	return failed
}
