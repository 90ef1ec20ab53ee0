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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/BrainiumLLC/objc-util/codegen"
)

type cmdGenerate struct{}

func (*cmdGenerate) help() *commandHelp {
	return &commandHelp{
		usage:   "generate [options] FILE...",
		summary: "Generate Go bindings from declaration files",
	}
}

func (*cmdGenerate) flags(flags *pflag.FlagSet) {
	flags.StringP("output", "o", "", "Output directory (default: the directory of each input)")
	flags.String("package", "", "Package name of generated files (default: derived from the input name)")
	flags.String("strategy", "cached", "How selectors are resolved: 'cached' or 'runtime'")
	flags.String("mode", "tags", "Call verification: 'tags', 'checked', or 'unchecked'")
}

type pendingWrite struct {
	path    string
	content []byte
}

func (cmd *cmdGenerate) run(ctx context.Context, env *cmdEnv, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(env.stderr, "No input files (usage: objcgen generate [options] FILE...)")
		return 1
	}
	config := env.config

	strategy, err := codegen.ParseStrategy(config.GetString("strategy"))
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	mode, err := codegen.ParseMode(config.GetString("mode"))
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	opts := []codegen.GenerateOption{
		codegen.WithStrategy(strategy),
		codegen.WithMode(mode),
	}
	if pkg := config.GetString("package"); pkg != "" {
		opts = append(opts, codegen.WithPackageName(pkg))
	}

	results, err := compileAll(ctx, env, argv)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	if printReports(env, results) {
		return 1
	}

	var writes []pendingWrite
	generatedBy := make(map[string]string)
	for _, result := range results {
		outDir := config.GetString("output")
		if outDir == "" {
			outDir = filepath.Dir(result.path)
		}
		output, err := codegen.Generate(result.set, opts...)
		if err != nil {
			fmt.Fprintf(env.stderr, "%s: %v\n", result.path, err)
			return 1
		}
		for _, file := range output.Files {
			outPath := filepath.Join(outDir, file.Name)
			if other, ok := generatedBy[outPath]; ok {
				fmt.Fprintf(env.stderr, "Output %s is generated by both %s and %s\n", outPath, other, result.path)
				return 1
			}
			generatedBy[outPath] = result.path
			writes = append(writes, pendingWrite{outPath, file.Content})
		}
	}

	for _, write := range writes {
		if err := os.MkdirAll(filepath.Dir(write.path), 0o755); err != nil {
			fmt.Fprintln(env.stderr, err)
			return 1
		}
		if err := os.WriteFile(write.path, write.content, 0o644); err != nil {
			fmt.Fprintln(env.stderr, err)
			return 1
		}
		env.logger.Debug("Wrote", "path", write.path)
	}
	env.logger.Info(
		"Generated bindings",
		"inputs", len(results),
		"files", len(writes),
		"strategy", config.GetString("strategy"),
		"mode", mode,
	)
	return 0
}
