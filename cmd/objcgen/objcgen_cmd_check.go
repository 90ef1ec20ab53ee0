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

	"github.com/spf13/pflag"
)

type cmdCheck struct{}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check FILE...",
		summary: "Report diagnostics for declaration files",
	}
}

func (*cmdCheck) flags(flags *pflag.FlagSet) {}

func (cmd *cmdCheck) run(ctx context.Context, env *cmdEnv, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(env.stderr, "No input files (usage: objcgen check FILE...)")
		return 1
	}
	results, err := compileAll(ctx, env, argv)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	if printReports(env, results) {
		return 1
	}
	for _, result := range results {
		env.logger.Debug(
			"Checked",
			"path", result.path,
			"bindings", len(result.set.Bindings()),
			"classes", len(result.set.Classes()),
		)
	}
	return 0
}
