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

// Command objcgen compiles Objective-C binding declarations into Go.
//
// Usage:
//
//	objcgen check FILE...
//	objcgen generate [-o DIR] [--package NAME] [--strategy cached|runtime] [--mode tags|checked|unchecked] FILE...
//	objcgen plugin [--plugin-path DIR] [--language LANG] -o DIR FILE
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, env *cmdEnv, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := &cmdEnv{
		config: viper.New(),
		stdout: stdout,
		stderr: stderr,
	}
	exitCode := 0

	rootCmd := &cobra.Command{
		Use:           "objcgen [options] COMMAND",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(stderr, rootCmd.UsageString())
		exitCode = 1
		return nil
	}
	persistent := rootCmd.PersistentFlags()
	persistent.String("config", "", "Config file (default: objcgen.{yaml,toml,json} in the working directory)")
	persistent.BoolP("verbose", "v", false, "Log debug messages")
	persistent.IntP("jobs", "j", 0, "Number of files to compile concurrently (default: GOMAXPROCS)")

	commands := []command{
		&cmdCheck{},
		&cmdGenerate{},
		&cmdPlugin{},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(cobraCmd *cobra.Command, argv []string) error {
				if err := env.load(cobraCmd.Flags()); err != nil {
					fmt.Fprintln(stderr, err)
					exitCode = 1
					return nil
				}
				exitCode = cmd.run(ctx, env, argv)
				return nil
			},
		}
		cmd.flags(cobraCmd.Flags())
		rootCmd.AddCommand(cobraCmd)
	}

	if _, err := rootCmd.ExecuteC(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}
