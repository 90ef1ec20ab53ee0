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

// Command build compiles an objcgen plugin to a WebAssembly reactor with
// TinyGo.
//
//	go run ./internal/build --output objcgen-plugin-go.wasm ./cmd/objcgen-plugin-go
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	flag "github.com/spf13/pflag"
)

var (
	output = flag.String("output", "", "Path of the .wasm file to write")
	tinygo = flag.String("tinygo", "tinygo", "TinyGo executable")
	target = flag.String("target", "wasip1", "TinyGo target")
	chdir  = flag.String("chdir", "", "Directory to build in")
)

func main() {
	flag.Parse()
	if *output == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: build --output FILE.wasm PACKAGE")
		os.Exit(2)
	}
	pwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	outPath := *output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(pwd, outPath)
	}

	tinygoArgs := []string{
		"build",
		"-target=" + *target,
		"-buildmode=c-shared",
		"-no-debug",
		"-o=" + outPath,
	}
	tinygoArgs = append(tinygoArgs, flag.Args()...)

	cmd := exec.Command(*tinygo, tinygoArgs...)
	if *chdir != "" {
		cmd.Dir = filepath.Join(pwd, *chdir)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
