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

// Command objcgen-plugin-go is the Go emitter packaged as an objcgen
// plugin. Built for WebAssembly it serves "objcgen plugin"; built
// natively it reads a JSON request on stdin and writes the JSON response
// to stdout.
//
//go:generate go run ../../internal/build --output objcgen-plugin-go.wasm .
package main

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/BrainiumLLC/objc-util/codegen"
	"github.com/BrainiumLLC/objc-util/compiler"
	"github.com/BrainiumLLC/objc-util/syntax"
)

func main() {
	var request codegen.PluginRequest
	if err := json.NewDecoder(os.Stdin).Decode(&request); err != nil {
		log.Fatalf("Decode(PluginRequest): %v", err)
	}
	response := generate(&request)
	if err := json.NewEncoder(os.Stdout).Encode(response); err != nil {
		log.Fatal(err)
	}
	if response.Error != "" {
		os.Exit(1)
	}
}

// generate recompiles the request source and renders it with the request
// options.
func generate(request *codegen.PluginRequest) *codegen.PluginResponse {
	if request.Language != "" && request.Language != "go" {
		return &codegen.PluginResponse{Error: "unsupported language " + request.Language}
	}
	src := []byte(request.Source.Text)
	parsed, err := syntax.Parse(src)
	if err != nil {
		return &codegen.PluginResponse{Error: describeError(request.Source.Path, src, err)}
	}

	result := compiler.Compile(parsed, compiler.WithSourcePath(request.Source.Path))
	if len(result.Errors) > 0 {
		var errs []error
		for _, err := range result.Errors {
			errs = append(errs, err)
		}
		return &codegen.PluginResponse{Error: describeError(request.Source.Path, src, errors.Join(errs...))}
	}

	opts, err := request.Options.GenerateOptions()
	if err != nil {
		return &codegen.PluginResponse{Error: err.Error()}
	}
	output, err := codegen.Generate(result.DeclarationSet(), opts...)
	if err != nil {
		return &codegen.PluginResponse{Error: err.Error()}
	}
	response := &codegen.PluginResponse{}
	for _, file := range output.Files {
		response.OutputFiles = append(response.OutputFiles, codegen.PluginFile{
			Path:    []string{file.Name},
			Content: file.Content,
		})
	}
	return response
}

// describeError prefixes each diagnostic in err with its source location.
func describeError(path string, src []byte, err error) string {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	var lines []string
	for _, err := range errs {
		var diag interface{ Span() syntax.Span }
		if errors.As(err, &diag) {
			span := diag.Span()
			pos := syntax.LineCol(src, span.Start())
			lines = append(lines, path+":"+pos.String()+": "+err.Error())
			continue
		}
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}
