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
	"testing"

	"github.com/BrainiumLLC/objc-util/codegen"
	"github.com/BrainiumLLC/objc-util/internal/testutil"
)

const pluginSrc = `framework "Foundation"

@objc(selector = "hash", macos = "10")
func NSObjectHash(obj *Object) NSUInteger
`

func TestGenerate(t *testing.T) {
	t.Parallel()

	response := generate(&codegen.PluginRequest{
		Language: "go",
		Source:   codegen.PluginSource{Path: "foundation.objc", Text: pluginSrc},
		Options:  codegen.PluginOptions{Package: "nsfoundation", Strategy: "runtime"},
	})
	testutil.ExpectEq(t, "", response.Error)

	var paths []string
	for _, file := range response.OutputFiles {
		testutil.ExpectEq(t, 1, len(file.Path))
		paths = append(paths, file.Path[0])
	}
	testutil.ExpectSliceEq(t, []string{"foundation.go", "foundation_macos.go"}, paths)
	if len(response.OutputFiles) == 2 {
		macos := string(response.OutputFiles[1].Content)
		testutil.ExpectMatch(t, `(?m)^package nsfoundation$`, macos)
		testutil.ExpectMatch(t, `objcrt\.LookupSelector\("hash"\)`, macos)
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	response := generate(&codegen.PluginRequest{Language: "rust"})
	testutil.ExpectEq(t, "unsupported language rust", response.Error)

	response = generate(&codegen.PluginRequest{
		Source: codegen.PluginSource{
			Path: "bad.objc",
			Text: "framework \"Foundation\"\n\nfunc Hash(obj *Object) NSUInteger\n",
		},
	})
	testutil.ExpectMatch(t, `^bad\.objc:3:\d+: E3006: Binding 'Hash' is missing`, response.Error)
	testutil.ExpectEq(t, 0, len(response.OutputFiles))

	response = generate(&codegen.PluginRequest{
		Source:  codegen.PluginSource{Path: "foundation.objc", Text: pluginSrc},
		Options: codegen.PluginOptions{Mode: "fast"},
	})
	testutil.ExpectMatch(t, `unknown mode "fast"`, response.Error)
}
