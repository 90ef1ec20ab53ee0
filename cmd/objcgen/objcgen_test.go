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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BrainiumLLC/objc-util/internal/testutil"
)

const validSrc = `framework "Foundation"

import "unsafe"
import "example.com/unused"

class NSData

@objc(selector = "isEqual:", macos = "10", ios = "2")
func NSObjectIsEqual(obj *Object, other *Object) BOOL

@objc(selector = "release", macos = "10")
func NSObjectRelease(obj unsafe.Pointer)
`

const invalidSrc = `framework "Foundation"

func Hash(obj *Object) NSUInteger

@objc(selector = "isEqual:", macos = "10")
func IsEqual(obj *Object) BOOL
`

const syntaxErrSrc = `framework "Foundation"

@bogus
func F(obj *Object)
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.AssertNoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runObjcgen(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := runMain(context.Background(), args, &stdout, &stderr)
	return rc, stdout.String(), stderr.String()
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeFile(t, dir, "valid.objc", validSrc)

	rc, _, stderr := runObjcgen(t, "check", valid)
	testutil.ExpectEq(t, 0, rc)
	testutil.ExpectMatch(t,
		`valid\.objc:4:1: W4000: Import of package "example.com/unused" is unused`,
		stderr)
}

func TestCheckErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeFile(t, dir, "valid.objc", validSrc)
	invalid := writeFile(t, dir, "invalid.objc", invalidSrc)
	syntaxErr := writeFile(t, dir, "syntax.objc", syntaxErrSrc)

	rc, _, stderr := runObjcgen(t, "check", "--jobs=2", valid, invalid, syntaxErr)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, `invalid\.objc:3:\d+: E3006: Binding 'Hash' is missing`, stderr)
	testutil.ExpectMatch(t, `invalid\.objc:5:\d+: E3014: `, stderr)
	testutil.ExpectMatch(t, `syntax\.objc:3:\d+: E2017: Unknown decorator`, stderr)

	lines := strings.Split(stderr, "\n")
	var order []string
	for _, line := range lines {
		for _, name := range []string{"valid.objc", "invalid.objc", "syntax.objc"} {
			if strings.Contains(line, string(filepath.Separator)+name+":") {
				order = append(order, name)
			}
		}
	}
	testutil.ExpectSliceEq(t, []string{"valid.objc", "invalid.objc", "invalid.objc", "syntax.objc"}, order)

	rc, _, stderr = runObjcgen(t, "check")
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "No input files", stderr)

	rc, _, stderr = runObjcgen(t, "check", filepath.Join(dir, "missing.objc"))
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "missing.objc", stderr)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "src/foundation.objc", validSrc)
	outDir := filepath.Join(dir, "out")

	rc, _, stderr := runObjcgen(t,
		"generate",
		"-o", outDir,
		"--package", "nsfoundation",
		"--strategy", "runtime",
		"--mode", "unchecked",
		input,
	)
	testutil.ExpectEq(t, 0, rc)
	testutil.ExpectMatch(t, "Generated bindings", stderr)

	entries, err := os.ReadDir(outDir)
	testutil.AssertNoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	testutil.ExpectSliceEq(t, []string{
		"foundation.go",
		"foundation_darwin.go",
		"foundation_macos.go",
	}, names)

	darwin, err := os.ReadFile(filepath.Join(outDir, "foundation_darwin.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectMatch(t, `(?m)^package nsfoundation$`, string(darwin))
	testutil.ExpectMatch(t, `objcrt\.LookupSelector\("isEqual:"\)`, string(darwin))
	testutil.ExpectFalse(t, strings.Contains(string(darwin), "MustVerify"))
	testutil.ExpectMatch(t, `(?m)^// Source: foundation\.objc$`, string(darwin))
}

func TestGenerateNextToInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "foundation.objc", validSrc)

	rc, _, _ := runObjcgen(t, "generate", input)
	testutil.ExpectEq(t, 0, rc)

	base, err := os.ReadFile(filepath.Join(dir, "foundation.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectMatch(t, `func SupportsNSObjectRelease\(\) bool`, string(base))

	macos, err := os.ReadFile(filepath.Join(dir, "foundation_macos.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectMatch(t, `objcrt\.NewSelectorRef\("release"\)`, string(macos))
	testutil.ExpectMatch(t, `if objcrt\.Checked \{`, string(macos))
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeFile(t, dir, "a/foundation.objc", validSrc)
	other := writeFile(t, dir, "b/foundation.objc", validSrc)
	invalid := writeFile(t, dir, "invalid.objc", invalidSrc)
	outDir := filepath.Join(dir, "out")

	rc, _, stderr := runObjcgen(t, "generate", "-o", outDir, valid, other)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "is generated by both", stderr)
	_, err := os.Stat(outDir)
	testutil.ExpectTrue(t, os.IsNotExist(err))

	rc, _, stderr = runObjcgen(t, "generate", "-o", outDir, invalid)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "E3006", stderr)

	rc, _, stderr = runObjcgen(t, "generate", "--strategy", "eager", valid)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, `unknown strategy "eager"`, stderr)

	rc, _, stderr = runObjcgen(t, "generate", "--mode", "fast", valid)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, `unknown mode "fast"`, stderr)
}

func TestGenerateConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "foundation.objc", validSrc)
	outDir := filepath.Join(dir, "out")
	config := writeFile(t, dir, "objcgen.yaml", "strategy: runtime\npackage: fromconfig\noutput: "+outDir+"\n")

	rc, _, stderr := runObjcgen(t, "generate", "--config", config, "--package", "fromflag", input)
	testutil.ExpectEq(t, 0, rc)
	testutil.ExpectMatch(t, "Generated bindings", stderr)

	macos, err := os.ReadFile(filepath.Join(outDir, "foundation_macos.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectMatch(t, `(?m)^package fromflag$`, string(macos))
	testutil.ExpectMatch(t, `objcrt\.LookupSelector\("release"\)`, string(macos))

	rc, _, stderr = runObjcgen(t, "generate", "--config", filepath.Join(dir, "missing.yaml"), input)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "Failed to read config file", stderr)
}

func TestGenerateEnvironment(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "foundation.objc", validSrc)
	t.Setenv("OBJCGEN_MODE", "checked")
	t.Setenv("OBJCGEN_OUTPUT", filepath.Join(dir, "env"))

	rc, _, _ := runObjcgen(t, "generate", input)
	testutil.ExpectEq(t, 0, rc)

	macos, err := os.ReadFile(filepath.Join(dir, "env", "foundation_macos.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectMatch(t, `objcrt\.MustVerify\("NSObjectRelease"`, string(macos))
	testutil.ExpectFalse(t, strings.Contains(string(macos), "objcrt.Checked"))
}

func TestVerbose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "foundation.objc", validSrc)
	rc, _, stderr := runObjcgen(t, "check", "-v", input)
	testutil.ExpectEq(t, 0, rc)
	testutil.ExpectMatch(t, "Compiling", stderr)
	testutil.ExpectMatch(t, "Checked", stderr)
}

func TestUsage(t *testing.T) {
	t.Parallel()

	rc, _, stderr := runObjcgen(t)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "objcgen \\[options\\] COMMAND", stderr)

	rc, _, _ = runObjcgen(t, "frobnicate")
	testutil.ExpectEq(t, 1, rc)
}

func TestPluginErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "foundation.objc", validSrc)

	rc, _, stderr := runObjcgen(t, "plugin", input)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "No output directory specified", stderr)

	rc, _, stderr = runObjcgen(t, "plugin", "-o", dir, "--plugin-path", dir, input)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "objcgen-plugin-go.wasm not found in plugin path", stderr)

	rc, _, stderr = runObjcgen(t, "plugin", "-o", dir, input, input)
	testutil.ExpectEq(t, 1, rc)
	testutil.ExpectMatch(t, "Expected one input file", stderr)
}

func TestLocatePlugin(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	plugin := writeFile(t, second, "objcgen-plugin-swift.wasm", "")

	found, err := locatePlugin(first+string(filepath.ListSeparator)+second, "swift")
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, plugin, found)

	_, err = locatePlugin("", "swift")
	testutil.ExpectMatch(t, "OBJCGEN_PLUGIN_PATH", err.Error())
	_, err = locatePlugin(first, "swift")
	testutil.AssertError(t, err)
}

func TestPluginOutPath(t *testing.T) {
	t.Parallel()

	got, err := pluginOutPath("out", []string{"sub", "foundation.go"})
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, filepath.Join("out", "sub", "foundation.go"), got)

	for _, parts := range [][]string{
		nil,
		{""},
		{".."},
		{"a", "."},
		{"/etc/passwd"},
		{"a/b.go"},
	} {
		_, err := pluginOutPath("out", parts)
		testutil.AssertError(t, err)
	}
}

func TestSourcePath(t *testing.T) {
	t.Parallel()

	testutil.ExpectSliceEq(t, []string{"a", "b", "c.objc"}, splitPath(filepath.Join("a", "b", "c.objc")))
	testutil.ExpectEq(t, "a/b/c.objc", sourcePath(filepath.Join("a", "b", "c.objc")))
	testutil.ExpectEq(t, "c.objc", sourcePath(filepath.Join(string(filepath.Separator)+"tmp", "c.objc")))
}
