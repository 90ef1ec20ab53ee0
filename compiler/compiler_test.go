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

package compiler_test

import (
	"testing"

	"github.com/BrainiumLLC/objc-util/compiler"
	"github.com/BrainiumLLC/objc-util/internal/testutil"
	"github.com/BrainiumLLC/objc-util/syntax"
)

func compileSrc(t *testing.T, src string) compiler.CompileResult {
	t.Helper()
	file, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	return compiler.Compile(file, compiler.WithSourcePath("foundation.objc"))
}

const header = "framework \"Foundation\"\n\n"

func TestCompileFoundation(t *testing.T) {
	t.Parallel()

	src := header + `import "unsafe"
import "example.com/unused"

class NSData
class NSData

## Returns an integer that can be used as a table address.
@objc(selector = "hash", macos = "10.0", ios = "2")
@noinline
func NSObjectHash(obj *Object) NSUInteger

@objc(selector = "initWithBytes:length:", macos = "10")
@deprecated("use dataWithBytes")
func nsDataInitWithBytes(data *Object, bytes unsafe.Pointer, length NSUInteger) *Object

@objc(selector = "release", ios = "2.0.1")
func NSObjectRelease(obj unsafe.Pointer)
`
	result := compileSrc(t, src)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	set := result.DeclarationSet()

	testutil.ExpectEq(t, "Foundation", set.Framework())
	testutil.ExpectEq(t, "foundation.objc", set.SourcePath())
	testutil.ExpectDeepEq(t, []compiler.Import{{Path: "unsafe", Alias: "unsafe"}}, set.Imports())

	testutil.ExpectEq(t, 1, len(set.Classes()))
	testutil.ExpectEq(t, "ClassNSData", set.Classes()[0].Func())

	testutil.ExpectEq(t, 2, len(result.Warnings))
	testutil.ExpectEq(t, "W4001: Duplicate class declaration 'NSData'", result.Warnings[0].String())
	testutil.ExpectEq(t, uint32(4000), result.Warnings[1].Code())
	testutil.ExpectMatch(t, "example.com/unused", result.Warnings[1].Message())

	bindings := set.Bindings()
	testutil.ExpectEq(t, 3, len(bindings))

	hash := bindings[0]
	testutil.ExpectEq(t, "NSObjectHash", hash.Name())
	testutil.ExpectEq(t, "SelNSObjectHash", hash.SelectorFunc())
	testutil.ExpectEq(t, "SupportsNSObjectHash", hash.SupportsFunc())
	testutil.ExpectEq(t, "hash", hash.Message().String())
	testutil.ExpectEq(t, 1, hash.Message().ArgCount())
	testutil.ExpectEq(t, "obj", hash.Receiver().Name())
	testutil.ExpectEq(t, "*objcrt.Object", hash.Receiver().Type().String())
	testutil.ExpectEq(t, "objcrt.NSUInteger", hash.Result().String())
	testutil.ExpectEq(t, compiler.RuntimePackage, hash.Result().PkgPath())
	testutil.ExpectTrue(t, hash.NoInline())
	testutil.ExpectSliceEq(t,
		[]string{"Returns an integer that can be used as a table address."},
		hash.Doc())
	testutil.ExpectDeepEq(t, []compiler.AvailabilityEntry{
		{OS: compiler.MacOS, Version: compiler.Version{Major: 10}},
		{OS: compiler.IOS, Version: compiler.Version{Major: 2}},
	}, hash.Availability().Entries())
	testutil.ExpectEq(t, testutil.SpanOf(t, src, "NSObjectHash", 0), hash.Span())

	initBytes := bindings[1]
	testutil.ExpectEq(t, "selNsDataInitWithBytes", initBytes.SelectorFunc())
	testutil.ExpectEq(t, "supportsNsDataInitWithBytes", initBytes.SupportsFunc())
	testutil.ExpectFalse(t, initBytes.Exported())
	testutil.ExpectEq(t, 2, len(initBytes.Args()))
	testutil.ExpectEq(t, "unsafe.Pointer", initBytes.Args()[0].Type().String())
	deprecation, deprecated := initBytes.Deprecated()
	testutil.ExpectTrue(t, deprecated)
	testutil.ExpectEq(t, "use dataWithBytes", deprecation)

	release := bindings[2]
	testutil.ExpectTrue(t, release.Result() == nil)
	testutil.ExpectTrue(t, release.Receiver().Type().IsPointerLike())
	testutil.ExpectEq(t, "ios", release.Availability().Key())

	var keys []string
	for key := range set.Constraints() {
		keys = append(keys, key)
	}
	testutil.ExpectSliceEq(t, []string{"darwin", "macos", "ios"}, keys)
	testutil.ExpectEq(t, "darwin", set.Availability().Key())
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	const hashAttr = `@objc(selector = "hash", macos = "10")` + "\n"
	tests := []struct {
		name    string
		src     string
		code    uint32
		needle  string
		nth     int
		pattern string
	}{
		{"const", header + hashAttr + "async const func Hash(obj *Object)", 3000, "const", 0, ""},
		{"async", header + hashAttr + "async func Hash(obj *Object)", 3001, "async", 0, ""},
		{"unsafe", header + hashAttr + "unsafe func Hash(obj *Object)", 3002, "unsafe", 0, "implicitly unsafe"},
		{"abi", header + hashAttr + `extern "C" func Hash(obj *Object)`, 3003, `extern "C"`, 0, ""},
		{
			"variadic",
			header + `@objc(selector = "f:", macos = "10")` + "\nfunc F(obj *Object, args ...uintptr)",
			3004, "args ...uintptr", 0, "",
		},
		{
			"variadic without objc",
			header + "func F(obj *Object, args ...uintptr)",
			3004, "args ...uintptr", 0, "",
		},
		{
			"variadic arity mismatch",
			header + `@objc(selector = "f:g:", macos = "10")` + "\nfunc F(obj *Object, args ...uintptr)",
			3004, "args ...uintptr", 0, "",
		},
		{"generic", header + hashAttr + "func Hash[T any](obj *Object)", 3005, "[T any]", 0, ""},
		{
			"generic duplicate objc",
			header + hashAttr + hashAttr + "func Hash[T any](obj *Object)",
			3005, "[T any]", 0, "",
		},
		{
			"generic without objc",
			header + "func Hash[T any](obj *Object, extra uintptr)",
			3005, "[T any]", 0, "",
		},
		{"missing objc", header + "@noinline\nfunc Hash(obj *Object)", 3006, "Hash", 0, "missing"},
		{
			"duplicate objc",
			header + hashAttr + hashAttr + "func Hash(obj *Object)",
			3007, hashAttr[:len(hashAttr)-1], 1, "",
		},
		{"too short", header + `@objc(selector = "hash")` + "\nfunc Hash(obj *Object)", 3008, `@objc(selector = "hash")`, 0, ""},
		{
			"selector not first",
			header + `@objc(macos = "10", selector = "hash")` + "\nfunc Hash(obj *Object)",
			3009, `macos = "10"`, 0, "",
		},
		{
			"missing trailing colon",
			header + `@objc(selector = "initWithBytes:length", macos = "10")` + "\nfunc F(a *Object, b uintptr, c uintptr)",
			3010, `"initWithBytes:length"`, 0, "trailing `:`",
		},
		{
			"empty selector",
			header + `@objc(selector = "", macos = "10")` + "\nfunc F(a *Object)",
			3010, `""`, 0, "empty",
		},
		{
			"unknown os",
			header + `@objc(selector = "hash", linux = "1")` + "\nfunc Hash(obj *Object)",
			3011, "linux", 0, "",
		},
		{
			"bad version",
			header + `@objc(selector = "hash", macos = "10.1.2.3")` + "\nfunc Hash(obj *Object)",
			3012, `"10.1.2.3"`, 0, "",
		},
		{
			"duplicate os",
			header + `@objc(selector = "hash", macos = "10", macos = "11")` + "\nfunc Hash(obj *Object)",
			3013, "macos", 1, "Duplicate `macos` keys",
		},
		{
			"arity",
			header + `@objc(selector = "isEqual:", macos = "10")` + "\nfunc IsEqual(obj *Object) BOOL",
			3014, `"isEqual:"`, 0,
			"Message `isEqual:` has 2 arguments, but the binding 'IsEqual' has 1 argument$",
		},
		{
			"destructuring",
			header + `@objc(selector = "isEqual:", macos = "10")` + "\nfunc IsEqual(obj *Object, (a, b) uintptr) BOOL",
			3015, "(a, b)", 0, "",
		},
		{"blank param", header + hashAttr + "func Hash(_ *Object)", 3015, "_", 0, ""},
		{"self", header + hashAttr + "func Hash(self) NSUInteger", 3016, "self", 0, ""},
		{"receiver not pointer", header + hashAttr + "func Hash(obj Object)", 3017, "Object", 0, "raw pointers"},
		{"unknown type", header + hashAttr + "func Hash(obj *Object) NSString", 3018, "NSString", 0, ""},
		{"unknown alias", header + hashAttr + "func Hash(obj *cf.Object)", 3018, "cf", 0, "not imported"},
		{
			"generated name conflict",
			header + hashAttr + "func Foo(obj *Object)\n\n" + hashAttr + "func SelFoo(obj *Object)",
			3019, "SelFoo", 0, "conflicts with declaration 'Foo'",
		},
		{"missing framework", "class NSData\n", 3020, "", 0, "Missing"},
		{
			"framework not first",
			"class NSData\nframework \"Foundation\"\n",
			3020, `framework "Foundation"`, 0, "precede",
		},
		{"invalid framework", "framework \"Foo Bar\"\n", 3021, `"Foo Bar"`, 0, ""},
		{"duplicate framework", header + header, 3022, `framework "Foundation"`, 1, ""},
		{
			"import conflict",
			header + "import a \"x/a\"\nimport a \"y/a\"\n",
			3023, `import a "y/a"`, 0, "",
		},
		{"keyword param", header + hashAttr + "func Hash(type *Object)", 3024, "type", 0, "reserved"},
		{
			"duplicate param",
			header + `@objc(selector = "isEqual:", macos = "10")` + "\nfunc IsEqual(lhs *Object, lhs *Object) BOOL",
			3024, "lhs", 1, "Duplicate",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			result := compileSrc(t, test.src)
			if len(result.Errors) != 1 {
				t.Fatalf("Expected 1 error, got: %v", result.Errors)
			}
			testutil.ExpectTrue(t, result.DeclarationSet() == nil)
			err := result.Errors[0]
			testutil.ExpectDiagnostic(t, err, test.code, test.pattern)
			if test.needle != "" {
				testutil.ExpectEq(t, testutil.SpanOf(t, test.src, test.needle, test.nth), err.Span())
			}
		})
	}
}

func TestCompileContinuesAfterError(t *testing.T) {
	t.Parallel()

	src := header + `func A(obj *Object)

@objc(selector = "b", macos = "10")
func B(obj *Object)

@objc(selector = "c:", macos = "10")
func C(obj *Object)
`
	result := compileSrc(t, src)
	testutil.ExpectEq(t, 2, len(result.Errors))
	testutil.ExpectEq(t, uint32(3006), result.Errors[0].Code())
	testutil.ExpectEq(t, uint32(3014), result.Errors[1].Code())
	testutil.ExpectTrue(t, result.DeclarationSet() == nil)
}

func TestParseMessageName(t *testing.T) {
	t.Parallel()

	valid := []struct {
		text     string
		argCount int
	}{
		{"hash", 1},
		{"isEqual:", 2},
		{"initWithBytes:length:", 3},
		{"_private", 1},
		{"a1:b2:c3:", 4},
	}
	for _, test := range valid {
		name, err := compiler.ParseMessageName(test.text)
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, test.argCount, name.ArgCount())
		testutil.ExpectEq(t, test.text, name.String())

		reparsed, err := compiler.ParseMessageName(name.String())
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, name.ArgCount(), reparsed.ArgCount())
	}

	for _, text := range []string{
		"",
		":",
		"a::",
		"a:b",
		"initWithBytes:length",
		"is-equal:",
		"1abc",
		"has space:",
	} {
		_, err := compiler.ParseMessageName(text)
		testutil.ExpectDiagnostic(t, err, 3010, "")
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	valid := map[string]compiler.Version{
		"10":     {Major: 10},
		"10.15":  {Major: 10, Minor: 15},
		"12.0.1": {Major: 12, Patch: 1},
		"0":      {},
		"010.2":  {Major: 10, Minor: 2},
	}
	for text, want := range valid {
		got, err := compiler.ParseVersion(text)
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, want, got)
	}

	for _, text := range []string{"", "1.2.3.4", "1..2", "1.", "a", "-1", "+1", "1.x", "99999999999"} {
		_, err := compiler.ParseVersion(text)
		testutil.ExpectDiagnostic(t, err, 3012, "")
	}
}

func TestAvailabilityConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attr       string
		constraint string
		key        string
		includes   []string
		excludes   []string
	}{
		{`macos = "10"`, "darwin && !ios", "macos", []string{"darwin"}, []string{"ios", "linux"}},
		{`ios = "2"`, "ios", "ios", []string{"ios"}, []string{"darwin", "windows"}},
		{`ios = "2", macos = "10"`, "darwin", "darwin", []string{"darwin", "ios"}, []string{"linux"}},
	}
	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			t.Parallel()
			src := header + `@objc(selector = "hash", ` + test.attr + ")\nfunc Hash(obj *Object)"
			result := compileSrc(t, src)
			if len(result.Errors) > 0 {
				t.Fatalf("unexpected errors: %v", result.Errors)
			}
			availability := result.DeclarationSet().Bindings()[0].Availability()
			testutil.ExpectEq(t, test.constraint, availability.Constraint().String())
			testutil.ExpectEq(t, test.key, availability.Key())
			for _, goos := range test.includes {
				testutil.ExpectTrue(t, availability.Includes(goos))
			}
			for _, goos := range test.excludes {
				testutil.ExpectFalse(t, availability.Includes(goos))
			}
		})
	}
}
