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

package syntax_test

import (
	"testing"

	"github.com/BrainiumLLC/objc-util/internal/testutil"
	"github.com/BrainiumLLC/objc-util/syntax"
)

const foundationSrc = `framework "Foundation"

import "unsafe"
import cf "example.com/cf"

class NSData

## Reports whether two objects are equal.
@objc(selector = "isEqual:", macos = "10")
func IsEqual(lhs *Object, rhs *Object) BOOL
`

func TestParseFile(t *testing.T) {
	t.Parallel()

	file, err := syntax.Parse([]byte(foundationSrc))
	testutil.AssertNoError(t, err)

	testutil.ExpectNoDiff(t, `file
  framework
    keyword "framework"
    text-lit "\"Foundation\""
  import
    keyword "import"
    text-lit "\"unsafe\""
  import
    keyword "import"
    ident "cf"
    text-lit "\"example.com/cf\""
  class
    keyword "class"
    ident "NSData"
  comment "## Reports whether two objects are equal."
  decorator
    sigil "@"
    ident "objc"
    sigil "("
    decorator-arg
      ident "selector"
      sigil "="
      text-lit "\"isEqual:\""
    sigil ","
    decorator-arg
      ident "macos"
      sigil "="
      text-lit "\"10\""
    sigil ")"
  func-decl
    keyword "func"
    ident "IsEqual"
    sigil "("
    param
      ident "lhs"
      type
        sigil "*"
        type
          ident "Object"
    sigil ","
    param
      ident "rhs"
      type
        sigil "*"
        type
          ident "Object"
    sigil ")"
    type
      ident "BOOL"
`, testutil.DumpTree(file))

	testutil.ExpectEq(t, foundationSrc, syntax.Unparse(file))
	testutil.ExpectEq(t, syntax.NewSpan(0, uint32(len(foundationSrc))), file.Span())

	var decls []*syntax.FuncDecl
	for decl := range file.Funcs() {
		decls = append(decls, decl)
	}
	if len(decls) != 1 {
		t.Fatalf("Expected 1 func decl, got: %d", len(decls))
	}
	decl := decls[0]
	testutil.ExpectEq(t, "IsEqual", decl.Name().Get())
	testutil.ExpectEq(t, 1, len(decl.Doc()))
	testutil.ExpectEq(t, "Reports whether two objects are equal.", decl.Doc()[0].DocText())
	testutil.ExpectEq(t, 1, len(decl.Decorators()))
	testutil.ExpectEq(t, "BOOL", decl.Result().String())
	testutil.ExpectEq(t,
		testutil.SpanOf(t, foundationSrc, "IsEqual", 0),
		decl.Name().Span())

	args := decl.Decorators()[0].Args()
	testutil.ExpectEq(t, 2, len(args))
	testutil.ExpectEq(t, "selector", args[0].Key().Get())
	testutil.ExpectEq(t, "isEqual:", args[0].Value().(*syntax.TextLit).Get())

	for imp := range file.Imports() {
		if alias := imp.Alias(); alias != nil {
			testutil.ExpectEq(t, "cf", alias.Get())
			testutil.ExpectEq(t, "example.com/cf", imp.Path().Get())
		}
	}
}

func TestParseFuncDecl(t *testing.T) {
	t.Parallel()

	src := `extern "C" unsafe func F[T any](self, (a, b) T, _ int, rest ...any) *Object`
	decl, err := syntax.ParseFuncDecl([]byte(src))
	testutil.AssertNoError(t, err)

	modifiers := decl.Modifiers()
	testutil.ExpectEq(t, 2, len(modifiers))
	testutil.ExpectEq(t, syntax.ModifierExtern, modifiers[0].Kind())
	testutil.ExpectEq(t, "C", modifiers[0].ABI().Get())
	testutil.ExpectEq(t, syntax.ModifierUnsafe, modifiers[1].Kind())

	testutil.ExpectEq(t, 1, len(decl.TypeParams().Params()))
	testutil.ExpectEq(t, "any", decl.TypeParams().Params()[0].Constraint().String())

	params := decl.Params()
	testutil.ExpectEq(t, 4, len(params))

	testutil.ExpectEq(t, syntax.ParamSelf, params[0].Kind())
	testutil.ExpectTrue(t, params[0].Type() == nil)
	testutil.ExpectEq(t, testutil.SpanOf(t, src, "self", 0), params[0].PatternSpan())

	testutil.ExpectEq(t, syntax.ParamTuple, params[1].Kind())
	testutil.ExpectEq(t, 2, len(params[1].Names()))
	testutil.ExpectEq(t, testutil.SpanOf(t, src, "(a, b)", 0), params[1].PatternSpan())

	testutil.ExpectEq(t, syntax.ParamNamed, params[2].Kind())
	testutil.ExpectEq(t, "_", params[2].Name().Get())

	testutil.ExpectTrue(t, params[3].Variadic() != nil)
	testutil.ExpectEq(t, "any", params[3].Type().String())

	testutil.ExpectEq(t, "*Object", decl.Result().String())
	testutil.ExpectEq(t, src, syntax.Unparse(decl))
}

func TestParseMultilineParams(t *testing.T) {
	t.Parallel()

	src := "func F(\n\ta *Object, # receiver\n\tb uintptr,\n)"
	decl, err := syntax.ParseFuncDecl([]byte(src))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2, len(decl.Params()))
	testutil.ExpectTrue(t, decl.Result() == nil)
}

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		kind syntax.TypeKind
	}{
		{"int32", syntax.TypeNamed},
		{"unsafe.Pointer", syntax.TypeNamed},
		{"*objcrt.Object", syntax.TypePointer},
		{"[]byte", syntax.TypeSlice},
		{"[16]uint8", syntax.TypeArray},
		{"**[4]*T", syntax.TypePointer},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			t.Parallel()
			ty, err := syntax.ParseType([]byte(test.src))
			testutil.AssertNoError(t, err)
			testutil.ExpectEq(t, test.kind, ty.Kind())
			testutil.ExpectEq(t, test.src, ty.String())
		})
	}

	ty, err := syntax.ParseType([]byte("unsafe.Pointer"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "unsafe", ty.Scope().Get())
	testutil.ExpectEq(t, "Pointer", ty.Name().Get())
}

func TestParseDecorator(t *testing.T) {
	t.Parallel()

	decorator, err := syntax.ParseDecorator([]byte(`@deprecated("use Other")`))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "deprecated", decorator.Name().Get())
	testutil.ExpectTrue(t, decorator.HasArgs())
	testutil.ExpectTrue(t, decorator.Args()[0].Key() == nil)

	decorator, err = syntax.ParseDecorator([]byte(`@noinline`))
	testutil.AssertNoError(t, err)
	testutil.ExpectFalse(t, decorator.HasArgs())

	decorator, err = syntax.ParseDecorator([]byte("@objc(\n  selector = \"a\",\n)"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(decorator.Args()))
}

func TestDocComments(t *testing.T) {
	t.Parallel()

	src := `framework "F"

## Detached.

# Plain comment.
## First line.
## Second line.
@noinline
func A()

## Not documentation for B.

func B()
`
	file, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)

	docs := map[string][]string{}
	for decl := range file.Funcs() {
		var lines []string
		for _, comment := range decl.Doc() {
			lines = append(lines, comment.DocText())
		}
		docs[decl.Name().Get()] = lines
	}
	testutil.ExpectSliceEq(t, []string{"First line.", "Second line."}, docs["A"])
	testutil.ExpectEq(t, 0, len(docs["B"]))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		code   uint32
		needle string
	}{
		{"unknown decorator", "@foo\nfunc A()", 2017, "foo"},
		{"decorator on class", "@noinline\nclass NSData", 2021, "@noinline"},
		{"modifier without func", "const A()", 2013, "A"},
		{"bad param", "func A(1)", 2019, "1"},
		{"param without type", "func A(a)", 2018, ")"},
		{"unknown declaration", "banana", 2016, "banana"},
		{"expected declaration", ")", 2015, ")"},
		{"array length too large", "func A(a [99999999999]T)", 2022, "99999999999"},
		{"decorator value", "@objc(selector = [)\nfunc A()", 2020, "["},
		{"framework name", "framework Foundation", 2011, "Foundation"},
		{"unclosed params", "func A(a T", 2006, ""},
		{"bad escape", `framework "\q"`, 2024, `"\q"`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := syntax.Parse([]byte(test.src))
			testutil.AssertError(t, err)
			diag := testutil.ExpectDiagnostic(t, err, test.code, "")
			if test.needle != "" {
				testutil.ExpectEq(t, testutil.SpanOf(t, test.src, test.needle, 0), diag.Span())
			}
		})
	}
}

func TestLineCol(t *testing.T) {
	t.Parallel()

	src := []byte("ab\ncd")
	testutil.ExpectEq(t, syntax.Position{Line: 1, Column: 1}, syntax.LineCol(src, 0))
	testutil.ExpectEq(t, syntax.Position{Line: 1, Column: 3}, syntax.LineCol(src, 2))
	testutil.ExpectEq(t, syntax.Position{Line: 2, Column: 2}, syntax.LineCol(src, 4))
	testutil.ExpectEq(t, syntax.Position{Line: 2, Column: 3}, syntax.LineCol(src, 99))
}
