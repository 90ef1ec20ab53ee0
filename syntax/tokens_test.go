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
	"fmt"
	"testing"

	"github.com/BrainiumLLC/objc-util/internal/testutil"
	"github.com/BrainiumLLC/objc-util/syntax"
)

type strToken struct {
	kind    string
	content string
}

func tokenize(t *testing.T, src string) ([]strToken, error) {
	t.Helper()
	tokens, err := syntax.NewTokens([]byte(src))
	if err != nil {
		return nil, err
	}
	var got []strToken
	for {
		var token syntax.Token
		if err := tokens.Next(&token); err != nil {
			return got, err
		}
		if token.Kind == syntax.T_EOF {
			break
		}
		got = append(got, strToken{
			kind:    token.Kind.String(),
			content: src[:token.Len],
		})
		src = src[token.Len:]
	}
	return got, nil
}

func TestTokensOK(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want []strToken
	}{
		{"", nil},
		{" \t", []strToken{{"SPACE", " \t"}}},
		{" x", []strToken{{"SPACE", " "}, {"IDENT", "x"}}},
		{"\n\r\n", []strToken{{"NEWLINE", "\n"}, {"NEWLINE", "\r\n"}}},
		{"# hi\n", []strToken{{"COMMENT", "# hi"}, {"NEWLINE", "\n"}}},
		{"## doc", []strToken{{"COMMENT", "## doc"}}},
		{"@objc", []strToken{{"AT", "@"}, {"IDENT", "objc"}}},
		{"a...T", []strToken{{"IDENT", "a"}, {"ELLIPSIS", "..."}, {"IDENT", "T"}}},
		{"pkg.T", []strToken{{"IDENT", "pkg"}, {"DOT", "."}, {"IDENT", "T"}}},
		{"*[]", []strToken{{"STAR", "*"}, {"OPEN_SQUARE", "["}, {"CLOSE_SQUARE", "]"}}},
		{"(=,)", []strToken{
			{"OPEN_PAREN", "("},
			{"EQ", "="},
			{"COMMA", ","},
			{"CLOSE_PAREN", ")"},
		}},
		{"[16]", []strToken{{"OPEN_SQUARE", "["}, {"INT_LIT", "16"}, {"CLOSE_SQUARE", "]"}}},
		{"0", []strToken{{"INT_LIT", "0"}}},
		{`"isEqual:"`, []strToken{{"TEXT_LIT", `"isEqual:"`}}},
		{`"a\"b"`, []strToken{{"TEXT_LIT", `"a\"b"`}}},
		{"_x9", []strToken{{"IDENT", "_x9"}}},
	}
	for ii, test := range tests {
		t.Run(fmt.Sprintf("%d", ii), func(t *testing.T) {
			t.Parallel()
			got, err := tokenize(t, test.src)
			testutil.AssertNoError(t, err)
			testutil.ExpectSliceEq(t, test.want, got)
		})
	}
}

func TestTokensErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		code uint32
		span syntax.Span
	}{
		{"\xff", 1001, syntax.NewSpan(0, 1)},
		{"a $", 1002, syntax.NewSpan(2, 1)},
		{"a\x01", 1003, syntax.NewSpan(1, 1)},
		{"\r", 1003, syntax.NewSpan(0, 1)},
		{"007", 1005, syntax.NewSpan(0, 3)},
		{`"abc`, 1006, syntax.NewSpan(0, 4)},
		{"\"a\nb\"", 1007, syntax.NewSpan(2, 1)},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("E%d", test.code), func(t *testing.T) {
			_, err := tokenize(t, test.src)
			testutil.AssertError(t, err)
			diag := testutil.ExpectDiagnostic(t, err, test.code, "")
			testutil.ExpectEq(t, test.span, diag.Span())
		})
	}
}
