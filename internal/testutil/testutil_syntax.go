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

package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/BrainiumLLC/objc-util/syntax"
)

// Diagnostic is implemented by both syntax and compiler errors.
type Diagnostic interface {
	error
	Code() uint32
	Message() string
	Span() syntax.Span
}

// SpanOf returns the span of the nth (zero-based) occurrence of needle in
// src, failing the test if there is no such occurrence.
func SpanOf(t *testing.T, src string, needle string, nth int) syntax.Span {
	t.Helper()
	offset := 0
	for ii := 0; ; ii++ {
		idx := strings.Index(src[offset:], needle)
		if idx < 0 {
			t.Fatalf("%q occurrence %d not found in source", needle, nth)
		}
		if ii == nth {
			return syntax.NewSpan(uint32(offset+idx), uint32(len(needle)))
		}
		offset += idx + len(needle)
	}
}

// ExpectDiagnostic checks that err is a diagnostic with the given code,
// and that its message matches pattern (if non-empty).
func ExpectDiagnostic(t *testing.T, err error, code uint32, pattern string) Diagnostic {
	t.Helper()
	var diag Diagnostic
	if !errors.As(err, &diag) {
		t.Fatalf("Expected diagnostic E%d, got: %v", code, err)
	}
	ExpectEq(t, code, diag.Code())
	if pattern != "" {
		ExpectMatch(t, pattern, diag.Message())
	}
	return diag
}

// DumpTree renders a syntax tree one node per line, with leaf nodes
// showing their source text.
func DumpTree(node syntax.Node) string {
	var buf bytes.Buffer
	dumpTree(&buf, node, 0)
	return buf.String()
}

func dumpTree(buf *bytes.Buffer, node syntax.Node, indent int) {
	ty := fmt.Sprintf("%T", node)
	var nameBuf strings.Builder
	for ii, c := range strings.TrimPrefix(ty, "*syntax.") {
		if c >= 'A' && c <= 'Z' {
			if ii > 0 {
				nameBuf.WriteRune('-')
			}
			nameBuf.WriteRune(c + ('a' - 'A'))
		} else {
			nameBuf.WriteRune(c)
		}
	}
	buf.WriteString(strings.Repeat("  ", indent))
	buf.WriteString(nameBuf.String())

	switch node := node.(type) {
	case *syntax.Space, *syntax.Newline:
		buf.WriteString("\n")
		return
	case *syntax.Sigil, *syntax.Keyword, *syntax.Comment, *syntax.Ident,
		*syntax.IntLit, *syntax.TextLit:
		fmt.Fprintf(buf, " %q\n", syntax.Unparse(node))
		return
	}
	buf.WriteString("\n")
	for child := range node.ChildNodes() {
		switch child.(type) {
		case *syntax.Space, *syntax.Newline:
			continue
		}
		dumpTree(buf, child, indent+1)
	}
}
