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

package compiler

import (
	"unicode"
	"unicode/utf8"

	"github.com/BrainiumLLC/objc-util/syntax"
)

type Param struct {
	name  string
	type_ *Type
}

func (p Param) Name() string {
	return p.name
}

func (p Param) Type() *Type {
	return p.type_
}

// Binding is a validated declaration of a typed message send.
type Binding struct {
	name         string
	receiver     Param
	args         []Param
	result       *Type
	message      MessageName
	availability Availability
	span         syntax.Span
	doc          []string
	noInline     bool
	deprecated   bool
	deprecation  string
}

func (b *Binding) Name() string {
	return b.name
}

func (b *Binding) Receiver() Param {
	return b.receiver
}

// Args are the message arguments, excluding the receiver.
func (b *Binding) Args() []Param {
	return b.args
}

// Result is nil when the message has no result.
func (b *Binding) Result() *Type {
	return b.result
}

func (b *Binding) Message() MessageName {
	return b.message
}

func (b *Binding) Availability() Availability {
	return b.availability
}

// Span is the span of the binding's name in its source file.
func (b *Binding) Span() syntax.Span {
	return b.span
}

func (b *Binding) Doc() []string {
	return b.doc
}

func (b *Binding) NoInline() bool {
	return b.noInline
}

// Deprecated returns the deprecation message, and whether the binding
// is deprecated at all.
func (b *Binding) Deprecated() (string, bool) {
	return b.deprecation, b.deprecated
}

func (b *Binding) Exported() bool {
	r, _ := utf8.DecodeRuneInString(b.name)
	return unicode.IsUpper(r)
}

// SelectorFunc is the name of the generated selector accessor.
func (b *Binding) SelectorFunc() string {
	return prefixName("Sel", b.name)
}

// SupportsFunc is the name of the generated availability predicate.
func (b *Binding) SupportsFunc() string {
	return prefixName("Supports", b.name)
}

// ClassFunc is the name of the generated class accessor for className.
func ClassFunc(className string) string {
	return "Class" + className
}

// prefixName prepends prefix to name, keeping the exportedness of name.
func prefixName(prefix, name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return prefix + name
	}
	lower := string(unicode.ToLower(rune(prefix[0]))) + prefix[1:]
	return lower + string(unicode.ToUpper(r)) + name[size:]
}
