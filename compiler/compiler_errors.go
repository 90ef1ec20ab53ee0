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
	"fmt"

	"github.com/BrainiumLLC/objc-util/syntax"
)

type Error struct {
	code    uint32
	message string
	span    syntax.Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() syntax.Span {
	return err.span
}

func (err *Error) withSpan(span syntax.Span) *Error {
	return &Error{
		code:    err.code,
		message: err.message,
		span:    span,
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func errConstBinding(span syntax.Span) error {
	return &Error{
		code:    3000,
		message: "Bindings cannot be declared `const`",
		span:    span,
	}
}

func errAsyncBinding(span syntax.Span) error {
	return &Error{
		code:    3001,
		message: "Bindings cannot be declared `async`",
		span:    span,
	}
}

func errUnsafeBinding(span syntax.Span) error {
	return &Error{
		code:    3002,
		message: "Bindings are implicitly unsafe; remove the `unsafe` modifier",
		span:    span,
	}
}

func errBindingABI(span syntax.Span) error {
	return &Error{
		code:    3003,
		message: "Bindings cannot specify a calling convention",
		span:    span,
	}
}

func errVariadicBinding(span syntax.Span) error {
	return &Error{
		code:    3004,
		message: "Variadic bindings are not supported",
		span:    span,
	}
}

func errGenericBinding(span syntax.Span) error {
	return &Error{
		code:    3005,
		message: "Generic bindings are not supported",
		span:    span,
	}
}

func errMissingObjcAttr(name string, span syntax.Span) error {
	return &Error{
		code: 3006,
		message: fmt.Sprintf(
			"Binding '%s' is missing an `@objc(selector = ...)` decorator",
			name,
		),
		span: span,
	}
}

func errDuplicateObjcAttr(span syntax.Span) error {
	return &Error{
		code:    3007,
		message: "Duplicate `@objc` decorator",
		span:    span,
	}
}

func errObjcAttrTooShort(span syntax.Span) error {
	return &Error{
		code: 3008,
		message: "Expected a selector and at least one OS version," +
			` e.g. @objc(selector = "isEqual:", macos = "10.0")`,
		span: span,
	}
}

func errObjcAttrSelectorFirst(span syntax.Span) error {
	return &Error{
		code:    3009,
		message: "The first `@objc` entry must be `selector = \"...\"`",
		span:    span,
	}
}

func errInvalidMessageName(name, reason string) *Error {
	return &Error{
		code:    3010,
		message: fmt.Sprintf("Invalid message name %q: %s", name, reason),
		span:    syntax.NewSpan(0, uint32(len(name))),
	}
}

func errUnknownOS(key string, span syntax.Span) error {
	return &Error{
		code: 3011,
		message: fmt.Sprintf(
			"Unknown OS %q (expected one of: `macos`, `ios`)",
			key,
		),
		span: span,
	}
}

func errInvalidVersion(text string) *Error {
	return &Error{
		code: 3012,
		message: fmt.Sprintf(
			"Expected an OS version string (e.g. `\"10.0\"` or `\"12.0.1\"`), got %q",
			text,
		),
		span: syntax.NewSpan(0, uint32(len(text))),
	}
}

func errDuplicateOS(os OS, span syntax.Span) error {
	return &Error{
		code:    3013,
		message: fmt.Sprintf("Duplicate `%s` keys", os),
		span:    span,
	}
}

func errArityMismatch(msg MessageName, name string, paramCount int, span syntax.Span) error {
	return &Error{
		code: 3014,
		message: fmt.Sprintf(
			"Message `%s` has %s, but the binding '%s' has %s",
			msg, plural(msg.ArgCount(), "argument"),
			name, plural(paramCount, "argument"),
		),
		span: span,
	}
}

func errDestructuringParam(span syntax.Span) error {
	return &Error{
		code:    3015,
		message: "Binding parameters must be plain names",
		span:    span,
	}
}

func errSelfParam(span syntax.Span) error {
	return &Error{
		code:    3016,
		message: "Bindings cannot use `self`; declare the receiver as an explicit parameter",
		span:    span,
	}
}

func errReceiverNotPointer(typeName string, span syntax.Span) error {
	return &Error{
		code: 3017,
		message: fmt.Sprintf(
			"Receivers must be raw pointers (`*T` or `unsafe.Pointer`), got `%s`",
			typeName,
		),
		span: span,
	}
}

func errUnknownType(typeName string, span syntax.Span) error {
	return &Error{
		code:    3018,
		message: fmt.Sprintf("Unknown type `%s`", typeName),
		span:    span,
	}
}

func errUnknownImportAlias(alias string, span syntax.Span) error {
	return &Error{
		code:    3018,
		message: fmt.Sprintf("Package '%s' is not imported", alias),
		span:    span,
	}
}

func errDuplicateGeneratedName(generated, decl, prevDecl string, span syntax.Span) error {
	return &Error{
		code: 3019,
		message: fmt.Sprintf(
			"Generated name '%s' for '%s' conflicts with declaration '%s'",
			generated, decl, prevDecl,
		),
		span: span,
	}
}

func errMissingFramework() error {
	return &Error{
		code:    3020,
		message: "Missing `framework \"Name\"` directive",
	}
}

func errFrameworkNotFirst(span syntax.Span) error {
	return &Error{
		code:    3020,
		message: "The `framework` directive must precede all other declarations",
		span:    span,
	}
}

func errInvalidFrameworkName(name string, span syntax.Span) error {
	return &Error{
		code:    3021,
		message: fmt.Sprintf("Invalid framework name %q", name),
		span:    span,
	}
}

func errDuplicateFramework(span syntax.Span) error {
	return &Error{
		code:    3022,
		message: "Duplicate `framework` directive",
		span:    span,
	}
}

func errImportAsConflict(prevPath, path, alias string, span syntax.Span) error {
	return &Error{
		code: 3023,
		message: fmt.Sprintf(
			"Import of package %q as '%s' conflicts with earlier"+
				" import of package %q as '%s'",
			path, alias, prevPath, alias,
		),
		span: span,
	}
}

func errInvalidName(name string, span syntax.Span) error {
	return &Error{
		code:    3024,
		message: fmt.Sprintf("'%s' is a reserved word and cannot be used as a name", name),
		span:    span,
	}
}

func errDuplicateParam(name string, span syntax.Span) error {
	return &Error{
		code:    3024,
		message: fmt.Sprintf("Duplicate parameter name '%s'", name),
		span:    span,
	}
}
