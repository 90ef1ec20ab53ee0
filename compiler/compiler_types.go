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
	"strconv"
	"strings"
)

// RuntimePackage is the import path of the support library that generated
// code calls into.
const RuntimePackage = "github.com/BrainiumLLC/objc-util/objcrt"

var builtinTypes = map[string]string{
	"bool":    "",
	"byte":    "",
	"int":     "",
	"int8":    "",
	"int16":   "",
	"int32":   "",
	"int64":   "",
	"uint":    "",
	"uint8":   "",
	"uint16":  "",
	"uint32":  "",
	"uint64":  "",
	"uintptr": "",
	"float32": "",
	"float64": "",

	"Object":     RuntimePackage,
	"Class":      RuntimePackage,
	"Sel":        RuntimePackage,
	"BOOL":       RuntimePackage,
	"NSInteger":  RuntimePackage,
	"NSUInteger": RuntimePackage,
}

type TypeKind uint8

const (
	TypeNamed TypeKind = iota
	TypePointer
	TypeSlice
	TypeArray
)

// Type is a resolved Go type expression.
type Type struct {
	kind    TypeKind
	pkgPath string
	name    string
	elem    *Type
	length  uint32
}

func NamedType(pkgPath, name string) *Type {
	return &Type{kind: TypeNamed, pkgPath: pkgPath, name: name}
}

func PointerTo(elem *Type) *Type {
	return &Type{kind: TypePointer, elem: elem}
}

func (t *Type) Kind() TypeKind {
	return t.kind
}

// PkgPath is the import path of a named type, or "" if predeclared.
func (t *Type) PkgPath() string {
	return t.pkgPath
}

func (t *Type) Name() string {
	return t.name
}

func (t *Type) Elem() *Type {
	return t.elem
}

func (t *Type) Len() uint32 {
	return t.length
}

// IsPointerLike reports whether values of t are raw pointers: either a
// pointer type or unsafe.Pointer.
func (t *Type) IsPointerLike() bool {
	return t.kind == TypePointer || (t.pkgPath == "unsafe" && t.name == "Pointer")
}

// String renders the type with package paths abbreviated to their last
// element, as in "*objcrt.Object".
func (t *Type) String() string {
	var buf strings.Builder
	t.writeTo(&buf)
	return buf.String()
}

func (t *Type) writeTo(buf *strings.Builder) {
	switch t.kind {
	case TypePointer:
		buf.WriteString("*")
		t.elem.writeTo(buf)
	case TypeSlice:
		buf.WriteString("[]")
		t.elem.writeTo(buf)
	case TypeArray:
		buf.WriteString("[")
		buf.WriteString(strconv.FormatUint(uint64(t.length), 10))
		buf.WriteString("]")
		t.elem.writeTo(buf)
	default:
		if t.pkgPath != "" {
			buf.WriteString(t.pkgPath[strings.LastIndexByte(t.pkgPath, '/')+1:])
			buf.WriteString(".")
		}
		buf.WriteString(t.name)
	}
}
