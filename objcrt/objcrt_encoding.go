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

package objcrt

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unsafe"
)

// Encoder is implemented by types that specify their own Objective-C type
// encoding.
type Encoder interface {
	ObjCEncoding() string
}

var (
	encoderType = reflect.TypeFor[Encoder]()
	objectType  = reflect.TypeFor[Object]()
	classType   = reflect.TypeFor[Class]()
	selType     = reflect.TypeFor[Sel]()
	voidType    = reflect.TypeFor[Void]()
)

// EncodingOf returns the Objective-C type encoding of t.
func EncodingOf(t reflect.Type) (string, error) {
	var buf strings.Builder
	if err := writeEncoding(&buf, t); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeEncoding(buf *strings.Builder, t reflect.Type) error {
	if t.Implements(encoderType) {
		buf.WriteString(reflect.New(t).Elem().Interface().(Encoder).ObjCEncoding())
		return nil
	}
	switch t {
	case selType:
		buf.WriteString(":")
		return nil
	case voidType:
		buf.WriteString("v")
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		buf.WriteString("B")
	case reflect.Int8:
		buf.WriteString("c")
	case reflect.Int16:
		buf.WriteString("s")
	case reflect.Int32:
		buf.WriteString("i")
	case reflect.Int64, reflect.Int:
		buf.WriteString("q")
	case reflect.Uint8:
		buf.WriteString("C")
	case reflect.Uint16:
		buf.WriteString("S")
	case reflect.Uint32:
		buf.WriteString("I")
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		buf.WriteString("Q")
	case reflect.Float32:
		buf.WriteString("f")
	case reflect.Float64:
		buf.WriteString("d")
	case reflect.UnsafePointer:
		buf.WriteString("^v")
	case reflect.Pointer:
		switch t.Elem() {
		case objectType:
			buf.WriteString("@")
		case classType:
			buf.WriteString("#")
		default:
			buf.WriteString("^")
			return writeEncoding(buf, t.Elem())
		}
	case reflect.Slice:
		// Slices are sent as a pointer to their first element.
		buf.WriteString("^")
		return writeEncoding(buf, t.Elem())
	case reflect.Array:
		buf.WriteString("[")
		buf.WriteString(strconv.Itoa(t.Len()))
		if err := writeEncoding(buf, t.Elem()); err != nil {
			return err
		}
		buf.WriteString("]")
	case reflect.Struct:
		name := t.Name()
		if name == "" {
			name = "?"
		}
		buf.WriteString("{")
		buf.WriteString(name)
		buf.WriteString("=")
		for ii := 0; ii < t.NumField(); ii++ {
			if err := writeEncoding(buf, t.Field(ii).Type); err != nil {
				return err
			}
		}
		buf.WriteString("}")
	default:
		return fmt.Errorf("objcrt: type %v has no Objective-C encoding", t)
	}
	return nil
}

// stripQualifiers removes method type qualifiers such as "r" (const) and
// "o" (out) from an encoding.
func stripQualifiers(encoding string) string {
	return strings.TrimLeft(encoding, "rnNoORV")
}

// encodingsMatch compares a declared encoding with one reported by the
// runtime. BOOL is "c" on x86_64 and "B" on arm64; either is accepted for
// a declared BOOL.
func encodingsMatch(declared, actual string) bool {
	actual = stripQualifiers(actual)
	if declared == actual {
		return true
	}
	return declared == "c" && actual == "B"
}

// Signature is the Go-side signature of a binding, excluding the receiver.
type Signature struct {
	Args []reflect.Type

	// Ret is the result type, or nil for none.
	Ret reflect.Type
}

// VerifyMessage checks that the receiver responds to sel with a method whose
// signature matches sig. A nil receiver always passes, as messages to nil
// return zero.
func VerifyMessage(receiver unsafe.Pointer, sel Sel, sig Signature) error {
	inst, err := current()
	if err != nil {
		return err
	}
	if receiver == nil {
		return nil
	}
	name := inst.rt.SelectorName(sel)
	actual, err := inst.rt.MethodSignature(receiver, sel)
	if err != nil {
		return err
	}
	if len(actual.Args) != len(sig.Args) {
		return &ArityError{
			Selector: name,
			Declared: len(sig.Args),
			Actual:   len(actual.Args),
		}
	}

	ret := sig.Ret
	if ret == nil {
		ret = voidType
	}
	declared, err := EncodingOf(ret)
	if err != nil {
		return err
	}
	if !encodingsMatch(declared, actual.Return) {
		return &MismatchError{
			Selector: name,
			Index:    -1,
			Declared: declared,
			Actual:   actual.Return,
		}
	}
	for ii, arg := range sig.Args {
		declared, err := EncodingOf(arg)
		if err != nil {
			return err
		}
		if !encodingsMatch(declared, actual.Args[ii]) {
			return &MismatchError{
				Selector: name,
				Index:    ii,
				Declared: declared,
				Actual:   actual.Args[ii],
			}
		}
	}
	return nil
}

// MustVerify is [VerifyMessage], panicking with a [*BindingError] naming fn
// on failure.
func MustVerify(fn string, receiver unsafe.Pointer, sel Sel, sig Signature) {
	if err := VerifyMessage(receiver, sel, sig); err != nil {
		panic(&BindingError{Func: fn, Err: err})
	}
}
