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
	"unsafe"
)

// Send delivers the message sel with args to receiver, and decodes the
// result as R. Use [Void] for messages without a result.
func Send[R any](receiver unsafe.Pointer, sel Sel, args ...any) (R, error) {
	var zero R
	inst, err := current()
	if err != nil {
		return zero, err
	}
	out, err := inst.rt.Send(receiver, sel, args)
	if err != nil {
		return zero, &MessageError{
			Selector: inst.rt.SelectorName(sel),
			Err:      err,
		}
	}
	result, err := decodeResult[R](out)
	if err != nil {
		return zero, &MessageError{
			Selector: inst.rt.SelectorName(sel),
			Err:      err,
		}
	}
	return result, nil
}

func decodeResult[R any](out any) (R, error) {
	var zero R
	if out == nil {
		return zero, nil
	}
	if result, ok := out.(R); ok {
		return result, nil
	}

	target := reflect.TypeFor[R]()
	if target == voidType {
		return zero, nil
	}
	value := reflect.ValueOf(out)

	if ptr, ok := out.(unsafe.Pointer); ok && target.Kind() == reflect.Pointer {
		if ptr == nil {
			return zero, nil
		}
		return reflect.NewAt(target.Elem(), ptr).Interface().(R), nil
	}
	if isScalar(value.Kind()) && isScalar(target.Kind()) {
		return value.Convert(target).Interface().(R), nil
	}
	return zero, fmt.Errorf("cannot decode result of type %T as %v", out, target)
}

func isScalar(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
