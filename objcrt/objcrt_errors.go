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
	"errors"
	"fmt"
)

var (
	ErrNotInstalled     = errors.New("objcrt: no runtime installed")
	ErrAlreadyInstalled = errors.New("objcrt: a different runtime is already installed")
)

// MismatchError reports a declared type that disagrees with the method
// signature reported by the runtime.
type MismatchError struct {
	Selector string

	// Index of the mismatched argument, or -1 for the result.
	Index int

	Declared string
	Actual   string
}

func (err *MismatchError) Error() string {
	if err.Index < 0 {
		return fmt.Sprintf(
			"`%s` returns `%s`, but the binding declares `%s`",
			err.Selector, err.Actual, err.Declared,
		)
	}
	return fmt.Sprintf(
		"argument %d of `%s` has type `%s`, but the binding declares `%s`",
		err.Index, err.Selector, err.Actual, err.Declared,
	)
}

// ArityError reports a binding whose argument count disagrees with the
// method signature reported by the runtime.
type ArityError struct {
	Selector string
	Declared int
	Actual   int
}

func (err *ArityError) Error() string {
	return fmt.Sprintf(
		"`%s` takes %d arguments, but the binding declares %d",
		err.Selector, err.Actual, err.Declared,
	)
}

// BindingError is the panic value of a failed binding verification.
type BindingError struct {
	Func string
	Err  error
}

func (err *BindingError) Error() string {
	return fmt.Sprintf("Binding error on `%s`: %v", err.Func, err.Err)
}

func (err *BindingError) Unwrap() error {
	return err.Err
}

// AvailabilityError is the panic value of a binding called on an OS
// version older than it was declared for.
type AvailabilityError struct {
	Func     string
	OS       OS
	Required Version
	Found    Version

	// Err is set if the OS version could not be determined.
	Err error
}

func (err *AvailabilityError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf(
			"`%s` requires `%s %s`: %v",
			err.Func, err.OS, err.Required, err.Err,
		)
	}
	return fmt.Sprintf(
		"`%s` requires `%s %s` but found `%s`",
		err.Func, err.OS, err.Required, err.Found,
	)
}

func (err *AvailabilityError) Unwrap() error {
	return err.Err
}

// MessageError is returned by [Send] when the runtime fails to deliver a
// message or its result cannot be decoded.
type MessageError struct {
	Selector string
	Err      error
}

func (err *MessageError) Error() string {
	return fmt.Sprintf("objcrt: sending `%s`: %v", err.Selector, err.Err)
}

func (err *MessageError) Unwrap() error {
	return err.Err
}
