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

// Package objcrt is the support library for generated Objective-C bindings.
//
// Generated code resolves selectors and classes through this package and
// sends messages with [Send]. The messaging runtime itself is supplied by
// the host program as a [Runtime] and registered with [Install].
package objcrt

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Sel is an opaque selector token. The zero Sel is never a valid selector.
type Sel uintptr

// Object is the opaque target of a message send. Only pointers to Object
// are meaningful.
type Object struct {
	_ uintptr
}

// Class is an opaque class token.
type Class struct {
	_ uintptr
}

// BOOL is the Objective-C boolean type.
type BOOL int8

const (
	NO  BOOL = 0
	YES BOOL = 1
)

type NSInteger int

type NSUInteger uint

// Void is the result type of messages that return nothing.
type Void struct{}

// MethodSignature describes a method as the runtime reports it. Args holds
// the encodings of the message arguments, excluding the receiver and the
// selector.
type MethodSignature struct {
	Return string
	Args   []string
}

// Runtime is the messaging runtime that generated bindings call into.
type Runtime interface {
	// LookupSelector returns the selector registered under name,
	// registering it if needed.
	LookupSelector(name string) Sel

	// LookupClass returns the class named name, or nil if no such class is
	// loaded.
	LookupClass(name string) *Class

	SelectorName(sel Sel) string

	MethodSignature(receiver unsafe.Pointer, sel Sel) (MethodSignature, error)

	Send(receiver unsafe.Pointer, sel Sel, args []any) (any, error)

	LoadFramework(name string) error

	OperatingSystemVersion() (Version, error)
}

type installation struct {
	rt        Runtime
	osVersion func() (Version, error)
}

var (
	installMu sync.Mutex
	installed atomic.Pointer[installation]

	defaultLoader = NewLoader()
)

// Install registers rt as the process-wide runtime, loads every linked
// framework and resolves every pending selector and class reference.
// Installing the same runtime again is a no-op; installing a different one
// fails with [ErrAlreadyInstalled].
func Install(rt Runtime) error {
	installMu.Lock()
	defer installMu.Unlock()

	if inst := installed.Load(); inst != nil {
		if inst.rt == rt {
			return nil
		}
		return ErrAlreadyInstalled
	}
	if err := defaultLoader.Load(rt); err != nil {
		return err
	}
	installed.Store(&installation{
		rt:        rt,
		osVersion: sync.OnceValues(rt.OperatingSystemVersion),
	})
	return nil
}

func current() (*installation, error) {
	inst := installed.Load()
	if inst == nil {
		return nil, ErrNotInstalled
	}
	return inst, nil
}

func mustCurrent() *installation {
	inst, err := current()
	if err != nil {
		panic(err)
	}
	return inst
}

// LookupSelector returns the selector for name. It panics if no runtime is
// installed.
func LookupSelector(name string) Sel {
	return mustCurrent().rt.LookupSelector(name)
}

// LookupClass returns the class named name, or nil. It panics if no
// runtime is installed.
func LookupClass(name string) *Class {
	return mustCurrent().rt.LookupClass(name)
}

// SelectorName returns the name of sel, or "" if no runtime is installed.
func SelectorName(sel Sel) string {
	inst, err := current()
	if err != nil {
		return ""
	}
	return inst.rt.SelectorName(sel)
}

// LinkFramework records that generated code depends on the named
// framework. It is loaded when the runtime is installed.
func LinkFramework(name string) {
	defaultLoader.LinkFramework(name)
}

// NewSelectorRef returns a reference to the selector for name that is
// resolved when the runtime is installed.
func NewSelectorRef(name string) *SelectorRef {
	return defaultLoader.SelectorRef(name)
}

// NewClassRef returns a reference to the class named name that is resolved
// when the runtime is installed.
func NewClassRef(name string) *ClassRef {
	return defaultLoader.ClassRef(name)
}
