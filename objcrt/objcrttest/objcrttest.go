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

// Package objcrttest provides an in-memory messaging runtime for testing
// generated bindings without an Objective-C runtime.
//
// The fake knows a small slice of Foundation: NSObject (alloc, new, init,
// retain, release, retainCount, hash, isEqual:, class), NSData (data,
// dataWithBytes:length:, initWithBytes:length:, length, bytes, hash,
// isEqual:) and NSProcessInfo (processInfo, operatingSystemVersion,
// processIdentifier).
package objcrttest

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"unsafe"

	"github.com/BrainiumLLC/objc-util/objcrt"
)

var DefaultOSVersion = objcrt.Version{Major: 14, Minor: 2, Patch: 0}

type Option func(*Runtime)

func WithOSVersion(version objcrt.Version) Option {
	return func(rt *Runtime) {
		rt.version = version
	}
}

// WithFrameworks replaces the set of frameworks that LoadFramework accepts.
func WithFrameworks(names ...string) Option {
	return func(rt *Runtime) {
		rt.known = names
	}
}

type Runtime struct {
	mu sync.Mutex

	selectors     map[string]objcrt.Sel
	selectorNames []string
	lookups       map[string]int

	classes      map[string]*class
	classesByPtr map[unsafe.Pointer]*class
	instances    map[unsafe.Pointer]*instance
	processInfo  *instance

	known  []string
	loaded []string

	version        objcrt.Version
	versionQueries int
}

var _ objcrt.Runtime = (*Runtime)(nil)

func New(opts ...Option) *Runtime {
	rt := &Runtime{
		selectors:    make(map[string]objcrt.Sel),
		lookups:      make(map[string]int),
		classes:      make(map[string]*class),
		classesByPtr: make(map[unsafe.Pointer]*class),
		instances:    make(map[unsafe.Pointer]*instance),
		known:        []string{"Foundation", "CoreFoundation", "AppKit", "UIKit"},
		version:      DefaultOSVersion,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.defineFoundation()
	return rt
}

var shared = sync.OnceValues(func() (*Runtime, error) {
	rt := New()
	return rt, objcrt.Install(rt)
})

// Install installs a fake runtime shared by every caller in the process,
// and returns it.
func Install(tb testing.TB) *Runtime {
	tb.Helper()
	rt, err := shared()
	if err != nil {
		tb.Fatalf("objcrttest: installing runtime: %v", err)
	}
	return rt
}

func (rt *Runtime) LookupSelector(name string) objcrt.Sel {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.lookups[name] += 1
	if sel, ok := rt.selectors[name]; ok {
		return sel
	}
	rt.selectorNames = append(rt.selectorNames, name)
	sel := objcrt.Sel(len(rt.selectorNames))
	rt.selectors[name] = sel
	return sel
}

// SelectorLookups returns how many times name has been looked up.
func (rt *Runtime) SelectorLookups(name string) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.lookups[name]
}

func (rt *Runtime) SelectorName(sel objcrt.Sel) string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	name, _ := rt.selectorName(sel)
	return name
}

func (rt *Runtime) selectorName(sel objcrt.Sel) (string, bool) {
	if sel == 0 || int(sel) > len(rt.selectorNames) {
		return "", false
	}
	return rt.selectorNames[sel-1], true
}

func (rt *Runtime) LookupClass(name string) *objcrt.Class {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if cls, ok := rt.classes[name]; ok {
		return &cls.cls
	}
	return nil
}

func (rt *Runtime) LoadFramework(name string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if !slices.Contains(rt.known, name) {
		return fmt.Errorf("framework %q not found", name)
	}
	if !slices.Contains(rt.loaded, name) {
		rt.loaded = append(rt.loaded, name)
	}
	return nil
}

// LoadedFrameworks returns the frameworks loaded so far, in load order.
func (rt *Runtime) LoadedFrameworks() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return slices.Clone(rt.loaded)
}

func (rt *Runtime) OperatingSystemVersion() (objcrt.Version, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.versionQueries += 1
	return rt.version, nil
}

// VersionQueries returns how many times the OS version has been queried.
func (rt *Runtime) VersionQueries() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.versionQueries
}

func (rt *Runtime) MethodSignature(
	receiver unsafe.Pointer,
	sel objcrt.Sel,
) (objcrt.MethodSignature, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	m, _, _, err := rt.findMethod(receiver, sel)
	if err != nil {
		return objcrt.MethodSignature{}, err
	}
	return objcrt.MethodSignature{
		Return: m.sig.Return,
		Args:   slices.Clone(m.sig.Args),
	}, nil
}

// Send delivers a message. Messages to a nil receiver return nil.
func (rt *Runtime) Send(receiver unsafe.Pointer, sel objcrt.Sel, args []any) (any, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if receiver == nil {
		return nil, nil
	}
	m, self, cls, err := rt.findMethod(receiver, sel)
	if err != nil {
		return nil, err
	}
	if len(args) != len(m.sig.Args) {
		name, _ := rt.selectorName(sel)
		return nil, fmt.Errorf(
			"%s takes %d arguments, got %d",
			name, len(m.sig.Args), len(args),
		)
	}
	return m.imp(rt, self, cls, args)
}

func (rt *Runtime) findMethod(
	receiver unsafe.Pointer,
	sel objcrt.Sel,
) (*method, *instance, *class, error) {
	name, ok := rt.selectorName(sel)
	if !ok {
		return nil, nil, nil, fmt.Errorf("invalid selector %d", sel)
	}
	if self, ok := rt.instances[receiver]; ok {
		for cls := self.class; cls != nil; cls = cls.super {
			if m, ok := cls.instanceMethods[name]; ok {
				return m, self, self.class, nil
			}
		}
		return nil, nil, nil, fmt.Errorf(
			"unrecognized selector -[%s %s] sent to instance %p",
			self.class.name, name, receiver,
		)
	}
	if target, ok := rt.classesByPtr[receiver]; ok {
		for cls := target; cls != nil; cls = cls.super {
			if m, ok := cls.classMethods[name]; ok {
				return m, nil, target, nil
			}
		}
		return nil, nil, nil, fmt.Errorf(
			"unrecognized selector +[%s %s] sent to class %p",
			target.name, name, receiver,
		)
	}
	return nil, nil, nil, fmt.Errorf("message %s sent to unknown receiver %p", name, receiver)
}

// Bytes returns a copy of the contents of an NSData instance.
func (rt *Runtime) Bytes(obj *objcrt.Object) ([]byte, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	self, ok := rt.instances[unsafe.Pointer(obj)]
	if !ok || !self.isKindOf("NSData") {
		return nil, false
	}
	return slices.Clone(self.data), true
}

// RetainCount returns the reference count of obj.
func (rt *Runtime) RetainCount(obj *objcrt.Object) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if self, ok := rt.instances[unsafe.Pointer(obj)]; ok {
		return self.refs
	}
	return 0
}
