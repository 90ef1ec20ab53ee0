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
	"sync"
	"sync/atomic"
)

// Loader keeps the selector and class references declared by generated
// code, and resolves them against a runtime.
type Loader struct {
	mu         sync.Mutex
	rt         Runtime
	frameworks []string
	selectors  []*SelectorRef
	classes    []*ClassRef
}

func NewLoader() *Loader {
	return &Loader{}
}

// Load loads the linked frameworks into rt and resolves all references.
// References created afterwards are resolved immediately.
func (l *Loader) Load(rt Runtime) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range l.frameworks {
		if err := rt.LoadFramework(name); err != nil {
			return fmt.Errorf("objcrt: loading framework %q: %w", name, err)
		}
	}
	for _, ref := range l.selectors {
		ref.resolve(rt)
	}
	for _, ref := range l.classes {
		ref.resolve(rt)
	}
	l.rt = rt
	return nil
}

// LinkFramework adds name to the frameworks loaded by [Loader.Load]. If the
// loader has already run, the framework is loaded immediately, and a
// failure panics.
func (l *Loader) LinkFramework(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, linked := range l.frameworks {
		if linked == name {
			return
		}
	}
	l.frameworks = append(l.frameworks, name)
	if l.rt != nil {
		if err := l.rt.LoadFramework(name); err != nil {
			panic(fmt.Errorf("objcrt: loading framework %q: %w", name, err))
		}
	}
}

func (l *Loader) SelectorRef(name string) *SelectorRef {
	l.mu.Lock()
	defer l.mu.Unlock()

	ref := &SelectorRef{name: name}
	if l.rt != nil {
		ref.resolve(l.rt)
	} else {
		l.selectors = append(l.selectors, ref)
	}
	return ref
}

func (l *Loader) ClassRef(name string) *ClassRef {
	l.mu.Lock()
	defer l.mu.Unlock()

	ref := &ClassRef{name: name}
	if l.rt != nil {
		ref.resolve(l.rt)
	} else {
		l.classes = append(l.classes, ref)
	}
	return ref
}

// SelectorRef is a selector resolved once, when the runtime is installed.
type SelectorRef struct {
	name string
	sel  atomic.Uintptr
}

func (r *SelectorRef) resolve(rt Runtime) {
	r.sel.Store(uintptr(rt.LookupSelector(r.name)))
}

func (r *SelectorRef) Name() string {
	return r.name
}

// Load returns the resolved selector. It panics if the reference has not
// been resolved.
func (r *SelectorRef) Load() Sel {
	sel := r.sel.Load()
	if sel == 0 {
		panic(fmt.Errorf("%w: selector %q is unresolved", ErrNotInstalled, r.name))
	}
	return Sel(sel)
}

// ClassRef is a class resolved once, when the runtime is installed.
type ClassRef struct {
	name     string
	resolved atomic.Bool
	class    atomic.Pointer[Class]
}

func (r *ClassRef) resolve(rt Runtime) {
	r.class.Store(rt.LookupClass(r.name))
	r.resolved.Store(true)
}

func (r *ClassRef) Name() string {
	return r.name
}

// Load returns the resolved class, which is nil if the runtime has no
// class of that name. It panics if the reference has not been resolved.
func (r *ClassRef) Load() *Class {
	if !r.resolved.Load() {
		panic(fmt.Errorf("%w: class %q is unresolved", ErrNotInstalled, r.name))
	}
	return r.class.Load()
}
