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
	"iter"

	"github.com/BrainiumLLC/objc-util/syntax"
)

type Import struct {
	Path  string `json:"path"`
	Alias string `json:"alias,omitempty"`
}

type Class struct {
	name string
	span syntax.Span
}

func (c *Class) Name() string {
	return c.name
}

func (c *Class) Span() syntax.Span {
	return c.span
}

// Func is the name of the generated class accessor.
func (c *Class) Func() string {
	return ClassFunc(c.name)
}

// DeclarationSet is the compiled content of one declaration file.
type DeclarationSet struct {
	sourcePath string
	framework  string
	imports    []Import
	classes    []*Class
	bindings   []*Binding
}

func (s *DeclarationSet) SourcePath() string {
	return s.sourcePath
}

func (s *DeclarationSet) Framework() string {
	return s.framework
}

// Imports lists the packages referenced by binding types.
func (s *DeclarationSet) Imports() []Import {
	return s.imports
}

func (s *DeclarationSet) Classes() []*Class {
	return s.classes
}

func (s *DeclarationSet) Bindings() []*Binding {
	return s.bindings
}

// Constraints yields each distinct availability key with a representative
// availability, in first-use order.
func (s *DeclarationSet) Constraints() iter.Seq2[string, Availability] {
	return func(yield func(string, Availability) bool) {
		seen := make(map[string]struct{})
		for _, binding := range s.bindings {
			key := binding.availability.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if !yield(key, binding.availability) {
				return
			}
		}
	}
}

// Availability is the union of every binding's availability.
func (s *DeclarationSet) Availability() Availability {
	var out Availability
	for _, binding := range s.bindings {
		out = out.Union(binding.availability)
	}
	return out
}
