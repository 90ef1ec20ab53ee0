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

// Package codegen renders a compiled declaration set as Go source.
//
// Each binding produces three functions: a dispatch wrapper that sends the
// message, a selector accessor, and an availability predicate. Wrappers and
// accessors are written to files gated by the binding's build constraint;
// predicates are written to an ungated file so that callers on every
// platform can ask whether a binding is usable.
package codegen

import (
	"bytes"
	"fmt"
	"go/build/constraint"
	"path"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/BrainiumLLC/objc-util/compiler"
)

const rtPkg = compiler.RuntimePackage

// Mode selects whether generated wrappers verify their calls.
type Mode uint8

const (
	// ModeTags emits checks guarded by objcrt.Checked, so that they are
	// compiled out by the objcrt_unchecked build tag.
	ModeTags Mode = iota
	ModeChecked
	ModeUnchecked
)

func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "tags":
		return ModeTags, nil
	case "checked":
		return ModeChecked, nil
	case "unchecked":
		return ModeUnchecked, nil
	}
	return 0, fmt.Errorf("unknown mode %q (expected 'tags', 'checked', or 'unchecked')", name)
}

func (m Mode) String() string {
	switch m {
	case ModeTags:
		return "tags"
	case ModeChecked:
		return "checked"
	case ModeUnchecked:
		return "unchecked"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

type GenerateOption interface {
	applyGenerateOption(opts *GenerateOptions)
}

type generateOption func(opts *GenerateOptions)

func (opt generateOption) applyGenerateOption(opts *GenerateOptions) {
	opt(opts)
}

type GenerateOptions struct {
	packageName string
	baseName    string
	strategy    TokenStrategy
	mode        Mode
}

func NewGenerateOptions(opts ...GenerateOption) *GenerateOptions {
	out := &GenerateOptions{
		strategy: CachedStrategy{},
	}
	for _, opt := range opts {
		opt.applyGenerateOption(out)
	}
	return out
}

// WithPackageName sets the package clause of generated files. The default
// is derived from the base name.
func WithPackageName(name string) GenerateOption {
	return generateOption(func(opts *GenerateOptions) {
		opts.packageName = name
	})
}

// WithBaseName sets the file name prefix of generated files. The default
// is the source file name without its extension.
func WithBaseName(name string) GenerateOption {
	return generateOption(func(opts *GenerateOptions) {
		opts.baseName = name
	})
}

func WithStrategy(strategy TokenStrategy) GenerateOption {
	return generateOption(func(opts *GenerateOptions) {
		opts.strategy = strategy
	})
}

func WithMode(mode Mode) GenerateOption {
	return generateOption(func(opts *GenerateOptions) {
		opts.mode = mode
	})
}

// Output is the set of files generated from one declaration set.
type Output struct {
	Files []*File
}

// File is one generated Go source file.
type File struct {
	Name string

	// Constraint is the file's build constraint, or nil if the file is
	// built on every platform.
	Constraint constraint.Expr

	Content []byte
}

// Lookup returns the file with the given name, or nil.
func (o *Output) Lookup(name string) *File {
	for _, file := range o.Files {
		if file.Name == name {
			return file
		}
	}
	return nil
}

// Generate renders set as Go source files. Generation is a pure function
// of its inputs.
func Generate(set *compiler.DeclarationSet, opts ...GenerateOption) (*Output, error) {
	options := NewGenerateOptions(opts...)
	baseName := options.baseName
	if baseName == "" {
		baseName = defaultBaseName(set.SourcePath())
	}
	packageName := options.packageName
	if packageName == "" {
		packageName = identifierFor(baseName)
	}
	g := &generator{
		set:         set,
		options:     options,
		baseName:    baseName,
		packageName: packageName,
	}
	return g.generate()
}

func defaultBaseName(sourcePath string) string {
	base := path.Base(strings.ReplaceAll(sourcePath, "\\", "/"))
	if base == "." || base == "/" {
		return "bindings"
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = base[:len(base)-len(ext)]
	}
	return base
}

// identifierFor lowercases name and drops characters that cannot appear
// in a package name.
func identifierFor(name string) string {
	var buf strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '_' || unicode.IsLetter(r):
			buf.WriteRune(r)
		case unicode.IsDigit(r) && buf.Len() > 0:
			buf.WriteRune(r)
		}
	}
	if buf.Len() == 0 {
		return "bindings"
	}
	return buf.String()
}

type generator struct {
	set         *compiler.DeclarationSet
	options     *GenerateOptions
	baseName    string
	packageName string
}

type gatedFile struct {
	key          string
	availability compiler.Availability
	file         *jen.File
}

func (g *generator) newFile(expr constraint.Expr) *jen.File {
	f := jen.NewFile(g.packageName)
	f.HeaderComment("Code generated by objcgen. DO NOT EDIT.")
	if source := g.set.SourcePath(); source != "" {
		f.HeaderComment("Source: " + source)
	}
	if expr != nil {
		f.HeaderComment("//go:build " + expr.String())
	}
	for _, imp := range g.set.Imports() {
		switch imp.Alias {
		case "":
		case path.Base(imp.Path):
			f.ImportName(imp.Path, imp.Alias)
		default:
			f.ImportAlias(imp.Path, imp.Alias)
		}
	}
	return f
}

func (g *generator) generate() (*Output, error) {
	base := g.newFile(nil)
	var gated []*gatedFile
	byKey := make(map[string]*gatedFile)

	addGated := func(key string, availability compiler.Availability) *gatedFile {
		out := &gatedFile{
			key:          key,
			availability: availability,
			file:         g.newFile(availability.Constraint()),
		}
		out.file.Func().Id("init").Params().Block(
			jen.Qual(rtPkg, "LinkFramework").Call(jen.Lit(g.set.Framework())),
		)
		out.file.Line()
		gated = append(gated, out)
		byKey[key] = out
		return out
	}

	for key, availability := range g.set.Constraints() {
		addGated(key, availability)
	}
	for _, binding := range g.set.Bindings() {
		out := byKey[binding.Availability().Key()]
		g.emitSelectorAccessor(out.file, binding)
		g.emitWrapper(out.file, binding)
		g.emitSupports(base, binding)
	}

	if classes := g.set.Classes(); len(classes) > 0 {
		union := g.set.Availability()
		key := union.Key()
		if len(union.Entries()) == 0 {
			union = darwinAvailability()
			key = union.Key()
		}
		out, ok := byKey[key]
		if !ok {
			out = addGated(key, union)
		}
		for _, class := range classes {
			g.emitClassAccessor(out.file, class)
		}
	}

	output := &Output{}
	if len(g.set.Bindings()) > 0 {
		content, err := render(base)
		if err != nil {
			return nil, err
		}
		output.Files = append(output.Files, &File{
			Name:    g.baseName + ".go",
			Content: content,
		})
	}
	for _, out := range gated {
		content, err := render(out.file)
		if err != nil {
			return nil, err
		}
		output.Files = append(output.Files, &File{
			Name:       g.baseName + "_" + out.key + ".go",
			Constraint: out.availability.Constraint(),
			Content:    content,
		})
	}
	return output, nil
}

// darwinAvailability declares every Apple OS at version zero.
func darwinAvailability() compiler.Availability {
	return compiler.NewAvailability(
		compiler.AvailabilityEntry{OS: compiler.MacOS},
		compiler.AvailabilityEntry{OS: compiler.IOS},
	)
}

func render(f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	return buf.Bytes(), nil
}
