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

package codegen

import (
	"path"

	"github.com/dave/jennifer/jen"

	"github.com/BrainiumLLC/objc-util/compiler"
)

func typeCode(t *compiler.Type) *jen.Statement {
	switch t.Kind() {
	case compiler.TypePointer:
		return jen.Op("*").Add(typeCode(t.Elem()))
	case compiler.TypeSlice:
		return jen.Index().Add(typeCode(t.Elem()))
	case compiler.TypeArray:
		return jen.Index(jen.Lit(int(t.Len()))).Add(typeCode(t.Elem()))
	}
	if t.PkgPath() == "" {
		return jen.Id(t.Name())
	}
	return jen.Qual(t.PkgPath(), t.Name())
}

func reflectType(t *compiler.Type) *jen.Statement {
	return jen.Qual("reflect", "TypeFor").Types(typeCode(t)).Call()
}

func osConst(os compiler.OS) *jen.Statement {
	switch os {
	case compiler.IOS:
		return jen.Qual(rtPkg, "IOS")
	}
	return jen.Qual(rtPkg, "MacOS")
}

func versionArgs(v compiler.Version) []jen.Code {
	return []jen.Code{
		jen.Lit(int(v.Major)),
		jen.Lit(int(v.Minor)),
		jen.Lit(int(v.Patch)),
	}
}

// freshName returns name, or name with underscores appended if it is
// already taken.
func freshName(name string, used map[string]bool) string {
	for used[name] {
		name += "_"
	}
	used[name] = true
	return name
}

// wrapperIdents are identifiers every wrapper body may refer to.
var wrapperIdents = []string{"runtime", "unsafe", "reflect", path.Base(rtPkg), "panic", "nil"}

// paramNames picks local names for the receiver and arguments of b. A
// parameter whose name would shadow a package, type or builtin used by
// the wrapper gets underscores appended. The returned set holds every
// name taken so far.
func (g *generator) paramNames(b *compiler.Binding) ([]string, map[string]bool) {
	reserved := make(map[string]bool)
	for _, name := range wrapperIdents {
		reserved[name] = true
	}
	for _, imp := range g.set.Imports() {
		if imp.Alias != "" {
			reserved[imp.Alias] = true
		} else {
			reserved[path.Base(imp.Path)] = true
		}
	}
	reserved[b.SelectorFunc()] = true

	params := append([]compiler.Param{b.Receiver()}, b.Args()...)
	types := []*compiler.Type{b.Result()}
	for _, param := range params {
		types = append(types, param.Type())
	}
	for _, t := range types {
		for ; t != nil; t = t.Elem() {
			if t.Kind() == compiler.TypeNamed && t.PkgPath() == "" {
				reserved[t.Name()] = true
			}
		}
	}

	used := make(map[string]bool)
	for name := range reserved {
		used[name] = true
	}
	for _, param := range params {
		used[param.Name()] = true
	}
	names := make([]string, len(params))
	for ii, param := range params {
		names[ii] = param.Name()
		if reserved[names[ii]] {
			names[ii] = freshName(names[ii], used)
		}
	}
	return names, used
}

// checks wraps stmts according to the generation mode. Unchecked
// generation never calls it.
func (g *generator) checks(stmts ...jen.Code) []jen.Code {
	if g.options.mode == ModeTags {
		return []jen.Code{jen.If(jen.Qual(rtPkg, "Checked")).Block(stmts...)}
	}
	return stmts
}

func (g *generator) site(name string, offset uint32) TokenSite {
	return TokenSite{
		SourcePath: g.set.SourcePath(),
		Name:       name,
		Offset:     offset,
	}
}

func (g *generator) emitSelectorAccessor(f *jen.File, b *compiler.Binding) {
	span := b.Span()
	message := b.Message().String()
	token := g.options.strategy.Selector(f, g.site(message, span.Start()))
	var body []jen.Code
	if g.options.mode != ModeUnchecked {
		body = g.checks(availabilityAssertion(b.SelectorFunc(), b.Availability()))
	}
	body = append(body, jen.Return(token))
	f.Commentf("%s returns the selector for %q.", b.SelectorFunc(), message)
	f.Func().Id(b.SelectorFunc()).Params().Qual(rtPkg, "Sel").Block(body...)
	f.Line()
}

func (g *generator) emitClassAccessor(f *jen.File, class *compiler.Class) {
	span := class.Span()
	token := g.options.strategy.Class(f, g.site(class.Name(), span.Start()))
	f.Commentf("%s returns the class %s, or nil if it is not loaded.", class.Func(), class.Name())
	f.Func().Id(class.Func()).Params().Op("*").Qual(rtPkg, "Class").Block(
		jen.Return(token),
	)
	f.Line()
}

func (g *generator) emitSupports(f *jen.File, b *compiler.Binding) {
	var cases []jen.Code
	for _, entry := range b.Availability().Entries() {
		cases = append(cases, jen.Case(jen.Lit(entry.OS.GOOS())).Block(
			jen.Return(jen.Qual(rtPkg, "OSAtLeast").Call(versionArgs(entry.Version)...)),
		))
	}
	cases = append(cases, jen.Default().Block(jen.Return(jen.False())))

	f.Commentf("%s reports whether %s can be called on the running system.", b.SupportsFunc(), b.Name())
	f.Func().Id(b.SupportsFunc()).Params().Bool().Block(
		jen.Switch(jen.Qual("runtime", "GOOS")).Block(cases...),
	)
	f.Line()
}

func (g *generator) emitDoc(f *jen.File, b *compiler.Binding) {
	doc := b.Doc()
	if len(doc) == 0 {
		f.Commentf("%s sends %q to %s.", b.Name(), b.Message().String(), b.Receiver().Name())
	}
	for _, line := range doc {
		if line == "" {
			f.Comment("//")
		} else {
			f.Comment(line)
		}
	}
	if message, ok := b.Deprecated(); ok {
		f.Comment("//")
		if message == "" {
			message = "do not use " + b.Name() + "."
		}
		f.Comment("Deprecated: " + message)
	}
	if b.NoInline() {
		f.Comment("//go:noinline")
	}
}

// availabilityAssertion panics at call time if the running OS is older
// than declared. Files gated to several OSes switch on runtime.GOOS.
func availabilityAssertion(name string, availability compiler.Availability) jen.Code {
	assert := func(entry compiler.AvailabilityEntry) *jen.Statement {
		args := append([]jen.Code{jen.Lit(name), osConst(entry.OS)}, versionArgs(entry.Version)...)
		return jen.Qual(rtPkg, "AssertOSAtLeast").Call(args...)
	}
	entries := availability.Entries()
	if len(entries) == 1 {
		return assert(entries[0])
	}
	var cases []jen.Code
	for _, entry := range entries {
		cases = append(cases, jen.Case(jen.Lit(entry.OS.GOOS())).Block(assert(entry)))
	}
	return jen.Switch(jen.Qual("runtime", "GOOS")).Block(cases...)
}

func (g *generator) emitWrapper(f *jen.File, b *compiler.Binding) {
	name := b.Name()
	receiver := b.Receiver()
	locals, used := g.paramNames(b)

	params := []jen.Code{jen.Id(locals[0]).Add(typeCode(receiver.Type()))}
	var argNames, argTypes []jen.Code
	for ii, arg := range b.Args() {
		local := locals[ii+1]
		params = append(params, jen.Id(local).Add(typeCode(arg.Type())))
		argNames = append(argNames, jen.Id(local))
		argTypes = append(argTypes, reflectType(arg.Type()))
	}
	selVar := freshName("sel", used)
	resultVar := freshName("result", used)
	errVar := freshName("err", used)

	checked := g.options.mode != ModeUnchecked
	recvPtr := jen.Qual("unsafe", "Pointer").Call(jen.Id(locals[0]))

	var body []jen.Code
	if checked {
		body = append(body, g.checks(availabilityAssertion(name, b.Availability()))...)
	}
	body = append(body, jen.Id(selVar).Op(":=").Id(b.SelectorFunc()).Call())
	if checked {
		sig := jen.Dict{}
		if len(argTypes) > 0 {
			sig[jen.Id("Args")] = jen.Index().Qual("reflect", "Type").Values(argTypes...)
		}
		if result := b.Result(); result != nil {
			sig[jen.Id("Ret")] = reflectType(result)
		}
		body = append(body, g.checks(jen.Qual(rtPkg, "MustVerify").Call(
			jen.Lit(name),
			recvPtr.Clone(),
			jen.Id(selVar),
			jen.Qual(rtPkg, "Signature").Values(sig),
		))...)
	}

	sendArgs := append([]jen.Code{recvPtr, jen.Id(selVar)}, argNames...)
	if result := b.Result(); result != nil {
		body = append(body,
			jen.List(jen.Id(resultVar), jen.Id(errVar)).Op(":=").
				Qual(rtPkg, "Send").Types(typeCode(result)).Call(sendArgs...),
			jen.If(jen.Id(errVar).Op("!=").Nil()).Block(jen.Panic(jen.Id(errVar))),
			jen.Return(jen.Id(resultVar)),
		)
	} else {
		body = append(body,
			jen.If(
				jen.List(jen.Id("_"), jen.Id(errVar)).Op(":=").
					Qual(rtPkg, "Send").Types(jen.Qual(rtPkg, "Void")).Call(sendArgs...),
				jen.Id(errVar).Op("!=").Nil(),
			).Block(jen.Panic(jen.Id(errVar))),
		)
	}

	g.emitDoc(f, b)
	decl := f.Func().Id(name).Params(params...)
	if result := b.Result(); result != nil {
		decl.Add(typeCode(result))
	}
	decl.Block(body...)
	f.Line()
}
