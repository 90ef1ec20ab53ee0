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
	"go/token"
	"path"

	"github.com/BrainiumLLC/objc-util/syntax"
)

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	sourcePath string
}

// WithSourcePath records the path of the declaration file. It is used to
// make generated symbol names unique across files.
func WithSourcePath(sourcePath string) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.sourcePath = sourcePath
	})
}

type CompileResult struct {
	set *DeclarationSet

	Errors   []*Error
	Warnings []*Warning
}

// DeclarationSet returns the compiled set, or nil if there were errors.
func (r *CompileResult) DeclarationSet() *DeclarationSet {
	return r.set
}

func Compile(file *syntax.File, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(file)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(file *syntax.File) CompileResult {
	c := compiler{
		opts: opts,
		file: file,
		set: &DeclarationSet{
			sourcePath: opts.sourcePath,
		},
		importsByAlias: make(map[string]*importInfo),
		generatedNames: make(map[string]string),
		classes:        make(map[string]struct{}),
	}
	c.compileFile()
	if len(c.errors) > 0 {
		return CompileResult{
			Errors:   c.errors,
			Warnings: c.warnings,
		}
	}
	return CompileResult{
		set:      c.set,
		Warnings: c.warnings,
	}
}

type compiler struct {
	opts     *CompileOptions
	file     *syntax.File
	set      *DeclarationSet
	errors   []*Error
	warnings []*Warning

	// Set by registerImports()
	imports        []*importInfo
	importsByAlias map[string]*importInfo

	// Generated Go name -> name of the declaration that produced it.
	generatedNames map[string]string
	classes        map[string]struct{}
}

type importInfo struct {
	node  *syntax.Import
	path  string
	alias string
	used  bool
}

func (c *compiler) err(err error) {
	c.errors = append(c.errors, err.(*Error))
}

func (c *compiler) warn(warning *Warning) {
	c.warnings = append(c.warnings, warning)
}

func (c *compiler) compileFile() {
	c.compileFramework()
	c.registerImports()

	for node := range c.file.ChildNodes() {
		switch node := node.(type) {
		case *syntax.Class:
			c.compileClass(node)
		case *syntax.FuncDecl:
			binding, err := c.compileBinding(node)
			if err != nil {
				c.err(err)
				continue
			}
			if err := c.claimBindingNames(binding); err != nil {
				c.err(err)
				continue
			}
			c.set.bindings = append(c.set.bindings, binding)
		}
	}

	c.compileImports()
}

func (c *compiler) compileFramework() {
	var first syntax.Node
	for node := range c.file.ChildNodes() {
		switch node.(type) {
		case *syntax.Space, *syntax.Newline, *syntax.Comment:
			continue
		}
		first = node
		break
	}

	var found *syntax.Framework
	for node := range c.file.Frameworks() {
		if found != nil {
			c.err(errDuplicateFramework(node.Span()))
			continue
		}
		found = node
	}
	if found == nil {
		c.err(errMissingFramework())
		return
	}
	if first != found {
		c.err(errFrameworkNotFirst(found.Span()))
	}

	name := found.Name().Get()
	if !isIdent(name) {
		c.err(errInvalidFrameworkName(name, found.Name().Span()))
		return
	}
	c.set.framework = name
}

func (c *compiler) registerImports() {
	for node := range c.file.Imports() {
		importPath := node.Path().Get()
		alias := path.Base(importPath)
		if node.Alias() != nil {
			alias = node.Alias().Get()
		}
		if prev, ok := c.importsByAlias[alias]; ok {
			c.err(errImportAsConflict(prev.path, importPath, alias, node.Span()))
			continue
		}
		info := &importInfo{
			node:  node,
			path:  importPath,
			alias: alias,
		}
		c.imports = append(c.imports, info)
		c.importsByAlias[alias] = info
	}
}

func (c *compiler) compileImports() {
	for _, info := range c.imports {
		if !info.used {
			c.warn(warnUnusedImport(info.path, info.node.Span()))
			continue
		}
		c.set.imports = append(c.set.imports, Import{
			Path:  info.path,
			Alias: info.alias,
		})
	}
}

func (c *compiler) compileClass(node *syntax.Class) {
	name := node.Name().Get()
	if _, dup := c.classes[name]; dup {
		c.warn(warnDuplicateClass(name, node.Span()))
		return
	}
	c.classes[name] = struct{}{}
	class := &Class{
		name: name,
		span: node.Name().Span(),
	}
	if err := c.claimName(class.Func(), name, class.span); err != nil {
		c.err(err)
		return
	}
	c.set.classes = append(c.set.classes, class)
}

func (c *compiler) claimBindingNames(binding *Binding) error {
	for _, name := range []string{
		binding.name,
		binding.SelectorFunc(),
		binding.SupportsFunc(),
	} {
		if err := c.claimName(name, binding.name, binding.span); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) claimName(generated, decl string, span syntax.Span) error {
	if prev, ok := c.generatedNames[generated]; ok {
		return errDuplicateGeneratedName(generated, decl, prev, span)
	}
	c.generatedNames[generated] = decl
	return nil
}

func (c *compiler) compileBinding(decl *syntax.FuncDecl) (*Binding, error) {
	if err := checkModifiers(decl); err != nil {
		return nil, err
	}
	for _, param := range decl.Params() {
		if variadic := param.Variadic(); variadic != nil {
			return nil, errVariadicBinding(param.Span())
		}
	}
	if typeParams := decl.TypeParams(); typeParams != nil {
		return nil, errGenericBinding(typeParams.Span())
	}

	name := decl.Name()
	attr, err := findObjcAttr(decl)
	if err != nil {
		return nil, err
	}
	message, availability, err := compileObjcAttr(attr)
	if err != nil {
		return nil, err
	}

	params := decl.Params()
	if message.ArgCount() != len(params) {
		selector := attr.Args()[0].Value()
		return nil, errArityMismatch(message, name.Get(), len(params), selector.Span())
	}

	for _, param := range params {
		switch param.Kind() {
		case syntax.ParamTuple:
			return nil, errDestructuringParam(param.PatternSpan())
		case syntax.ParamSelf:
			return nil, errSelfParam(param.PatternSpan())
		}
		if param.Name().Get() == "_" {
			return nil, errDestructuringParam(param.PatternSpan())
		}
	}

	receiverNode := params[0]
	receiverType, err := c.resolveType(receiverNode.Type())
	if err != nil {
		return nil, err
	}
	if !receiverType.IsPointerLike() {
		return nil, errReceiverNotPointer(
			receiverNode.Type().String(),
			receiverNode.Type().Span(),
		)
	}

	if token.IsKeyword(name.Get()) {
		return nil, errInvalidName(name.Get(), name.Span())
	}
	seen := make(map[string]struct{}, len(params))
	resolved := make([]Param, 0, len(params))
	for ii, param := range params {
		paramName := param.Name()
		if token.IsKeyword(paramName.Get()) {
			return nil, errInvalidName(paramName.Get(), paramName.Span())
		}
		if _, dup := seen[paramName.Get()]; dup {
			return nil, errDuplicateParam(paramName.Get(), paramName.Span())
		}
		seen[paramName.Get()] = struct{}{}

		paramType := receiverType
		if ii > 0 {
			if paramType, err = c.resolveType(param.Type()); err != nil {
				return nil, err
			}
		}
		resolved = append(resolved, Param{
			name:  paramName.Get(),
			type_: paramType,
		})
	}

	var result *Type
	if resultNode := decl.Result(); resultNode != nil {
		if result, err = c.resolveType(resultNode); err != nil {
			return nil, err
		}
	}

	binding := &Binding{
		name:         name.Get(),
		receiver:     resolved[0],
		args:         resolved[1:],
		result:       result,
		message:      message,
		availability: availability,
		span:         name.Span(),
	}
	for _, comment := range decl.Doc() {
		binding.doc = append(binding.doc, comment.DocText())
	}
	for _, decorator := range decl.Decorators() {
		switch decorator.Name().Get() {
		case "noinline":
			binding.noInline = true
		case "deprecated":
			binding.deprecated = true
			for _, arg := range decorator.Args() {
				if text, ok := arg.Value().(*syntax.TextLit); ok {
					binding.deprecation = text.Get()
					break
				}
			}
		}
	}
	return binding, nil
}

func checkModifiers(decl *syntax.FuncDecl) error {
	for _, check := range []struct {
		kind syntax.ModifierKind
		err  func(syntax.Span) error
	}{
		{syntax.ModifierConst, errConstBinding},
		{syntax.ModifierAsync, errAsyncBinding},
		{syntax.ModifierUnsafe, errUnsafeBinding},
		{syntax.ModifierExtern, errBindingABI},
	} {
		for _, modifier := range decl.Modifiers() {
			if modifier.Kind() == check.kind {
				return check.err(modifier.Span())
			}
		}
	}
	return nil
}

func findObjcAttr(decl *syntax.FuncDecl) (*syntax.Decorator, error) {
	var found *syntax.Decorator
	for _, decorator := range decl.Decorators() {
		if decorator.Name().Get() != "objc" {
			continue
		}
		if found != nil {
			return nil, errDuplicateObjcAttr(decorator.Span())
		}
		found = decorator
	}
	if found == nil {
		return nil, errMissingObjcAttr(decl.Name().Get(), decl.Name().Span())
	}
	return found, nil
}

func compileObjcAttr(attr *syntax.Decorator) (MessageName, Availability, error) {
	args := attr.Args()
	if len(args) < 2 {
		return MessageName{}, Availability{}, errObjcAttrTooShort(attr.Span())
	}

	first := args[0]
	selector, isText := first.Value().(*syntax.TextLit)
	if first.Key() == nil || first.Key().Get() != "selector" || !isText {
		return MessageName{}, Availability{}, errObjcAttrSelectorFirst(first.Span())
	}
	message, err := ParseMessageName(selector.Get())
	if err != nil {
		return MessageName{}, Availability{}, err.(*Error).withSpan(selector.Span())
	}

	var availability Availability
	for _, arg := range args[1:] {
		key := arg.Key()
		if key == nil {
			return MessageName{}, Availability{}, errUnknownOS(syntax.Unparse(arg), arg.Span())
		}
		os, ok := ParseOS(key.Get())
		if !ok {
			return MessageName{}, Availability{}, errUnknownOS(key.Get(), key.Span())
		}
		if availability.Has(os) {
			return MessageName{}, Availability{}, errDuplicateOS(os, key.Span())
		}
		text, isText := arg.Value().(*syntax.TextLit)
		if !isText {
			return MessageName{}, Availability{}, errInvalidVersion(syntax.Unparse(arg.Value())).withSpan(arg.Value().Span())
		}
		version, err := ParseVersion(text.Get())
		if err != nil {
			return MessageName{}, Availability{}, err.(*Error).withSpan(text.Span())
		}
		availability.entries = append(availability.entries, AvailabilityEntry{
			OS:      os,
			Version: version,
		})
	}
	return message, availability, nil
}

func (c *compiler) resolveType(node *syntax.Type) (*Type, error) {
	switch node.Kind() {
	case syntax.TypePointer:
		elem, err := c.resolveType(node.Elem())
		if err != nil {
			return nil, err
		}
		return PointerTo(elem), nil
	case syntax.TypeSlice, syntax.TypeArray:
		elem, err := c.resolveType(node.Elem())
		if err != nil {
			return nil, err
		}
		if node.Kind() == syntax.TypeSlice {
			return &Type{kind: TypeSlice, elem: elem}, nil
		}
		return &Type{kind: TypeArray, elem: elem, length: node.Length().Get()}, nil
	}

	name := node.Name().Get()
	if scope := node.Scope(); scope != nil {
		info, ok := c.importsByAlias[scope.Get()]
		if !ok {
			return nil, errUnknownImportAlias(scope.Get(), scope.Span())
		}
		info.used = true
		return NamedType(info.path, name), nil
	}
	pkgPath, ok := builtinTypes[name]
	if !ok {
		return nil, errUnknownType(name, node.Span())
	}
	return NamedType(pkgPath, name), nil
}
