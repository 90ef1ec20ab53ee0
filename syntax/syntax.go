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

package syntax

// Parse parses a complete declaration file.
func Parse(src []byte) (*File, error) {
	ctx, err := newParseCtx[File](src)
	if err != nil {
		return nil, err
	}
	return parseFile(ctx)
}

func ParseFuncDecl(src []byte) (*FuncDecl, error) {
	ctx, err := newParseCtx[FuncDecl](src)
	if err != nil {
		return nil, err
	}
	decl, err := parseFuncDecl(ctx)
	if err == nil && decl == nil {
		err = errExpectedKeywordFunc(ctx.token.Kind, string(ctx.readToken()), ctx.tokenSpan())
	}
	return decl, err
}

func ParseType(src []byte) (*Type, error) {
	ctx, err := newParseCtx[Type](src)
	if err != nil {
		return nil, err
	}
	return parseType(ctx)
}

func ParseDecorator(src []byte) (*Decorator, error) {
	ctx, err := newParseCtx[Decorator](src)
	if err != nil {
		return nil, err
	}
	decorator, err := parseDecorator(ctx)
	if err == nil && decorator == nil {
		err = errExpectedSigil(T_AT, ctx.token.Kind, string(ctx.readToken()), ctx.tokenSpan())
	}
	return decorator, err
}

type parseCtx[T any] struct {
	src        []byte
	tokens     *Tokens
	childNodes []Node
	haveToken  bool
	token      Token
	err        error
	consumed   uint32
	offset     uint32
}

func newParseCtx[T any](src []byte) (*parseCtx[T], error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	return &parseCtx[T]{
		src:    src,
		tokens: tokens,
	}, nil
}

func (ctx *parseCtx[T]) ensureToken() error {
	if ctx.err != nil {
		return ctx.err
	}
	if ctx.haveToken {
		return nil
	}
	if err := ctx.tokens.Next(&ctx.token); err != nil {
		ctx.err = err
		return ctx.err
	}
	ctx.haveToken = true
	return nil
}

// peek returns the kind of the next token, or T_EOF if tokenizing failed.
func (ctx *parseCtx[T]) peek() TokenKind {
	if err := ctx.ensureToken(); err != nil {
		return T_EOF
	}
	return ctx.token.Kind
}

func (ctx *parseCtx[T]) readToken() []byte {
	return ctx.src[:ctx.token.Len]
}

func (ctx *parseCtx[T]) consumeToken(child Node) {
	ctx.src = ctx.src[ctx.token.Len:]
	ctx.consumed += uint32(ctx.token.Len)
	ctx.offset += uint32(ctx.token.Len)
	ctx.haveToken = false
	if child != nil {
		ctx.childNodes = append(ctx.childNodes, child)
	}
}

func (ctx *parseCtx[T]) tokenSpan() Span {
	return Span{
		start: ctx.offset,
		len:   uint32(ctx.token.Len),
	}
}

func (ctx *parseCtx[T]) loop(yield func(struct{}) bool) {
	if ctx.err != nil {
		return
	}
	for {
		consumed := ctx.consumed
		if !yield(struct{}{}) {
			return
		}
		if ctx.err != nil {
			return
		}
		if consumed == ctx.consumed {
			return
		}
	}
}

// space consumes horizontal whitespace. Newlines are significant after a
// parameter list, so they are left for comments().
func (ctx *parseCtx[T]) space() {
	if err := ctx.ensureToken(); err != nil {
		return
	}
	if ctx.token.Kind != T_SPACE {
		return
	}
	ctx.consumeSpace()
}

func (ctx *parseCtx[T]) consumeSpace() {
	tokenBytes := ctx.readToken()
	var token string
	if len(tokenBytes) == 1 && tokenBytes[0] == ' ' {
		token = " "
	} else {
		token = string(tokenBytes)
	}
	ctx.consumeToken(&Space{
		raw:   token,
		start: ctx.offset,
	})
}

func (ctx *parseCtx[T]) comments() {
	for _ = range ctx.loop {
		if err := ctx.ensureToken(); err != nil {
			return
		}
		switch ctx.token.Kind {
		case T_SPACE:
			ctx.consumeSpace()
		case T_NEWLINE:
			ctx.consumeToken(&Newline{
				crlf:  ctx.token.Len == 2,
				start: ctx.offset,
			})
		case T_COMMENT:
			ctx.consumeToken(&Comment{
				raw:   string(ctx.readToken()),
				start: ctx.offset,
			})
		default:
			return
		}
	}
}

func (ctx *parseCtx[T]) sigil(kind TokenKind) *Sigil {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	if ctx.token.Kind != kind {
		ctx.err = errExpectedSigil(
			kind,
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
		return nil
	}
	sigil := &Sigil{
		raw:   string(ctx.readToken()),
		start: ctx.offset,
	}
	ctx.consumeToken(sigil)
	return sigil
}

func (ctx *parseCtx[T]) trySigil(kind TokenKind) *Sigil {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	if ctx.token.Kind != kind {
		return nil
	}
	sigil := &Sigil{
		raw:   string(ctx.readToken()),
		start: ctx.offset,
	}
	ctx.consumeToken(sigil)
	return sigil
}

func (ctx *parseCtx[T]) tryKeyword(keyword string) *Keyword {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	if ctx.token.Kind != T_IDENT {
		return nil
	}
	if string(ctx.readToken()) != keyword {
		return nil
	}
	node := &Keyword{
		raw:   keyword,
		start: ctx.offset,
	}
	ctx.consumeToken(node)
	return node
}

func (ctx *parseCtx[T]) ident() *Ident {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedIdent(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	ident := &Ident{
		raw:   token,
		start: ctx.offset,
	}
	ctx.consumeToken(ident)
	return ident
}

func (ctx *parseCtx[T]) int() *IntLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_INT_LIT {
		ctx.err = errExpectedIntLit(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	intNode, err := newIntLit(token, ctx.offset)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(intNode)
	return intNode
}

func (ctx *parseCtx[T]) text() *TextLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_TEXT_LIT {
		ctx.err = errExpectedTextLit(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	textNode, err := newTextLit(token, ctx.offset, ctx.token.flags)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(textNode)
	return textNode
}

func (ctx *parseCtx[T]) finish(
	build func(node branchNode) *T,
) (*T, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}
	return build(branchNode{
		span: Span{
			start: ctx.offset - ctx.consumed,
			len:   ctx.consumed,
		},
		childNodes: ctx.childNodes,
	}), nil
}

func parseChild[P any, C any, PtrC interface {
	*C
	Node
}](
	ctx *parseCtx[P],
	parseChildFn func(*parseCtx[C]) (PtrC, error),
) (*C, bool) {
	if ctx.err != nil {
		return nil, false
	}
	childCtx := &parseCtx[C]{
		src:       ctx.src,
		tokens:    ctx.tokens,
		haveToken: ctx.haveToken,
		token:     ctx.token,
		offset:    ctx.offset,
	}
	child, err := parseChildFn(childCtx)
	if err != nil {
		ctx.err = err
		return nil, false
	}

	ctx.haveToken = childCtx.haveToken
	ctx.token = childCtx.token

	if childCtx.consumed == 0 {
		return nil, false
	}
	ctx.src = ctx.src[childCtx.consumed:]
	ctx.consumed += childCtx.consumed
	ctx.offset = childCtx.offset
	ctx.childNodes = append(ctx.childNodes, child)
	return child, true
}

func parseFile(ctx *parseCtx[File]) (*File, error) {
	for _ = range ctx.loop {
		ctx.comments()
		if ctx.peek() == T_EOF {
			break
		}

		doc := trailingDocComments(ctx.childNodes)
		decorators := parseDecorators(ctx)

		var header Node
		if decl, ok := parseChild(ctx, parseFramework); ok {
			header = decl
		} else if decl, ok := parseChild(ctx, parseImport); ok {
			header = decl
		} else if decl, ok := parseChild(ctx, parseClass); ok {
			header = decl
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if header != nil {
			if len(decorators) > 0 {
				name := decorators[0].name
				return nil, errDecoratorNotAllowed(name.Get(), decorators[0].Span())
			}
			continue
		}

		decl, ok := parseChild(ctx, parseFuncDecl)
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			token := string(ctx.readToken())
			span := ctx.tokenSpan()
			if ctx.token.Kind == T_IDENT {
				return nil, errUnknownDeclaration(token, span)
			}
			return nil, errExpectedDeclaration(ctx.token.Kind, token, span)
		}
		decl.doc = doc
		decl.decorators = decorators
	}

	return ctx.finish(func(node branchNode) *File {
		return &File{node}
	})
}

// trailingDocComments returns the "##" comments on the lines directly
// preceding the end of nodes.
func trailingDocComments(nodes []Node) []*Comment {
	var doc []*Comment
	newlines := 0
	for ii := len(nodes) - 1; ii >= 0; ii-- {
		switch node := nodes[ii].(type) {
		case *Space:
		case *Newline:
			newlines += 1
			if newlines > 1 {
				return doc
			}
		case *Comment:
			if !node.IsDocComment() {
				return doc
			}
			doc = append([]*Comment{node}, doc...)
			newlines = 0
		default:
			return doc
		}
	}
	return doc
}

func parseFramework(ctx *parseCtx[Framework]) (*Framework, error) {
	if ctx.tryKeyword("framework") == nil {
		return nil, nil
	}
	ctx.space()
	name := ctx.text()

	return ctx.finish(func(node branchNode) *Framework {
		return &Framework{
			branchNode: node,
			name:       name,
		}
	})
}

func parseImport(ctx *parseCtx[Import]) (*Import, error) {
	if ctx.tryKeyword("import") == nil {
		return nil, nil
	}
	ctx.space()
	var alias *Ident
	if ctx.peek() == T_IDENT {
		alias = ctx.ident()
		ctx.space()
	}
	path := ctx.text()

	return ctx.finish(func(node branchNode) *Import {
		return &Import{
			branchNode: node,
			alias:      alias,
			path:       path,
		}
	})
}

func parseClass(ctx *parseCtx[Class]) (*Class, error) {
	if ctx.tryKeyword("class") == nil {
		return nil, nil
	}
	ctx.space()
	name := ctx.ident()

	return ctx.finish(func(node branchNode) *Class {
		return &Class{
			branchNode: node,
			name:       name,
		}
	})
}

func parseDecorators[T any](ctx *parseCtx[T]) []*Decorator {
	var decorators []*Decorator
	for _ = range ctx.loop {
		if decorator, ok := parseChild(ctx, parseDecorator); ok {
			decorators = append(decorators, decorator)
			ctx.comments()
		}
	}
	return decorators
}

func parseDecorator(ctx *parseCtx[Decorator]) (*Decorator, error) {
	if ctx.trySigil(T_AT) == nil {
		return nil, nil
	}
	name := ctx.ident()
	if ctx.err != nil {
		return nil, ctx.err
	}
	switch name.Get() {
	case "objc", "noinline", "deprecated":
	default:
		return nil, errUnknownDecorator(name.Get(), name.Span())
	}

	var args []*DecoratorArg
	hasArgs := ctx.trySigil(T_OPEN_PAREN) != nil
	if hasArgs {
		for _ = range ctx.loop {
			ctx.comments()
			if ctx.trySigil(T_CLOSE_PAREN) != nil {
				break
			}
			if arg, ok := parseChild(ctx, parseDecoratorArg); ok {
				args = append(args, arg)
			}
			ctx.comments()
			if ctx.trySigil(T_COMMA) == nil {
				ctx.sigil(T_CLOSE_PAREN)
				break
			}
		}
	}

	return ctx.finish(func(node branchNode) *Decorator {
		return &Decorator{
			branchNode: node,
			name:       name,
			args:       args,
			hasArgs:    hasArgs,
		}
	})
}

func parseDecoratorArg(ctx *parseCtx[DecoratorArg]) (*DecoratorArg, error) {
	var key *Ident
	var value Node
	switch ctx.peek() {
	case T_IDENT:
		ident := ctx.ident()
		ctx.space()
		if ctx.trySigil(T_EQ) != nil {
			key = ident
			ctx.space()
			value = parseDecoratorValue(ctx)
		} else {
			value = ident
		}
	case T_TEXT_LIT:
		value = ctx.text()
	default:
		if ctx.err == nil {
			ctx.err = errExpectedDecoratorValue(
				ctx.token.Kind,
				string(ctx.readToken()),
				ctx.tokenSpan(),
			)
		}
	}

	return ctx.finish(func(node branchNode) *DecoratorArg {
		return &DecoratorArg{
			branchNode: node,
			key:        key,
			value:      value,
		}
	})
}

func parseDecoratorValue[T any](ctx *parseCtx[T]) Node {
	switch ctx.peek() {
	case T_TEXT_LIT:
		return ctx.text()
	case T_IDENT:
		return ctx.ident()
	}
	if ctx.err == nil {
		ctx.err = errExpectedDecoratorValue(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}
	return nil
}

func parseModifier(ctx *parseCtx[Modifier]) (*Modifier, error) {
	var kind ModifierKind
	var abi *TextLit
	if ctx.tryKeyword("const") != nil {
		kind = ModifierConst
	} else if ctx.tryKeyword("async") != nil {
		kind = ModifierAsync
	} else if ctx.tryKeyword("unsafe") != nil {
		kind = ModifierUnsafe
	} else if ctx.tryKeyword("extern") != nil {
		kind = ModifierExtern
		ctx.space()
		if ctx.peek() == T_TEXT_LIT {
			abi = ctx.text()
		}
	} else {
		return nil, nil
	}

	return ctx.finish(func(node branchNode) *Modifier {
		return &Modifier{
			branchNode: node,
			kind:       kind,
			abi:        abi,
		}
	})
}

func parseFuncDecl(ctx *parseCtx[FuncDecl]) (*FuncDecl, error) {
	var modifiers []*Modifier
	for _ = range ctx.loop {
		if modifier, ok := parseChild(ctx, parseModifier); ok {
			modifiers = append(modifiers, modifier)
			ctx.space()
		}
	}
	if ctx.err != nil {
		return nil, ctx.err
	}

	if ctx.tryKeyword("func") == nil {
		if len(modifiers) == 0 {
			return nil, nil
		}
		return nil, errExpectedKeywordFunc(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}
	ctx.space()
	name := ctx.ident()

	var typeParams *TypeParams
	if ctx.peek() == T_OPEN_SQUARE {
		typeParams, _ = parseChild(ctx, parseTypeParams)
	}

	ctx.sigil(T_OPEN_PAREN)
	var params []*Param
	for _ = range ctx.loop {
		ctx.comments()
		if ctx.trySigil(T_CLOSE_PAREN) != nil {
			break
		}
		if param, ok := parseChild(ctx, parseParam); ok {
			params = append(params, param)
		}
		ctx.comments()
		if ctx.trySigil(T_COMMA) == nil {
			ctx.sigil(T_CLOSE_PAREN)
			break
		}
	}

	ctx.space()
	var result *Type
	if isTypeStart(ctx.peek()) {
		result, _ = parseChild(ctx, parseType)
	}

	return ctx.finish(func(node branchNode) *FuncDecl {
		return &FuncDecl{
			branchNode: node,
			modifiers:  modifiers,
			name:       name,
			typeParams: typeParams,
			params:     params,
			result:     result,
		}
	})
}

func isTypeStart(kind TokenKind) bool {
	switch kind {
	case T_IDENT, T_STAR, T_OPEN_SQUARE:
		return true
	}
	return false
}

func parseTypeParams(ctx *parseCtx[TypeParams]) (*TypeParams, error) {
	ctx.sigil(T_OPEN_SQUARE)
	var params []*TypeParam
	for _ = range ctx.loop {
		ctx.space()
		if param, ok := parseChild(ctx, parseTypeParam); ok {
			params = append(params, param)
		}
		ctx.space()
		if ctx.trySigil(T_COMMA) == nil {
			ctx.sigil(T_CLOSE_SQUARE)
			break
		}
	}

	return ctx.finish(func(node branchNode) *TypeParams {
		return &TypeParams{
			branchNode: node,
			params:     params,
		}
	})
}

func parseTypeParam(ctx *parseCtx[TypeParam]) (*TypeParam, error) {
	name := ctx.ident()
	ctx.space()
	constraint, _ := parseChild(ctx, parseType)

	return ctx.finish(func(node branchNode) *TypeParam {
		return &TypeParam{
			branchNode: node,
			name:       name,
			constraint: constraint,
		}
	})
}

func parseParam(ctx *parseCtx[Param]) (*Param, error) {
	var kind ParamKind
	var names []*Ident
	var self *Keyword
	var variadic *Sigil
	var type_ *Type

	if ctx.trySigil(T_OPEN_PAREN) != nil {
		kind = ParamTuple
		for _ = range ctx.loop {
			ctx.space()
			names = append(names, ctx.ident())
			ctx.space()
			if ctx.trySigil(T_COMMA) == nil {
				ctx.sigil(T_CLOSE_PAREN)
				break
			}
		}
		ctx.space()
		type_, _ = parseChild(ctx, parseType)
	} else if self = ctx.tryKeyword("self"); self != nil {
		kind = ParamSelf
		ctx.space()
		if isTypeStart(ctx.peek()) {
			type_, _ = parseChild(ctx, parseType)
		}
	} else if ctx.peek() == T_IDENT {
		kind = ParamNamed
		names = append(names, ctx.ident())
		ctx.space()
		variadic = ctx.trySigil(T_ELLIPSIS)
		ctx.space()
		type_, _ = parseChild(ctx, parseType)
	} else if ctx.err == nil {
		return nil, errExpectedParam(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}

	return ctx.finish(func(node branchNode) *Param {
		return &Param{
			branchNode: node,
			kind:       kind,
			names:      names,
			self:       self,
			variadic:   variadic,
			type_:      type_,
		}
	})
}

func parseType(ctx *parseCtx[Type]) (*Type, error) {
	var kind TypeKind
	var scope, name *Ident
	var elem *Type
	var length *IntLit

	switch ctx.peek() {
	case T_STAR:
		ctx.sigil(T_STAR)
		kind = TypePointer
		elem, _ = parseChild(ctx, parseType)
	case T_OPEN_SQUARE:
		ctx.sigil(T_OPEN_SQUARE)
		if ctx.trySigil(T_CLOSE_SQUARE) != nil {
			kind = TypeSlice
		} else {
			kind = TypeArray
			length = ctx.int()
			ctx.sigil(T_CLOSE_SQUARE)
		}
		elem, _ = parseChild(ctx, parseType)
	case T_IDENT:
		kind = TypeNamed
		name = ctx.ident()
		if ctx.trySigil(T_DOT) != nil {
			scope = name
			name = ctx.ident()
		}
	default:
		if ctx.err == nil {
			return nil, errExpectedTypeName(
				ctx.token.Kind,
				string(ctx.readToken()),
				ctx.tokenSpan(),
			)
		}
	}

	return ctx.finish(func(node branchNode) *Type {
		return &Type{
			branchNode: node,
			kind:       kind,
			scope:      scope,
			name:       name,
			elem:       elem,
			length:     length,
		}
	})
}

// String renders the type in Go syntax.
func (n *Type) String() string {
	switch n.kind {
	case TypePointer:
		return "*" + n.elem.String()
	case TypeSlice:
		return "[]" + n.elem.String()
	case TypeArray:
		return "[" + n.length.raw + "]" + n.elem.String()
	}
	if n.scope != nil {
		return n.scope.Get() + "." + n.name.Get()
	}
	return n.name.Get()
}
