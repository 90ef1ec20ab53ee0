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

import (
	"bytes"
	"iter"
	"math"
	"strconv"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s *Span) Start() uint32 {
	return s.start
}

func (s *Span) End() uint32 {
	return s.start + s.len
}

func (s *Span) Len() uint32 {
	return s.len
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	start := min(s.start, other.start)
	end := max(s.start+s.len, other.start+other.len)
	return Span{start, end - start}
}

// Position is a 1-based line and column (in bytes) within a source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

func LineCol(src []byte, offset uint32) Position {
	if int(offset) > len(src) {
		offset = uint32(len(src))
	}
	before := src[:offset]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return Position{Line: line, Column: col}
}

type Node interface {
	Span() Span

	ChildNodes() iter.Seq[Node]

	privChildren() []Node

	UnparseTo(buf *bytes.Buffer)
}

func Unparse(node Node) string {
	var buf bytes.Buffer
	node.UnparseTo(&buf)
	return buf.String()
}

func Walk(node Node, walkFn func(Node) bool) {
	if node == nil || !walkFn(node) {
		return
	}
	for _, child := range node.privChildren() {
		Walk(child, walkFn)
	}
	walkFn(nil)
}

func iterChildren(childNodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range childNodes {
			if !yield(child) {
				return
			}
		}
	}
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[Node] {
	return func(_yield func(Node) bool) {}
}

func (*leafNode) privChildren() []Node {
	return nil
}

type branchNode struct {
	span       Span
	childNodes []Node
}

func (n *branchNode) Span() Span {
	return n.span
}

func (n *branchNode) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *branchNode) privChildren() []Node {
	return n.childNodes
}

func (n *branchNode) UnparseTo(buf *bytes.Buffer) {
	for _, child := range n.childNodes {
		child.UnparseTo(buf)
	}
}

type Space struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Space)(nil)

func (n *Space) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Space) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

type Newline struct {
	leafNode
	start uint32
	crlf  bool
}

var _ Node = (*Newline)(nil)

func (n *Newline) Span() Span {
	var len uint32
	if n.crlf {
		len = 2
	} else {
		len = 1
	}
	return Span{
		start: n.start,
		len:   len,
	}
}

func (n *Newline) UnparseTo(buf *bytes.Buffer) {
	if n.crlf {
		buf.WriteString("\r\n")
	} else {
		buf.WriteByte('\n')
	}
}

type Comment struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Comment)(nil)

func (n *Comment) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Comment) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Comment) Text() string {
	return n.raw
}

func (n *Comment) IsDocComment() bool {
	return strings.HasPrefix(n.raw, "##")
}

// DocText returns the comment text with the "##" marker and one following
// space removed.
func (n *Comment) DocText() string {
	text := strings.TrimPrefix(n.raw, "##")
	return strings.TrimPrefix(text, " ")
}

type IntLit struct {
	leafNode
	raw   string
	value uint32
	start uint32
}

var _ Node = (*IntLit)(nil)

func (n *IntLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *IntLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func newIntLit(token string, start uint32) (*IntLit, error) {
	value, err := strconv.ParseUint(token, 10, 64)
	if err != nil || value > math.MaxInt32 {
		return nil, errIntLitTooPositive(token, start)
	}
	return &IntLit{
		raw:   token,
		value: uint32(value),
		start: start,
	}, nil
}

func (n *IntLit) Get() uint32 {
	return n.value
}

type TextLit struct {
	leafNode
	raw   string
	value string
	start uint32
}

var _ Node = (*TextLit)(nil)

func (n *TextLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *TextLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func newTextLit(token string, start uint32, flags uint8) (*TextLit, error) {
	if flags&tokenFlagTextHasEscapes == 0 {
		return &TextLit{
			raw:   token,
			value: token[1 : len(token)-1],
			start: start,
		}, nil
	}
	value, err := strconv.Unquote(token)
	if err != nil {
		return nil, errTextLitInvalid(start, token)
	}
	return &TextLit{
		raw:   token,
		value: value,
		start: start,
	}, nil
}

func (n *TextLit) Get() string {
	return n.value
}

// ValueSpan returns the span of the literal's content, without quotes.
func (n *TextLit) ValueSpan() Span {
	return Span{
		start: n.start + 1,
		len:   uint32(len(n.raw)) - 2,
	}
}

type Sigil struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Sigil)(nil)

func (n *Sigil) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Sigil) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

type Ident struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Ident)(nil)

func (n *Ident) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Ident) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Ident) Get() string {
	return n.raw
}

type Keyword struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Keyword)(nil)

func (n *Keyword) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Keyword) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Keyword) Get() string {
	return n.raw
}

type TypeKind uint8

const (
	TypeNamed TypeKind = iota
	TypePointer
	TypeSlice
	TypeArray
)

type Type struct {
	branchNode
	kind   TypeKind
	scope  *Ident
	name   *Ident
	elem   *Type
	length *IntLit
}

var _ Node = (*Type)(nil)

func (n *Type) Kind() TypeKind {
	return n.kind
}

// Scope is the package qualifier of a named type, or nil.
func (n *Type) Scope() *Ident {
	return n.scope
}

func (n *Type) Name() *Ident {
	return n.name
}

func (n *Type) Elem() *Type {
	return n.elem
}

func (n *Type) Length() *IntLit {
	return n.length
}

type File struct {
	branchNode
}

var _ Node = (*File)(nil)

func (n *File) Frameworks() iter.Seq[*Framework] {
	return childrenOf[*Framework](n.childNodes)
}

func (n *File) Imports() iter.Seq[*Import] {
	return childrenOf[*Import](n.childNodes)
}

func (n *File) Classes() iter.Seq[*Class] {
	return childrenOf[*Class](n.childNodes)
}

func (n *File) Funcs() iter.Seq[*FuncDecl] {
	return childrenOf[*FuncDecl](n.childNodes)
}

func childrenOf[T Node](childNodes []Node) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, child := range childNodes {
			if node, ok := child.(T); ok {
				if !yield(node) {
					return
				}
			}
		}
	}
}

type Framework struct {
	branchNode
	name *TextLit
}

var _ Node = (*Framework)(nil)

func (n *Framework) Name() *TextLit {
	return n.name
}

type Import struct {
	branchNode
	alias *Ident
	path  *TextLit
}

var _ Node = (*Import)(nil)

// Alias is the explicit import name, or nil.
func (n *Import) Alias() *Ident {
	return n.alias
}

func (n *Import) Path() *TextLit {
	return n.path
}

type Class struct {
	branchNode
	name *Ident
}

var _ Node = (*Class)(nil)

func (n *Class) Name() *Ident {
	return n.name
}

type Decorator struct {
	branchNode
	name    *Ident
	args    []*DecoratorArg
	hasArgs bool
}

var _ Node = (*Decorator)(nil)

func (n *Decorator) Name() *Ident {
	return n.name
}

func (n *Decorator) Args() []*DecoratorArg {
	return n.args
}

// HasArgs reports whether the decorator was written with parentheses.
func (n *Decorator) HasArgs() bool {
	return n.hasArgs
}

type DecoratorArg struct {
	branchNode
	key   *Ident
	value Node
}

var _ Node = (*DecoratorArg)(nil)

// Key is nil for positional arguments.
func (n *DecoratorArg) Key() *Ident {
	return n.key
}

// Value is a *TextLit or an *Ident.
func (n *DecoratorArg) Value() Node {
	return n.value
}

type ModifierKind uint8

const (
	ModifierConst ModifierKind = iota
	ModifierAsync
	ModifierUnsafe
	ModifierExtern
)

type Modifier struct {
	branchNode
	kind ModifierKind
	abi  *TextLit
}

var _ Node = (*Modifier)(nil)

func (n *Modifier) Kind() ModifierKind {
	return n.kind
}

// ABI is the calling convention named by an extern modifier, or nil.
func (n *Modifier) ABI() *TextLit {
	return n.abi
}

type TypeParam struct {
	branchNode
	name       *Ident
	constraint *Type
}

var _ Node = (*TypeParam)(nil)

func (n *TypeParam) Name() *Ident {
	return n.name
}

func (n *TypeParam) Constraint() *Type {
	return n.constraint
}

type TypeParams struct {
	branchNode
	params []*TypeParam
}

var _ Node = (*TypeParams)(nil)

func (n *TypeParams) Params() []*TypeParam {
	return n.params
}

type ParamKind uint8

const (
	// ParamNamed is a parameter bound to a single name (which may be "_").
	ParamNamed ParamKind = iota
	// ParamSelf is the implicit receiver form "self".
	ParamSelf
	// ParamTuple destructures its argument into several names.
	ParamTuple
)

type Param struct {
	branchNode
	kind     ParamKind
	names    []*Ident
	self     *Keyword
	variadic *Sigil
	type_    *Type
}

var _ Node = (*Param)(nil)

func (n *Param) Kind() ParamKind {
	return n.kind
}

// Name returns the bound name of a ParamNamed parameter, or nil.
func (n *Param) Name() *Ident {
	if n.kind != ParamNamed {
		return nil
	}
	return n.names[0]
}

func (n *Param) Names() []*Ident {
	return n.names
}

func (n *Param) Variadic() *Sigil {
	return n.variadic
}

// Type is nil for a bare "self" parameter.
func (n *Param) Type() *Type {
	return n.type_
}

// PatternSpan covers the parameter's binding, excluding its type.
func (n *Param) PatternSpan() Span {
	switch n.kind {
	case ParamSelf:
		return n.self.Span()
	case ParamTuple:
		span := n.names[0].Span()
		for _, name := range n.names[1:] {
			span = span.Join(name.Span())
		}
		// Include the surrounding parentheses.
		return Span{span.start - 1, span.len + 2}
	default:
		return n.names[0].Span()
	}
}

type FuncDecl struct {
	branchNode
	doc        []*Comment
	decorators []*Decorator
	modifiers  []*Modifier
	name       *Ident
	typeParams *TypeParams
	params     []*Param
	result     *Type
}

var _ Node = (*FuncDecl)(nil)

func (n *FuncDecl) Doc() []*Comment {
	return n.doc
}

func (n *FuncDecl) Decorators() []*Decorator {
	return n.decorators
}

func (n *FuncDecl) Modifiers() []*Modifier {
	return n.modifiers
}

func (n *FuncDecl) Name() *Ident {
	return n.name
}

func (n *FuncDecl) TypeParams() *TypeParams {
	return n.typeParams
}

func (n *FuncDecl) Params() []*Param {
	return n.params
}

// Result is nil when the declaration has no result type.
func (n *FuncDecl) Result() *Type {
	return n.result
}
