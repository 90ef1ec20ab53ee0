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
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	maxSrcLen   = 0x7FFFFFFF // (2**31)-1
	maxTokenLen = int(math.MaxUint16)

	tokenFlagTextHasEscapes uint8 = 0x01
)

type Token struct {
	Len   uint16
	Kind  TokenKind
	flags uint8
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_SPACE
	T_NEWLINE
	T_COMMENT

	T_AT
	T_COMMA
	T_DOT
	T_ELLIPSIS
	T_EQ
	T_STAR

	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_OPEN_SQUARE
	T_CLOSE_SQUARE

	T_INT_LIT
	T_TEXT_LIT

	T_IDENT
)

var tokenKindNames = [...]string{
	T_EOF:          "EOF",
	T_SPACE:        "SPACE",
	T_NEWLINE:      "NEWLINE",
	T_COMMENT:      "COMMENT",
	T_AT:           "AT",
	T_COMMA:        "COMMA",
	T_DOT:          "DOT",
	T_ELLIPSIS:     "ELLIPSIS",
	T_EQ:           "EQ",
	T_STAR:         "STAR",
	T_OPEN_PAREN:   "OPEN_PAREN",
	T_CLOSE_PAREN:  "CLOSE_PAREN",
	T_OPEN_SQUARE:  "OPEN_SQUARE",
	T_CLOSE_SQUARE: "CLOSE_SQUARE",
	T_INT_LIT:      "INT_LIT",
	T_TEXT_LIT:     "TEXT_LIT",
	T_IDENT:        "IDENT",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// Single-byte tokens. T_EOF marks bytes that start a longer token or are
// not valid at all.
var punctuation = [utf8.RuneSelf]TokenKind{
	'\n': T_NEWLINE,
	'@':  T_AT,
	',':  T_COMMA,
	'.':  T_DOT,
	'=':  T_EQ,
	'*':  T_STAR,
	'(':  T_OPEN_PAREN,
	')':  T_CLOSE_PAREN,
	'[':  T_OPEN_SQUARE,
	']':  T_CLOSE_SQUARE,
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

type Tokens struct {
	src    []byte
	offset uint32
}

func NewTokens(src []byte) (*Tokens, error) {
	if len(src) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8(src)
	}
	return &Tokens{
		src: src,
	}, nil
}

func (t *Tokens) Next(token *Token) error {
	if len(t.src) == 0 {
		*token = Token{Kind: T_EOF}
		return nil
	}

	c := t.src[0]
	switch {
	case c == ' ' || c == '\t':
		return t.nextSpace(token)
	case c == '#':
		return t.nextComment(token)
	case c == '"':
		return t.nextTextLit(token)
	case c == '.' && bytes.HasPrefix(t.src, []byte("...")):
		return t.take(token, T_ELLIPSIS, 3, 0)
	case c == '\r':
		if len(t.src) < 2 || t.src[1] != '\n' {
			return errForbiddenControlCharacter(t.offset, c)
		}
		return t.take(token, T_NEWLINE, 2, 0)
	case c < utf8.RuneSelf && punctuation[c] != T_EOF:
		return t.take(token, punctuation[c], 1, 0)
	case isDigit(c):
		return t.nextIntLit(token)
	case isIdentStart(c):
		return t.nextIdent(token)
	}

	r, _ := utf8.DecodeRune(t.src)
	if r == '\u00A0' {
		return t.nextSpace(token)
	}
	if r < 0x20 || r == 0x7F {
		return errForbiddenControlCharacter(t.offset, c)
	}
	return errUnexpectedCharacter(t.offset, r)
}

// take consumes the next n bytes as a token of the given kind.
func (t *Tokens) take(token *Token, kind TokenKind, n int, flags uint8) error {
	if n > maxTokenLen {
		return errTokenTooLong(t.offset, n)
	}
	*token = Token{
		Kind:  kind,
		Len:   uint16(n),
		flags: flags,
	}
	t.offset += uint32(n)
	t.src = t.src[n:]
	return nil
}

func (t *Tokens) nextSpace(token *Token) error {
	n := 0
	for n < len(t.src) {
		if c := t.src[n]; c == ' ' || c == '\t' {
			n++
			continue
		}
		r, size := utf8.DecodeRune(t.src[n:])
		if r != '\u00A0' {
			break
		}
		n += size
	}
	return t.take(token, T_SPACE, n, 0)
}

func (t *Tokens) nextComment(token *Token) error {
	n := bytes.IndexAny(t.src, "\r\n")
	if n < 0 {
		n = len(t.src)
	}
	return t.take(token, T_COMMENT, n, 0)
}

// Integer literals only appear as array lengths, so only plain decimal
// digits are accepted.
func (t *Tokens) nextIntLit(token *Token) error {
	n := 0
	invalid := false
	for n < len(t.src) && isIdentPart(t.src[n]) {
		if !isDigit(t.src[n]) {
			invalid = true
		}
		n++
	}
	if n > 1 && t.src[0] == '0' {
		invalid = true
	}
	if invalid {
		return errIntLitInvalid(t.offset, t.src[:n])
	}
	return t.take(token, T_INT_LIT, n, 0)
}

func (t *Tokens) nextTextLit(token *Token) error {
	var flags uint8
	escaped := false
	for ii := 1; ii < len(t.src); ii++ {
		c := t.src[ii]
		switch {
		case escaped:
			escaped = false
		case c == '"':
			return t.take(token, T_TEXT_LIT, ii+1, flags)
		case c == '\\':
			escaped = true
			flags |= tokenFlagTextHasEscapes
		case (c <= 0x1F || c == 0x7F) && c != '\t':
			off := t.offset + uint32(ii)
			if c == '\n' {
				return errTextLitContainsNewline(off, 1)
			}
			if c == '\r' && ii+1 < len(t.src) && t.src[ii+1] == '\n' {
				return errTextLitContainsNewline(off, 2)
			}
			return errForbiddenControlCharacter(off, c)
		}
	}
	return errTextLitUnterminated(t.offset, uint32(len(t.src)))
}

func (t *Tokens) nextIdent(token *Token) error {
	n := 1
	for n < len(t.src) && isIdentPart(t.src[n]) {
		n++
	}
	return t.take(token, T_IDENT, n, 0)
}
