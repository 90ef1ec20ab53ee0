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
	"strings"
)

// MessageName is a parsed selector such as "hash" or "initWithBytes:length:".
type MessageName struct {
	segments []string
	colons   bool
}

// ParseMessageName parses a selector. A message name is either a single
// bare identifier (a message with no arguments besides the receiver) or
// one or more identifiers each followed by ':'.
func ParseMessageName(text string) (MessageName, error) {
	if text == "" {
		return MessageName{}, errInvalidMessageName(text, "message name is empty")
	}

	trailing := strings.HasSuffix(text, ":")
	segments := strings.Split(strings.TrimSuffix(text, ":"), ":")
	for _, segment := range segments {
		if segment == "" {
			return MessageName{}, errInvalidMessageName(text, "empty segment")
		}
		if !isIdent(segment) {
			return MessageName{}, errInvalidMessageName(
				text,
				"'"+segment+"' is not an identifier",
			)
		}
	}
	if len(segments) > 1 && !trailing {
		return MessageName{}, errInvalidMessageName(
			text,
			"are you missing a trailing `:`?",
		)
	}
	return MessageName{
		segments: segments,
		colons:   trailing,
	}, nil
}

// ArgCount is the number of arguments a send of this message takes,
// including the receiver.
func (m MessageName) ArgCount() int {
	if !m.colons {
		return 1
	}
	return len(m.segments) + 1
}

func (m MessageName) Segments() []string {
	return m.segments
}

func (m MessageName) String() string {
	if !m.colons {
		return strings.Join(m.segments, "")
	}
	return strings.Join(m.segments, ":") + ":"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for ii, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && ii > 0:
		default:
			return false
		}
	}
	return true
}
