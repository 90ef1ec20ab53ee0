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
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dave/jennifer/jen"
)

// TokenSite identifies one use of a selector or class name in a
// declaration file.
type TokenSite struct {
	SourcePath string
	Name       string

	// Offset is the byte offset of the declaration that uses the name.
	Offset uint32
}

// TokenStrategy decides how generated accessors obtain runtime tokens.
// One strategy is used for a whole generation run.
type TokenStrategy interface {
	// Selector returns an expression of type objcrt.Sel. It may add
	// package-level declarations to f.
	Selector(f *jen.File, site TokenSite) jen.Code

	// Class returns an expression of type *objcrt.Class. It may add
	// package-level declarations to f.
	Class(f *jen.File, site TokenSite) jen.Code
}

// ParseStrategy returns the strategy named "cached" or "runtime".
func ParseStrategy(name string) (TokenStrategy, error) {
	switch name {
	case "", "cached":
		return CachedStrategy{}, nil
	case "runtime":
		return RuntimeStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (expected 'cached' or 'runtime')", name)
}

// CachedStrategy declares a package-level reference per token. The
// references are resolved when the runtime is installed, and each access
// is an atomic load.
type CachedStrategy struct{}

func (CachedStrategy) Selector(f *jen.File, site TokenSite) jen.Code {
	ref := refName("_objcSelRef", site)
	f.Var().Id(ref).Op("=").Qual(rtPkg, "NewSelectorRef").Call(jen.Lit(site.Name))
	f.Line()
	return jen.Id(ref).Dot("Load").Call()
}

func (CachedStrategy) Class(f *jen.File, site TokenSite) jen.Code {
	ref := refName("_objcClassRef", site)
	f.Var().Id(ref).Op("=").Qual(rtPkg, "NewClassRef").Call(jen.Lit(site.Name))
	f.Line()
	return jen.Id(ref).Dot("Load").Call()
}

// RuntimeStrategy looks tokens up by name on every access.
type RuntimeStrategy struct{}

func (RuntimeStrategy) Selector(_ *jen.File, site TokenSite) jen.Code {
	return jen.Qual(rtPkg, "LookupSelector").Call(jen.Lit(site.Name))
}

func (RuntimeStrategy) Class(_ *jen.File, site TokenSite) jen.Code {
	return jen.Qual(rtPkg, "LookupClass").Call(jen.Lit(site.Name))
}

// refName returns a reference variable name unique to site. Equal names
// at different positions get different hashes.
func refName(prefix string, site TokenSite) string {
	h := xxhash.New()
	h.WriteString(site.SourcePath)
	h.WriteString("\x00")
	h.WriteString(site.Name)
	h.WriteString("\x00")
	h.WriteString(strconv.FormatUint(uint64(site.Offset), 10))
	return fmt.Sprintf("%s_%016x_%s", prefix, h.Sum64(), sanitize(site.Name))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == ':' {
			return '_'
		}
		return r
	}, name)
}
