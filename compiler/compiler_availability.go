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
	"fmt"
	"go/build/constraint"
	"strconv"
	"strings"
)

type OS uint8

const (
	MacOS OS = iota + 1
	IOS
)

func ParseOS(key string) (OS, bool) {
	switch key {
	case "macos":
		return MacOS, true
	case "ios":
		return IOS, true
	}
	return 0, false
}

func (os OS) String() string {
	switch os {
	case MacOS:
		return "macos"
	case IOS:
		return "ios"
	}
	return fmt.Sprintf("OS(%d)", uint8(os))
}

// GOOS is the value of runtime.GOOS on this OS.
func (os OS) GOOS() string {
	switch os {
	case MacOS:
		return "darwin"
	case IOS:
		return "ios"
	}
	return ""
}

type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ParseVersion parses one to three dot-separated decimal components.
// Missing components are zero.
func ParseVersion(text string) (Version, error) {
	parts := strings.Split(text, ".")
	if len(parts) > 3 {
		return Version{}, errInvalidVersion(text)
	}
	var components [3]uint32
	for ii, part := range parts {
		if part == "" {
			return Version{}, errInvalidVersion(text)
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return Version{}, errInvalidVersion(text)
			}
		}
		value, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return Version{}, errInvalidVersion(text)
		}
		components[ii] = uint32(value)
	}
	return Version{
		Major: components[0],
		Minor: components[1],
		Patch: components[2],
	}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

type AvailabilityEntry struct {
	OS      OS
	Version Version
}

// Availability is the set of operating systems a binding is declared for,
// with the minimum version of each. Entries keep declaration order.
type Availability struct {
	entries []AvailabilityEntry
}

// NewAvailability returns an availability with the given entries. Later
// entries for an OS already present are ignored.
func NewAvailability(entries ...AvailabilityEntry) Availability {
	var out Availability
	for _, entry := range entries {
		if !out.Has(entry.OS) {
			out.entries = append(out.entries, entry)
		}
	}
	return out
}

func (a Availability) Entries() []AvailabilityEntry {
	return a.entries
}

func (a Availability) Has(os OS) bool {
	_, ok := a.MinVersion(os)
	return ok
}

func (a Availability) MinVersion(os OS) (Version, bool) {
	for _, entry := range a.entries {
		if entry.OS == os {
			return entry.Version, true
		}
	}
	return Version{}, false
}

// Constraint returns a build constraint that is satisfied exactly when
// the target OS is one of the declared OSes. Go sets the "darwin" tag
// when building for iOS, so macOS alone is "darwin && !ios".
func (a Availability) Constraint() constraint.Expr {
	macos, ios := a.Has(MacOS), a.Has(IOS)
	switch {
	case macos && ios:
		return &constraint.TagExpr{Tag: "darwin"}
	case macos:
		return &constraint.AndExpr{
			X: &constraint.TagExpr{Tag: "darwin"},
			Y: &constraint.NotExpr{X: &constraint.TagExpr{Tag: "ios"}},
		}
	case ios:
		return &constraint.TagExpr{Tag: "ios"}
	}
	return &constraint.NotExpr{X: &constraint.TagExpr{Tag: "darwin"}}
}

// Key is a short name for the constraint, usable in file names.
func (a Availability) Key() string {
	macos, ios := a.Has(MacOS), a.Has(IOS)
	switch {
	case macos && ios:
		return "darwin"
	case macos:
		return "macos"
	case ios:
		return "ios"
	}
	return "none"
}

// Includes reports whether a build for goos satisfies the constraint.
func (a Availability) Includes(goos string) bool {
	return a.Constraint().Eval(func(tag string) bool {
		return tag == goos || (tag == "darwin" && goos == "ios")
	})
}

// Union returns an availability declaring every OS in a or b, with the
// lower of the two minimum versions.
func (a Availability) Union(b Availability) Availability {
	out := Availability{entries: append([]AvailabilityEntry(nil), a.entries...)}
	for _, entry := range b.entries {
		found := false
		for ii := range out.entries {
			if out.entries[ii].OS == entry.OS {
				found = true
				if entry.Version.Less(out.entries[ii].Version) {
					out.entries[ii].Version = entry.Version
				}
			}
		}
		if !found {
			out.entries = append(out.entries, entry)
		}
	}
	return out
}

func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}
