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

package objcrt

import (
	"fmt"
	"runtime"
)

type OS uint8

const (
	OSUnknown OS = iota
	MacOS
	IOS
)

func (os OS) String() string {
	switch os {
	case MacOS:
		return "macos"
	case IOS:
		return "ios"
	}
	return "unknown"
}

// CurrentOS returns the operating system the program was built for.
func CurrentOS() OS {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "ios":
		return IOS
	}
	return OSUnknown
}

type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) AtLeast(major, minor, patch uint32) bool {
	if v.Major != major {
		return v.Major > major
	}
	if v.Minor != minor {
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// NSOperatingSystemVersion mirrors the Foundation struct of the same name.
type NSOperatingSystemVersion struct {
	MajorVersion NSInteger
	MinorVersion NSInteger
	PatchVersion NSInteger
}

func (v NSOperatingSystemVersion) Version() Version {
	return Version{
		Major: uint32(v.MajorVersion),
		Minor: uint32(v.MinorVersion),
		Patch: uint32(v.PatchVersion),
	}
}

// OSVersion returns the version of the running operating system. It is
// queried from the runtime once, on first use.
func OSVersion() (Version, error) {
	inst, err := current()
	if err != nil {
		return Version{}, err
	}
	return inst.osVersion()
}

// OSAtLeast reports whether the running OS is at least the given version.
// It is false if the version cannot be determined.
func OSAtLeast(major, minor, patch uint32) bool {
	version, err := OSVersion()
	if err != nil {
		return false
	}
	return version.AtLeast(major, minor, patch)
}

// AssertOSAtLeast panics with an [*AvailabilityError] unless the running
// OS is at least the given version.
func AssertOSAtLeast(fn string, os OS, major, minor, patch uint32) {
	required := Version{major, minor, patch}
	version, err := OSVersion()
	if err != nil {
		panic(&AvailabilityError{
			Func:     fn,
			OS:       os,
			Required: required,
			Err:      err,
		})
	}
	if !version.AtLeast(major, minor, patch) {
		panic(&AvailabilityError{
			Func:     fn,
			OS:       os,
			Required: required,
			Found:    version,
		})
	}
}
