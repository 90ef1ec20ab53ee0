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
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/BrainiumLLC/objc-util/compiler"
)

// PluginRequest is the message sent to an emitter plugin. Plugins written
// in Go can recompile Source; others read the precompiled Set.
type PluginRequest struct {
	Language string          `json:"language"`
	Source   PluginSource    `json:"source"`
	Options  PluginOptions   `json:"options"`
	Set      *SetDescription `json:"set"`
}

type PluginSource struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

type PluginOptions struct {
	Package  string `json:"package,omitempty"`
	BaseName string `json:"base_name,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// GenerateOptions converts the request options. Unknown strategy or mode
// names are errors.
func (o PluginOptions) GenerateOptions() ([]GenerateOption, error) {
	strategy, err := ParseStrategy(o.Strategy)
	if err != nil {
		return nil, err
	}
	mode, err := ParseMode(o.Mode)
	if err != nil {
		return nil, err
	}
	return []GenerateOption{
		WithPackageName(o.Package),
		WithBaseName(o.BaseName),
		WithStrategy(strategy),
		WithMode(mode),
	}, nil
}

// PluginResponse is the message returned by an emitter plugin. A non-empty
// Error means generation failed.
type PluginResponse struct {
	Error       string       `json:"error,omitempty"`
	OutputFiles []PluginFile `json:"output_files,omitempty"`
}

type PluginFile struct {
	// Path components, relative to the output directory.
	Path    []string `json:"path"`
	Content []byte   `json:"content"`
}

// SetDescription is the JSON form of a compiled declaration set.
type SetDescription struct {
	SourcePath string               `json:"source_path,omitempty"`
	Framework  string               `json:"framework"`
	Imports    []compiler.Import    `json:"imports,omitempty"`
	Classes    []string             `json:"classes,omitempty"`
	Bindings   []BindingDescription `json:"bindings"`
}

type BindingDescription struct {
	Name         string                    `json:"name"`
	Message      string                    `json:"message"`
	Segments     []string                  `json:"segments"`
	Receiver     ParamDescription          `json:"receiver"`
	Args         []ParamDescription        `json:"args,omitempty"`
	Result       string                    `json:"result,omitempty"`
	Availability []AvailabilityDescription `json:"availability"`
	Constraint   string                    `json:"constraint"`
	Doc          []string                  `json:"doc,omitempty"`
	NoInline     bool                      `json:"noinline,omitempty"`
	Deprecated   *string                   `json:"deprecated,omitempty"`
}

type ParamDescription struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type AvailabilityDescription struct {
	OS      string `json:"os"`
	Version string `json:"version"`
}

// DescribeSet returns the JSON form of set.
func DescribeSet(set *compiler.DeclarationSet) *SetDescription {
	out := &SetDescription{
		SourcePath: set.SourcePath(),
		Framework:  set.Framework(),
		Imports:    set.Imports(),
		Bindings:   []BindingDescription{},
	}
	for _, class := range set.Classes() {
		out.Classes = append(out.Classes, class.Name())
	}
	for _, binding := range set.Bindings() {
		desc := BindingDescription{
			Name:     binding.Name(),
			Message:  binding.Message().String(),
			Segments: binding.Message().Segments(),
			Receiver: ParamDescription{
				Name: binding.Receiver().Name(),
				Type: binding.Receiver().Type().String(),
			},
			Constraint: binding.Availability().Constraint().String(),
			Doc:        binding.Doc(),
			NoInline:   binding.NoInline(),
		}
		for _, arg := range binding.Args() {
			desc.Args = append(desc.Args, ParamDescription{
				Name: arg.Name(),
				Type: arg.Type().String(),
			})
		}
		if result := binding.Result(); result != nil {
			desc.Result = result.String()
		}
		for _, entry := range binding.Availability().Entries() {
			desc.Availability = append(desc.Availability, AvailabilityDescription{
				OS:      entry.OS.String(),
				Version: entry.Version.String(),
			})
		}
		if message, ok := binding.Deprecated(); ok {
			desc.Deprecated = &message
		}
		out.Bindings = append(out.Bindings, desc)
	}
	return out
}

// EncodePluginMessage encodes v as JSON, prefixed with the total message
// length as a little-endian uint32.
func EncodePluginMessage(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) > math.MaxUint32-4 {
		return nil, fmt.Errorf("plugin message too large (%d bytes)", len(payload))
	}
	buf := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint32(buf, uint32(4+len(payload)))
	return append(buf, payload...), nil
}

// DecodePluginMessage decodes a message produced by [EncodePluginMessage].
func DecodePluginMessage(buf []byte, v any) error {
	if len(buf) < 4 {
		return fmt.Errorf("plugin message truncated (%d bytes)", len(buf))
	}
	size := binary.LittleEndian.Uint32(buf)
	if size < 4 || uint64(size) > uint64(len(buf)) {
		return fmt.Errorf("plugin message length %d out of range", size)
	}
	return json.Unmarshal(buf[4:size], v)
}
