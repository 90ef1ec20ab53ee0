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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/BrainiumLLC/objc-util/codegen"
)

type cmdPlugin struct{}

func (*cmdPlugin) help() *commandHelp {
	return &commandHelp{
		usage:   "plugin [options] FILE",
		summary: "Generate bindings with a WebAssembly emitter plugin",
	}
}

func (*cmdPlugin) flags(flags *pflag.FlagSet) {
	flags.StringP("output", "o", "", "Output directory")
	flags.String("plugin-path", "", "Directories to search for plugins, separated like $PATH")
	flags.String("language", "go", "Output language; selects the objcgen-plugin-LANGUAGE.wasm plugin")
	flags.String("package", "", "Package name passed to the plugin")
	flags.String("strategy", "cached", "How selectors are resolved: 'cached' or 'runtime'")
	flags.String("mode", "tags", "Call verification: 'tags', 'checked', or 'unchecked'")
}

func (cmd *cmdPlugin) run(ctx context.Context, env *cmdEnv, argv []string) int {
	if len(argv) != 1 {
		fmt.Fprintln(env.stderr, "Expected one input file (usage: objcgen plugin [options] FILE)")
		return 1
	}
	config := env.config
	outDir := config.GetString("output")
	if outDir == "" {
		fmt.Fprintln(env.stderr, "No output directory specified (set --output=)")
		return 1
	}
	language := config.GetString("language")

	result, err := compileFile(argv[0])
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	if printReports(env, []*compiled{result}) {
		return 1
	}

	requestBuf, err := codegen.EncodePluginMessage(&codegen.PluginRequest{
		Language: language,
		Source: codegen.PluginSource{
			Path: result.set.SourcePath(),
			Text: string(result.src),
		},
		Options: codegen.PluginOptions{
			Package:  config.GetString("package"),
			Strategy: config.GetString("strategy"),
			Mode:     config.GetString("mode"),
		},
		Set: codegen.DescribeSet(result.set),
	})
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}

	pluginPath, err := locatePlugin(config.GetString("plugin-path"), language)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	env.logger.Debug("Running plugin", "path", pluginPath)
	response, err := runPlugin(ctx, env, pluginPath, language, requestBuf)
	if err != nil {
		fmt.Fprintln(env.stderr, err)
		return 1
	}
	if response.Error != "" {
		fmt.Fprintln(env.stderr, strings.TrimRight(response.Error, "\n"))
		return 1
	}

	if len(response.OutputFiles) == 0 {
		fmt.Fprintln(env.stderr, "Plugin did not generate any output files")
		return 1
	}
	for _, outputFile := range response.OutputFiles {
		outPath, err := pluginOutPath(outDir, outputFile.Path)
		if err != nil {
			fmt.Fprintln(env.stderr, err)
			return 1
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			fmt.Fprintln(env.stderr, err)
			return 1
		}
		if err := os.WriteFile(outPath, outputFile.Content, 0o644); err != nil {
			fmt.Fprintln(env.stderr, err)
			return 1
		}
		env.logger.Debug("Wrote", "path", outPath)
	}
	return 0
}

// runPlugin instantiates the plugin and passes it one request. Plugins are
// WASI reactors exporting objcgen_allocate and objcgen_generate/LANGUAGE.
func runPlugin(
	ctx context.Context,
	env *cmdEnv,
	pluginPath string,
	language string,
	requestBuf []byte,
) (*codegen.PluginResponse, error) {
	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(16384)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		return nil, err
	}
	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, err
	}
	moduleConfig := wasm.NewModuleConfig().
		WithStderr(env.stderr).
		WithStartFunctions("_initialize")
	plugin, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, err
	}
	mem := plugin.Memory()

	wasmAlloc := plugin.ExportedFunction("objcgen_allocate")
	wasmGenerate := plugin.ExportedFunction("objcgen_generate/" + language)
	if wasmAlloc == nil || wasmGenerate == nil {
		return nil, fmt.Errorf(
			"Plugin %s does not export objcgen_allocate and objcgen_generate/%s",
			pluginPath, language,
		)
	}

	results, err := wasmAlloc.Call(ctx, uint64(len(requestBuf)))
	if err != nil {
		return nil, err
	}
	requestPtr := results[0]
	if !mem.Write(uint32(requestPtr), requestBuf) {
		return nil, fmt.Errorf("Failed to write request to plugin memory")
	}

	results, err = wasmAlloc.Call(ctx, 4)
	if err != nil {
		return nil, err
	}
	responsePtrPtr := uint32(results[0])

	results, err = wasmGenerate.Call(ctx, requestPtr, uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response pointer")
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr, responseLen)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message")
	}

	response := &codegen.PluginResponse{}
	if err := codegen.DecodePluginMessage(responseBuf, response); err != nil {
		return nil, err
	}
	if rc != 0 && response.Error == "" {
		response.Error = fmt.Sprintf("Plugin failed with status %d", rc)
	}
	return response, nil
}

func locatePlugin(searchPath, language string) (string, error) {
	if searchPath == "" {
		return "", fmt.Errorf("No plugin path set, use --plugin-path= or $OBJCGEN_PLUGIN_PATH")
	}
	basename := fmt.Sprintf("objcgen-plugin-%s.wasm", language)
	for _, dir := range filepath.SplitList(searchPath) {
		pluginPath := filepath.Join(dir, basename)
		if _, err := os.Stat(pluginPath); err == nil {
			return pluginPath, nil
		}
	}
	return "", fmt.Errorf("objcgen plugin %s not found in plugin path", basename)
}

func pluginOutPath(outDir string, parts []string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("Invalid output path %#v: component %q contains a path separator", parts, part)
		}
	}
	return filepath.Join(append([]string{outDir}, parts...)...), nil
}
