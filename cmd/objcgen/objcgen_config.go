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
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// cmdEnv is shared by all commands. Settings are layered: flags override
// OBJCGEN_* environment variables, which override the config file.
type cmdEnv struct {
	config *viper.Viper
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func (env *cmdEnv) load(flags *pflag.FlagSet) error {
	v := env.config
	v.SetEnvPrefix("OBJCGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("Failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("objcgen")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("Failed to read config file: %w", err)
			}
		}
	}

	level := log.InfoLevel
	if v.GetBool("verbose") {
		level = log.DebugLevel
	}
	env.logger = log.NewWithOptions(env.stderr, log.Options{
		Prefix: "objcgen",
		Level:  level,
	})
	if used := v.ConfigFileUsed(); used != "" {
		env.logger.Debug("Loaded config", "path", used)
	}
	return nil
}

func (env *cmdEnv) jobs() int {
	if jobs := env.config.GetInt("jobs"); jobs > 0 {
		return jobs
	}
	return runtime.GOMAXPROCS(0)
}
