// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v2/ffcli"

	"github.com/runetale/roview/document"
	"github.com/runetale/roview/types/readonly"
)

func getCmd(w io.Writer) *ffcli.Command {
	var args viewArgs
	return &ffcli.Command{
		Name:       "get",
		ShortUsage: "get -file <doc> [flags] [path]",
		ShortHelp:  "print the value at a dotted path, or the keys of an object",
		FlagSet:    args.flagSet("get"),
		Options:    ffOptions,
		Exec: func(ctx context.Context, rest []string) error {
			path, err := pathArg(rest)
			if err != nil {
				return err
			}
			view, logger, err := args.open("roview get")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			x, err := view.GetPath(document.SplitPath(path)...)
			if err != nil {
				return err
			}
			logger.Logger.Debugf("read %q: %v", path, x)
			printValue(w, x)
			return nil
		},
	}
}

func keysCmd(w io.Writer) *ffcli.Command {
	var args viewArgs
	return &ffcli.Command{
		Name:       "keys",
		ShortUsage: "keys -file <doc> [flags] [path]",
		ShortHelp:  "list the keys of the object at a dotted path",
		FlagSet:    args.flagSet("keys"),
		Options:    ffOptions,
		Exec: func(ctx context.Context, rest []string) error {
			path, err := pathArg(rest)
			if err != nil {
				return err
			}
			view, logger, err := args.open("roview keys")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			x, err := view.GetPath(document.SplitPath(path)...)
			if err != nil {
				return err
			}
			v, ok := x.(*readonly.View)
			if !ok {
				return fmt.Errorf("%q is not an object", path)
			}
			printValue(w, v)
			return nil
		},
	}
}
