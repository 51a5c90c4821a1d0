// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/peterbourgon/ff/v2/ffcli"

	"github.com/runetale/roview/document"
	"github.com/runetale/roview/types/readonly"
)

type mutateArgs struct {
	viewArgs
	strict bool
}

func (a *mutateArgs) flagSet(name string) *flag.FlagSet {
	fs := a.viewArgs.flagSet(name)
	fs.BoolVar(&a.strict, "strict", false, "fail when the view rejects the mutation")
	return fs
}

// parent resolves everything but the last key of path.
func parent(view *readonly.View, path string) (*readonly.View, any, error) {
	keys := document.SplitPath(path)
	if len(keys) == 0 {
		return nil, nil, errors.New("path is required")
	}
	x, err := view.GetPath(keys[:len(keys)-1]...)
	if err != nil {
		return nil, nil, err
	}
	pv, ok := x.(*readonly.View)
	if !ok {
		return nil, nil, fmt.Errorf("parent of %q is not an object", path)
	}
	return pv, keys[len(keys)-1], nil
}

// parseValue reads a command line value as yaml, so "5" is a number.
func parseValue(s string) any {
	v, err := document.Decode(strings.NewReader(s))
	if err != nil {
		return s
	}
	return v
}

func setCmd(w io.Writer) *ffcli.Command {
	var args mutateArgs
	return &ffcli.Command{
		Name:       "set",
		ShortUsage: "set -file <doc> [flags] <path> <value>",
		ShortHelp:  "try to write a value through the view",
		FlagSet:    args.flagSet("set"),
		Options:    ffOptions,
		Exec: func(ctx context.Context, rest []string) error {
			if len(rest) != 2 {
				return fmt.Errorf("want <path> <value>, got %q", rest)
			}
			view, logger, err := args.open("roview set")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pv, key, err := parent(view, rest[0])
			if err != nil {
				return err
			}
			value := parseValue(rest[1])

			if args.strict {
				if err := pv.SetStrict(key, value); err != nil {
					logger.Logger.Warnf("set %q rejected: %v", rest[0], err)
					return err
				}
			}
			ok := pv.Set(key, value)
			logger.Logger.Debugf("set %q to %v under %s: reported %t", rest[0], value, pv.Policy(), ok)
			return report(w, pv, key, ok)
		},
	}
}

func deleteCmd(w io.Writer) *ffcli.Command {
	var args mutateArgs
	return &ffcli.Command{
		Name:       "delete",
		ShortUsage: "delete -file <doc> [flags] <path>",
		ShortHelp:  "try to delete a key through the view",
		FlagSet:    args.flagSet("delete"),
		Options:    ffOptions,
		Exec: func(ctx context.Context, rest []string) error {
			if len(rest) != 1 {
				return fmt.Errorf("want <path>, got %q", rest)
			}
			view, logger, err := args.open("roview delete")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pv, key, err := parent(view, rest[0])
			if err != nil {
				return err
			}

			if args.strict {
				if err := pv.DeleteStrict(key); err != nil {
					logger.Logger.Warnf("delete %q rejected: %v", rest[0], err)
					return err
				}
			}
			ok := pv.Delete(key)
			logger.Logger.Debugf("delete %q under %s: reported %t", rest[0], pv.Policy(), ok)
			return report(w, pv, key, ok)
		},
	}
}

// report prints the mutation outcome and the value read back afterwards,
// which is always the original one.
func report(w io.Writer, pv *readonly.View, key any, ok bool) error {
	fmt.Fprintf(w, "reported: %t\n", ok)
	x, err := pv.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprint(w, "value: ")
	if v, isView := x.(*readonly.View); isView {
		fmt.Fprintln(w, v)
		return nil
	}
	printValue(w, x)
	return nil
}
