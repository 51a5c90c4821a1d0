// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package cmd

// roview loads a yaml or json document, wraps it in a deep read-only view
// and lets you read through it or try to mutate it.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v2"
	"github.com/peterbourgon/ff/v2/ffcli"

	"github.com/runetale/roview/document"
	"github.com/runetale/roview/log"
	"github.com/runetale/roview/types/flagtype"
	"github.com/runetale/roview/types/readonly"
)

func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, w io.Writer) error {
	if len(args) == 1 && (args[0] == "-V" || args[0] == "--version" || args[0] == "-v") {
		args = []string{"version"}
	}

	fs := flag.NewFlagSet("roview", flag.ContinueOnError)
	cmd := &ffcli.Command{
		Name:       "roview",
		ShortUsage: "roview <subcommands> [command flags]",
		ShortHelp:  "inspect a document through a deep read-only view.",
		LongHelp: strings.TrimSpace(`
All flags can use a single or double hyphen.
Flags can also be set from ROVIEW_* environment variables or a -config file.

For help on subcommands, prefix with -help.
`),
		Subcommands: []*ffcli.Command{
			getCmd(w),
			keysCmd(w),
			setCmd(w),
			deleteCmd(w),
			versionCmd(w),
		},
		FlagSet: fs,
		Exec:    func(context.Context, []string) error { return flag.ErrHelp },
	}

	if err := cmd.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := cmd.Run(context.Background()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	return nil
}

var ffOptions = []ff.Option{
	ff.WithEnvVarPrefix("ROVIEW"),
	ff.WithConfigFileFlag("config"),
	ff.WithConfigFileParser(ff.PlainParser),
}

// viewArgs are the flags every document command shares.
type viewArgs struct {
	file     string
	policy   readonly.Policy
	logFile  string
	logLevel string
	debug    bool
}

func (a *viewArgs) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&a.file, "file", "", "yaml or json document to view")
	fs.Var(flagtype.PolicyValue(&a.policy, flagtype.DefaultPolicy), "policy", "mutation policy, reject-with-error or reject-silently")
	fs.StringVar(&a.logFile, "logfile", "", "set logfile path")
	fs.StringVar(&a.logLevel, "loglevel", log.ErrorLevelStr, "set log level")
	fs.BoolVar(&a.debug, "debug", false, "for debug")
	fs.String("config", "", "config file")
	return fs
}

// open loads the document and returns its view.
func (a *viewArgs) open(name string) (*readonly.View, *log.Logger, error) {
	if a.file == "" {
		return nil, nil, errors.New("-file is required")
	}
	logger, err := log.NewLogger(name, a.logLevel, a.logFile, a.debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	view, err := a.load()
	if err != nil {
		logger.Logger.Errorf("failed to open %s: %v", a.file, err)
		_ = logger.Sync()
		return nil, nil, err
	}
	logger.Logger.Debugf("opened %s as %s", a.file, view)
	return view, logger, nil
}

func (a *viewArgs) load() (*readonly.View, error) {
	doc, err := document.Load(a.file)
	if err != nil {
		return nil, err
	}
	view, err := readonly.New(doc, a.policy)
	if err != nil {
		return nil, fmt.Errorf("cannot view %s: %w", a.file, err)
	}
	return view, nil
}

func pathArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("too many arguments: %q", args)
	}
}

func printValue(w io.Writer, x any) {
	switch v := x.(type) {
	case nil:
		fmt.Fprintln(w, "null")
	case *readonly.View:
		keys := v.Keys()
		for i := 0; i < keys.Len(); i++ {
			fmt.Fprintln(w, keys.At(i))
		}
	default:
		fmt.Fprintln(w, v)
	}
}
