package main

import (
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/gitmirror/locator"
	"github.com/jmgilman/go/gitmirror/mirror"
)

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path REMOTE BRANCH",
		Short: "Print the directory a mirror lives in without touching it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, ok := locator.ParseRemote(args[0])
			if !ok {
				return platformerrors.Newf(platformerrors.CodeInvalidInput, "%q is not a remote locator", args[0])
			}

			fmt.Fprintln(a.out, mirror.LocalPath(a.cfg.BaseDir, remote.URL, args[1]))
			return nil
		},
	}
}
