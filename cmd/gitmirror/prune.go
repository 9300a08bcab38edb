package main

import (
	"fmt"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/gitmirror/locator"
	"github.com/jmgilman/go/gitmirror/mirror"
)

func newPruneCmd(a *app) *cobra.Command {
	var (
		olderThan time.Duration
		remotes   []string
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove mirrors that are no longer needed",
		Long: `Remove mirrors not accessed within --older-than, or all mirrors of each
--remote. Unpushed commits in a removed mirror are lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var strategies []mirror.PruneStrategy
			if olderThan > 0 {
				strategies = append(strategies, mirror.PruneOlderThan(olderThan))
			}
			for _, r := range remotes {
				remote, ok := locator.ParseRemote(r)
				if !ok {
					return platformerrors.Newf(platformerrors.CodeInvalidInput, "%q is not a remote locator", r)
				}
				strategies = append(strategies, mirror.PruneRemote(remote.URL))
			}
			if len(strategies) == 0 {
				return platformerrors.New(platformerrors.CodeInvalidInput, "one of --older-than or --remote is required")
			}

			m, err := a.mirror()
			if err != nil {
				return err
			}

			removed, err := m.Prune(cmd.Context(), strategies...)
			for _, e := range removed {
				fmt.Fprintf(a.out, "%s\t%s\t%s\n", e.Remote, e.Branch, e.Digest)
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "remove mirrors not accessed within this duration")
	cmd.Flags().StringArrayVar(&remotes, "remote", nil, "remove all mirrors of this remote (repeatable)")

	return cmd
}
