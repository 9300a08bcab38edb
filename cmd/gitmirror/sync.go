package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/gitmirror/mirror"
)

func newSyncCmd(a *app) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "sync NAME...",
		Short: "Resolve names to mirrors, cloning or synchronizing them",
		Long: `Resolve each NAME of the form <location>[<branch>] and print one line per
name: the name, the resolution kind, the synchronization outcome and the
local path.

Names that refer to the same mirror are processed one at a time; all
others run concurrently, at most --jobs at once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, names []string) error {
			if cmd.Flags().Changed("jobs") {
				a.cfg.Jobs = jobs
			}
			if a.cfg.Jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1")
			}

			m, err := a.mirror()
			if err != nil {
				return err
			}

			results := make([]mirror.Resolution, len(names))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Jobs)
			for i, name := range names {
				g.Go(func() error {
					results[i] = m.Resolve(ctx, name)
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			for i, res := range results {
				fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", names[i], res.Kind, res.Sync.Outcome, res.Path)
				if res.Kind == mirror.Placeholder {
					failed++
					a.log.Error().Err(res.Err).Str("name", names[i]).Msg("unable to resolve repository")
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d names could not be resolved", failed, len(names))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "maximum number of names resolved concurrently")

	return cmd
}
