package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the mirrors under the base directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.mirror()
			if err != nil {
				return err
			}

			entries, err := m.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "REMOTE\tBRANCH\tLAST ACCESS\tLAST OUTCOME\tDIGEST")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.Remote, e.Branch, e.LastAccess.Local().Format(time.RFC3339), e.LastOutcome, e.Digest)
			}
			return w.Flush()
		},
	}
}
