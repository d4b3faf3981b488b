package rexpcli

import (
	"fmt"

	"github.com/rexplorer/rexp/pkg/listing"
	"github.com/spf13/cobra"
)

func newLsCommand(s *session) *cobra.Command {
	var parallelism int
	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "Print a directory listing with the configured columns",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("parallelism") {
				parallelism = s.cfg.Parallelism
			}
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			l, err := listing.Load(cmd.Context(), dir, s.registry, parallelism)
			if err != nil {
				return err
			}
			st := newStyles(cmd.OutOrStdout(), s.theme)
			for i, line := range l.Lines() {
				style := st.File
				if l.Entries[i].IsDir {
					style = st.Dir
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), style.Render(line)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&parallelism, "parallelism", "j", 0, "rows evaluated at once (default: init file, then one per CPU)")
	return cmd
}
