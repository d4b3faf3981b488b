package rexpcli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/provider"
	"github.com/spf13/cobra"
)

func newQueryCommand(s *session) *cobra.Command {
	var strict bool
	names := make([]string, 0, len(provider.Queries()))
	for _, q := range provider.Queries() {
		names = append(names, string(q))
	}
	cmd := &cobra.Command{
		Use:       "query <" + strings.Join(names, "|") + "> <path>",
		Short:     "Print one version-control fact about a path",
		Args:      usageArgs(cobra.ExactArgs(2)),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := provider.ParseQuery(args[0])
			if err != nil {
				return &usageError{err: err}
			}
			info, err := os.Stat(args[1])
			if err != nil {
				return err
			}
			e := files.NewEntry(args[1], info)
			r, err := s.provider.Lookup(cmd.Context(), q, e)
			if err != nil {
				return err
			}
			if strict && r.Err != nil {
				return fmt.Errorf("%s %s: %w", q, args[1], r.Err)
			}
			if r.Err != nil {
				s.logger.Debug("query degraded", "query", q, "path", args[1], "err", r.Err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), r.Text)
			return err
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of printing the display default")
	return cmd
}
