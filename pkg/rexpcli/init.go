package rexpcli

import (
	"fmt"

	"github.com/rexplorer/rexp/pkg/config"
	"github.com/spf13/cobra"
)

func newInitCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default init file",
		Args:  usageArgs(cobra.NoArgs),
		// the init file may be broken or missing; do not load it
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := s.cfgFile
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return err
		},
	}
}
