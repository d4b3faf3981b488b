package rexpcli

import (
	"fmt"
	"strings"

	"github.com/rexplorer/rexp/pkg/theme"
	"github.com/spf13/cobra"
)

func newThemesCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the built-in theme flavors",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := newStyles(cmd.OutOrStdout(), s.theme)
			for _, f := range theme.Flavors() {
				th := theme.ForFlavor(f)
				marker := " "
				if th == s.theme {
					marker = "*"
				}
				swatches := []string{
					st.swatch(th.FG),
					st.swatch(th.BG),
					st.swatch(th.Selected.FG),
					st.swatch(th.Selected.BG),
					st.swatch(th.Highlight),
				}
				hexes := []string{th.FG.Hex(), th.BG.Hex(), th.Highlight.Hex()}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s %s\n",
					marker, f, strings.Join(swatches, ""), st.Muted.Render(strings.Join(hexes, " ")))
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}
