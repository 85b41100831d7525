package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/store"
)

func (a *app) explainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [title]",
		Short: "Show how a title resolves to a theme",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			ex := a.comp.Extractor

			cmd.Printf("Title:   %s\n", title)
			matches := ex.ExtractAll(title)
			if len(matches) == 0 {
				cmd.Println("Matches: none")
			} else {
				cmd.Printf("Matches: %s\n", strings.Join(matches, ", "))
			}

			theme, ok := ex.ExtractTheme(title)
			if !ok {
				cmd.Println("Theme:   none (excluded unless the decade has a fixed theme)")
				return nil
			}
			cmd.Printf("Theme:   %s\n", theme)
			cmd.Printf("Bucket:  %s\n", a.comp.Dictionary.BucketFor(theme))
			return nil
		},
	}
}

func (a *app) colorsCommand() *cobra.Command {
	var (
		decade int
		theme  string
		n      int
	)
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Summarize the palette of a decade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			found, err := a.coll.Stamps(cmd.Context(), store.Query{Decade: decade, Theme: theme})
			if err != nil {
				return err
			}
			palettes := make([][]color.Swatch, 0, len(found))
			for _, s := range found {
				if s.HasColors() {
					palettes = append(palettes, s.Colors)
				}
			}
			if len(palettes) == 0 {
				cmd.Println("No color data for the selected stamps.")
				return nil
			}
			for _, sw := range color.TopColors(palettes, n, color.DefaultMinDistance) {
				cmd.Printf("%s  %8d\n", sw.Hex, sw.Population)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&decade, "decade", "d", 0, "restrict to a decade")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "restrict to a theme")
	cmd.Flags().IntVarP(&n, "count", "n", 5, "number of colors")
	return cmd
}
