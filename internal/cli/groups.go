package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/state"
	"github.com/mnav0/major-studio-1/pkg/stamps/store"
)

func (a *app) decadesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decades",
		Short: "List decades with stored stamps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			decades, err := a.coll.Decades(ctx)
			if err != nil {
				return err
			}
			if len(decades) == 0 {
				cmd.Println("No stamps stored. Run `stamps fetch` first.")
				return nil
			}
			for _, d := range decades {
				inDecade, err := a.coll.Stamps(ctx, store.Query{Decade: d})
				if err != nil {
					return err
				}
				cmd.Printf("%ds  %5d stamps\n", d, len(inDecade))
			}
			if run, ok, err := a.coll.LastFetch(ctx); err != nil {
				return err
			} else if ok {
				cmd.Printf("\nLast fetch %s at %s (%d of %d records kept)\n",
					run.Generation, run.FetchedAt.Format("2006-01-02 15:04"), run.Included, run.Seen)
			}
			return nil
		},
	}
}

type groupsFlags struct {
	decade    int
	materials []string
	keywords  []string
	colors    []string
	limit     int
	json      bool
}

func (a *app) groupsCommand() *cobra.Command {
	var f groupsFlags
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Show the theme groups of a decade",
		Long: `Shows the theme groups of one decade sorted by size, with the decade's
historical context, the featured stamp, and the filters on offer.
Material, keyword and color filters combine with AND.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.coll.State(cmd.Context())
			if err != nil {
				return err
			}
			s, err = applyFlags(s, f)
			if err != nil {
				return err
			}
			v := a.coll.View(s)
			if f.json {
				data, err := json.MarshalIndent(v, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal view: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}
			printView(cmd, v, f.limit)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&f.decade, "decade", "d", 0, "decade to show, e.g. 1840 (earliest when omitted)")
	flags.StringSliceVarP(&f.materials, "material", "m", nil, "require a material (repeatable)")
	flags.StringSliceVarP(&f.keywords, "keyword", "k", nil, "require a keyword in title or description (repeatable)")
	flags.StringSliceVar(&f.colors, "color", nil, "require a palette color near this hex value (repeatable)")
	flags.IntVarP(&f.limit, "limit", "n", 0, "stamps listed per group")
	flags.BoolVar(&f.json, "json", false, "output the view as JSON")
	return cmd
}

func applyFlags(s state.State, f groupsFlags) (state.State, error) {
	if f.decade != 0 {
		s = state.Update(s, state.SelectDecade{Decade: f.decade})
	}
	for _, m := range f.materials {
		s = state.Update(s, state.ToggleMaterial{Material: m})
	}
	for _, k := range f.keywords {
		s = state.Update(s, state.ToggleKeyword{Keyword: k})
	}
	for _, h := range f.colors {
		c, err := color.ParseHex(h)
		if err != nil {
			return s, fmt.Errorf("--color %q: %w", h, err)
		}
		s = state.Update(s, state.ToggleColor{Color: c})
	}
	return s, nil
}

func printView(cmd *cobra.Command, v state.View, limit int) {
	heading := fmt.Sprintf("%ds", v.Decade)
	if len(v.TopBuckets) > 0 {
		heading += ": " + strings.Join(v.TopBuckets, " and ")
	}
	cmd.Println(heading)
	if v.Context.Historical != "" {
		cmd.Println(v.Context.Historical)
	}
	if v.Context.Postal != "" {
		cmd.Println(v.Context.Postal)
	}
	cmd.Println()

	if v.Empty {
		if v.HasActiveFilters {
			cmd.Println("No stamps match the selected filters.")
		} else {
			cmd.Println("No stamps in this decade.")
		}
	}
	for _, g := range v.Groups {
		cmd.Printf("%-28s %-28s %5d\n", g.Theme, g.Bucket, g.Count)
		for i, s := range g.Stamps {
			if i >= limit {
				break
			}
			cmd.Printf("    %s  %s\n", s.ID, s.Title)
		}
	}

	if v.Featured != nil {
		tag := ""
		if v.Featured.Curated {
			tag = " [curated]"
		}
		cmd.Printf("\nFeatured: %s (%s)%s\n", v.Featured.Stamp.Title, v.Featured.Stamp.ID, tag)
	}
	if len(v.Materials) > 0 {
		names := make([]string, len(v.Materials))
		for i, m := range v.Materials {
			names[i] = mark(m.Name, m.Selected)
		}
		cmd.Printf("Materials: %s\n", strings.Join(names, ", "))
	}
	if len(v.Colors) > 0 {
		hexes := make([]string, len(v.Colors))
		for i, c := range v.Colors {
			hexes[i] = mark(c.Hex, c.Selected)
		}
		cmd.Printf("Colors: %s\n", strings.Join(hexes, ", "))
	}
	if len(v.Words) > 0 {
		words := make([]string, len(v.Words))
		for i, w := range v.Words {
			words[i] = mark(w.Text, w.Selected)
		}
		cmd.Printf("Keywords: %s\n", strings.Join(words, ", "))
	}
}

// mark flags selected filter values with a trailing asterisk.
func mark(s string, selected bool) string {
	if selected {
		return s + "*"
	}
	return s
}
