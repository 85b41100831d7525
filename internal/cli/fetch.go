package cli

import (
	"github.com/spf13/cobra"

	"github.com/mnav0/major-studio-1/pkg/stamps"
	"github.com/mnav0/major-studio-1/pkg/stamps/normalize"
	"github.com/mnav0/major-studio-1/pkg/stamps/record"
)

func (a *app) fetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch stamp records from the API and store them",
		Long: `Runs every configured search against the Smithsonian Open Access API,
normalizes the returned records into themed stamps, and stores them.
The API key is read from the environment variable named by api.api_key_env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.coll.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			printRefresh(cmd, res)
			return nil
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [records.jsonl]",
		Short: "Import raw search rows from a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := record.LoadJSONL(args[0], a.logger)
			if err != nil {
				return err
			}
			res, err := a.coll.Import(cmd.Context(), records)
			if err != nil {
				return err
			}
			printRefresh(cmd, res)
			return nil
		},
	}
}

func printRefresh(cmd *cobra.Command, res stamps.RefreshResult) {
	cmd.Printf("Generation %s\n", res.Generation)
	cmd.Printf("  records seen: %d\n", res.Stats.Seen)
	cmd.Printf("  included:     %d\n", res.Stats.Included)
	for r := normalize.ExcludedNoYear; r <= normalize.ExcludedDuplicate; r++ {
		if n := res.Stats.Excluded[r]; n > 0 {
			cmd.Printf("  excluded %-14s %d\n", r.String()+":", n)
		}
	}
	cmd.Printf("  stored:       %d\n", res.Stored)
}
