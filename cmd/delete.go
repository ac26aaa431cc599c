package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <session-id>...",
	Aliases: []string{"rm"},
	Short:   "Delete sessions",
	Long: `Delete one or more sessions. Deleting the active session selects the most
recently updated remaining one. Unknown IDs are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		out := cmd.OutOrStdout()
		for _, id := range args {
			if _, ok := eng.history.Session(id); !ok {
				_, _ = fmt.Fprintf(out, "Skipped unknown session %s\n", id)
				continue
			}
			eng.history.DeleteSession(id)
			_, _ = fmt.Fprintf(out, "Deleted %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
