package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <session-id> <title>",
	Short: "Change a session title",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		id := args[0]
		if _, ok := eng.history.Session(id); !ok {
			return fmt.Errorf("session not found: %s", id)
		}
		title := strings.Join(args[1:], " ")
		eng.history.UpdateTitle(id, title)

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", id, title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
