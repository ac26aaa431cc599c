package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <session-id>",
	Short: "Make a session the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		if _, ok := eng.history.Session(args[0]); !ok {
			return fmt.Errorf("session not found: %s", args[0])
		}
		eng.history.SelectSession(args[0])

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active session: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}
