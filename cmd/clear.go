package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every session",
	Long:  `Remove all sessions and the active selection. Requires --yes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		count := len(eng.history.Sessions())
		eng.history.ClearAll()

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d session(s)\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Confirm clearing all sessions")
}
