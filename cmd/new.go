package cmd

import (
	"fmt"

	"github.com/iksnae/chatstate/internal"
	"github.com/spf13/cobra"
)

var (
	newTitle      string
	newModel      string
	newBackground bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new session",
	Long: `Create a session and make it the active one. With --background the active
session is left unchanged. Sessions are only persisted once they hold messages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		model := newModel
		if model == "" {
			model = eng.config.Chat.ModelID
		}

		id, ok := eng.history.CreateSession(internal.CreateOptions{
			Title:      newTitle,
			ModelID:    model,
			Background: newBackground,
		})
		if !ok {
			return fmt.Errorf("history is not loaded")
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newTitle, "title", "t", internal.NewChatTitle, "Session title")
	newCmd.Flags().StringVarP(&newModel, "model", "m", "", "Model identifier (defaults to chat.model_id)")
	newCmd.Flags().BoolVar(&newBackground, "background", false, "Create without selecting it")
}
