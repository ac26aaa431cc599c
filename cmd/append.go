package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iksnae/chatstate/internal"
	"github.com/spf13/cobra"
)

var (
	appendRole string
	appendText string
)

var appendCmd = &cobra.Command{
	Use:   "append <session-id>",
	Short: "Append a message to a session",
	Long: `Append a text message to a session without contacting a responder.
The session moves to the top of the list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := internal.Role(strings.ToLower(appendRole))
		if role != internal.RoleUser && role != internal.RoleAssistant {
			return fmt.Errorf("invalid --role %q (expected user or assistant)", appendRole)
		}
		if strings.TrimSpace(appendText) == "" {
			return internal.ErrEmptyMessage
		}

		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		id := args[0]
		session, ok := eng.history.Session(id)
		if !ok {
			return fmt.Errorf("session not found: %s", id)
		}

		msg := internal.NewTextMessage(uuid.NewString(), role, appendText)
		msg.CreatedAt = time.Now()
		messages := append(append([]internal.Message{}, session.Messages...), msg)
		eng.history.UpdateMessages(id, messages)

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)
	appendCmd.Flags().StringVarP(&appendRole, "role", "r", string(internal.RoleUser), "Message role (user or assistant)")
	appendCmd.Flags().StringVarP(&appendText, "text", "t", "", "Message text")
}
