package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iksnae/chatstate/internal"
	"github.com/iksnae/chatstate/internal/panel"
	"github.com/spf13/cobra"
)

var (
	sendReply   string
	sendOffline bool
	sendNew     bool
	sendRegen   bool
)

var errResponderOffline = errors.New("responder offline")

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send a message in the active session",
	Long: `Send text as the next user message of the active session and record a reply.

The reply comes from --reply, or echoes the text when none is given. A session
is created when none is active, and its title is generated from the first
message. With --offline the send fails and the text is kept as the draft.
With --regenerate no text is given: the last assistant reply of the active
session is replaced, or the last user message is sent again.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if sendRegen {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		titles := internal.NewTitleCoordinator(eng.history, nil)
		defer titles.Close()

		chat := internal.NewChatController(eng.history, panel.NewStore(), titles, cannedResponder(sendReply, sendOffline), eng.config.Chat.ModelID)
		if sendNew {
			if _, ok := chat.NewChat(""); !ok {
				return fmt.Errorf("history is not loaded")
			}
		}

		if sendRegen {
			if err := chat.Regenerate(ctx); err != nil {
				return err
			}
		} else if err := chat.Submit(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		titles.Wait()

		session, ok := eng.history.CurrentSession()
		if !ok {
			return nil
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s %s\n", idStyle.Render(session.ID), session.Title)
		if n := len(session.Messages); n > 0 {
			_, _ = fmt.Fprintln(out, session.Messages[n-1].Text())
		}
		return nil
	},
}

// cannedResponder replies with reply, or echoes the last user message
func cannedResponder(reply string, offline bool) internal.Responder {
	return internal.ResponderFunc(func(_ context.Context, history []internal.Message) (internal.Message, error) {
		if offline {
			return internal.Message{}, errResponderOffline
		}
		text := reply
		if text == "" && len(history) > 0 {
			text = history[len(history)-1].Text()
		}
		return internal.NewTextMessage("", internal.RoleAssistant, text), nil
	})
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendReply, "reply", "", "Assistant reply to record (defaults to an echo)")
	sendCmd.Flags().BoolVar(&sendOffline, "offline", false, "Fail the send and keep the text as the session draft")
	sendCmd.Flags().BoolVar(&sendNew, "new", false, "Start a new session before sending")
	sendCmd.Flags().BoolVar(&sendRegen, "regenerate", false, "Retry the last turn of the active session")
}
