package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatstate/internal"
	"github.com/spf13/cobra"
)

var (
	listSearch string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	modelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Long:  `List sessions, most recently updated first. The active session is marked with *.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		sessions := eng.history.Search(listSearch)
		displaySessions(cmd.OutOrStdout(), sessions, eng.history.CurrentID())
		return nil
	},
}

func displaySessions(out io.Writer, sessions []internal.Session, currentID string) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("No sessions found"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("Found %d session(s)", len(sessions)))
	_, _ = fmt.Fprintln(out, header)
	_, _ = fmt.Fprintln(out)

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	// Header row
	_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t"+titleStyle.Render("Model")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, session := range sessions {
		marker := " "
		if session.ID == currentID {
			marker = currentStyle.Render("*")
		}

		title := session.Title
		if title == "" {
			title = internal.DefaultSessionTitle
		}
		// Truncate long titles but keep them readable
		if len([]rune(title)) > 50 {
			title = string([]rune(title)[:47]) + "..."
		}

		msgCount := countStyle.Render(strconv.Itoa(len(session.Messages)))
		updated := dateStyle.Render(formatRelative(session.UpdatedAt, time.Now()))

		model := dateStyle.Render("—")
		if session.ModelID != "" {
			model = modelStyle.Render(session.ModelID)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", marker, idStyle.Render(session.ID), title, msgCount, updated, model)
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("Tip: use ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render("chatstate show "+sessions[0].ID)+
		idStyle.Render(" to read a session"))
}

// formatRelative renders a timestamp relative to now
func formatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Local().Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Local().Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Local().Format("Jan 02 15:04")
	default:
		return t.Local().Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only list sessions whose title contains this text")
}
