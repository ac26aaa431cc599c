package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/chatstate/internal"
	"github.com/iksnae/chatstate/internal/export"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	format       string
	outputDir    string
	sessionID    string
	exportSearch string
	exportJobs   int
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to files",
	Long: `Export chat sessions to various formats (jsonl, md, yaml, json).

You can export all sessions, filter by title, or export a specific session by ID.
Use 'chatstate list' to see available session IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		eng, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close(ctx) }()

		sessions := eng.history.Search(exportSearch)

		// Filter by session ID if specified
		if sessionID != "" {
			session, ok := eng.history.Session(sessionID)
			if !ok {
				return fmt.Errorf("session not found: %s (use 'chatstate list' to see available sessions)", sessionID)
			}
			sessions = []internal.Session{session}
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		if len(sessions) == 0 {
			internal.PrintWarning(cmd.OutOrStdout(), "No sessions matched, nothing to export")
			return nil
		}

		message := fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), outputDir)
		err = internal.ShowProgress(ctx, cmd.ErrOrStderr(), message, func() error {
			g, gctx := errgroup.WithContext(ctx)
			if exportJobs > 0 {
				g.SetLimit(exportJobs)
			}
			for i := range sessions {
				session := sessions[i]
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					return exportSession(exporter, &session, outputDir)
				})
			}
			return g.Wait()
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d session(s) exported to %s", len(sessions), outputDir))
		return nil
	},
}

// exportSession writes one session to dir/session_<id>.<ext>
func exportSession(exporter export.Exporter, session *internal.Session, dir string) error {
	filename := fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension())
	path := filepath.Join(dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		internal.LogWarn("Failed to close file %s: %v", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
	exportCmd.Flags().StringVarP(&exportSearch, "search", "s", "", "Only export sessions whose title contains this text")
	exportCmd.Flags().IntVarP(&exportJobs, "jobs", "j", 4, "Number of sessions exported in parallel")
}
