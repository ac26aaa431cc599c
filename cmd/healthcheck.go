package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatstate/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

const healthcheckProbeKey = "chatstate-healthcheck"

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the configured storage is reachable and the snapshot is readable",
	Long: `Check the health of chatstate by verifying:
  • Configuration loading
  • Storage slot access (write, read and delete a probe key)
  • Snapshot decoding
  • Session count

This command is useful for debugging storage issues, especially in CI/CD environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Chat State Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Load configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, paths, err := loadConfig()
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to load configuration:"), err)
			return err
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(out, "   Backend: %s\n", cfg.Storage.Backend)
			_, _ = fmt.Fprintf(out, "   Key: %s\n", cfg.Storage.Key)
			_, _ = fmt.Fprintf(out, "   Data directory: %s\n", paths.BaseDir)
			if paths.ConfigExists() {
				_, _ = fmt.Fprintf(out, "   Config file: %s\n", paths.ConfigFile)
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: Open the slot
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Opening storage slot..."))
		if cfg.Storage.Path == "" {
			if err := paths.EnsureBaseDir(); err != nil {
				_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to create data directory:"), err)
				return err
			}
		}
		slot, err := cfg.OpenSlot(paths)
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to open storage slot:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer func() { _ = slot.Close() }()
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Storage slot opened"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(out, "   Type: %T\n", slot)
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Probe the slot
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Testing slot read/write..."))
		if err := probeSlot(cmd, slot); err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Slot probe failed:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Slot is writable"))
		_, _ = fmt.Fprintln(out)

		// Step 4: Decode the snapshot
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Decoding snapshot..."))
		codec := internal.NewSnapshotCodec(slot, cfg.Storage.Key)
		snapshot, err := codec.Load(ctx)
		snapshotOK := true
		switch {
		case err == nil:
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Snapshot v%d decoded", snapshot.Version)))
		case errors.Is(err, internal.ErrKeyNotFound):
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  No snapshot stored yet"))
		default:
			snapshotOK = false
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Snapshot is unreadable and would load as empty:"), err)
		}

		sessionCount := len(snapshot.Sessions)
		if sessionCount > 0 {
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d session(s)", sessionCount)))
			if healthcheckVerbose {
				for i, stored := range snapshot.Sessions {
					if i == 5 {
						_, _ = fmt.Fprintf(out, "   ... and %d more\n", sessionCount-5)
						break
					}
					title := stored.Title
					if title == "" {
						title = internal.DefaultSessionTitle
					}
					_, _ = fmt.Fprintf(out, "   [%d] %s (ID: %s)\n", i+1, title, stored.ID)
				}
			}
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)

		if !snapshotOK {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			_, _ = fmt.Fprintln(out, "   • The stored snapshot does not match the expected shape")
			return fmt.Errorf("health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Storage: %s", cfg.Storage.Backend)))
		_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Sessions: %d found", sessionCount)))
		return nil
	},
}

// probeSlot writes, reads back and deletes a probe key
func probeSlot(cmd *cobra.Command, slot internal.Slot) error {
	ctx := cmd.Context()
	want := []byte(`{"probe":true}`)

	if err := slot.Set(ctx, healthcheckProbeKey, want); err != nil {
		return err
	}
	got, err := slot.Get(ctx, healthcheckProbeKey)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("probe read back %q, want %q", got, want)
	}
	return slot.Delete(ctx, healthcheckProbeKey)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "details", "d", false, "Show detailed diagnostic information")
}
