package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatstate/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat  string
	inspectPattern string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect a sqlite storage database",
	Long: `Inspect the schema and stored keys of a sqlite storage database.

This command provides:
  • Database schema (tables, columns, types)
  • Every chatStateKV key matching --pattern with its size
  • Whether each value decodes as a session snapshot

Examples:
  chatstate inspect                                   # Inspect the configured sqlite database
  chatstate inspect ./chatstate.db --pattern 'v0-%'   # Only keys with a prefix
  chatstate inspect --format json                     # JSON output`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dbPath string
		if len(args) > 0 {
			dbPath = args[0]
		}

		if dbPath == "" {
			cfg, paths, err := loadConfig()
			if err != nil {
				return err
			}
			if internal.SlotType(cfg.Storage.Backend) != internal.SlotSQLite {
				return fmt.Errorf("inspect needs a database path or the sqlite backend (configured: %s)", cfg.Storage.Backend)
			}
			dbPath = cfg.Storage.Path
			if dbPath == "" {
				dbPath = paths.PathFor(internal.SlotSQLite)
			}
		}

		return inspectDatabase(cmd.OutOrStdout(), dbPath)
	},
}

// keyReport describes one stored key
type keyReport struct {
	Key      string `json:"key"`
	Bytes    int    `json:"bytes"`
	Snapshot bool   `json:"snapshot"`
	Sessions int    `json:"sessions,omitempty"`
	Error    string `json:"error,omitempty"`
}

type tableReport struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

type databaseReport struct {
	Path   string        `json:"path"`
	Tables []tableReport `json:"tables"`
	Keys   []keyReport   `json:"keys"`
}

func inspectDatabase(out io.Writer, dbPath string) error {
	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	report := databaseReport{Path: dbPath}

	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}
	for _, name := range tables {
		table := tableReport{Name: name}
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", name)).Scan(&table.Rows); err != nil {
			return fmt.Errorf("failed to count %s: %w", name, err)
		}
		if table.Columns, err = getTableSchema(db, name); err != nil {
			return fmt.Errorf("failed to get schema of %s: %w", name, err)
		}
		report.Tables = append(report.Tables, table)
	}

	pairs, err := internal.QueryChatStateKV(db, inspectPattern)
	if err != nil {
		return fmt.Errorf("failed to query keys: %w", err)
	}
	for _, pair := range pairs {
		entry := keyReport{Key: pair.Key, Bytes: len(pair.Value)}
		snapshot, err := internal.ParseSnapshot(pair.Key, []byte(pair.Value))
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Snapshot = true
			entry.Sessions = len(snapshot.Sessions)
		}
		report.Keys = append(report.Keys, entry)
	}

	if inspectFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

func printReport(out io.Writer, report databaseReport) {
	_, _ = fmt.Fprintf(out, "📋 Database: %s\n", report.Path)
	_, _ = fmt.Fprintf(out, "📊 Found %d table(s)\n\n", len(report.Tables))

	for _, table := range report.Tables {
		_, _ = fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		_, _ = fmt.Fprintf(out, "📦 Table: %s (%d rows)\n", table.Name, table.Rows)
		for _, col := range table.Columns {
			pk := ""
			if col.PrimaryKey {
				pk = " [PRIMARY KEY]"
			}
			notNull := ""
			if col.NotNull {
				notNull = " NOT NULL"
			}
			_, _ = fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
		}
		_, _ = fmt.Fprintln(out)
	}

	_, _ = fmt.Fprintf(out, "🔑 Keys matching %q: %d\n", inspectPattern, len(report.Keys))
	for _, key := range report.Keys {
		status := fmt.Sprintf("snapshot, %d session(s)", key.Sessions)
		if !key.Snapshot {
			status = "not a snapshot: " + firstLine(key.Error)
		}
		_, _ = fmt.Fprintf(out, "  • %s (%d bytes) %s\n", key.Key, key.Bytes, status)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ColumnInfo describes one table column
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notNull"`
	PrimaryKey bool   `json:"primaryKey"`
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().StringVar(&inspectPattern, "pattern", "%", "SQL LIKE pattern selecting keys")
}
