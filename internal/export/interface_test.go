package export

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/iksnae/chatstate/internal"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		want    Exporter
		wantExt string
	}{
		{format: "jsonl", want: &JSONLExporter{}, wantExt: "jsonl"},
		{format: "md", want: &MarkdownExporter{}, wantExt: "md"},
		{format: "markdown", want: &MarkdownExporter{}, wantExt: "md"},
		{format: "yaml", want: &YAMLExporter{}, wantExt: "yaml"},
		{format: "yml", want: &YAMLExporter{}, wantExt: "yaml"},
		{format: "json", want: &JSONExporter{}, wantExt: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if reflect.TypeOf(exporter) != reflect.TypeOf(tt.want) {
				t.Errorf("NewExporter(%q) = %T, want %T", tt.format, exporter, tt.want)
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
		})
	}
}

func TestNewExporter_Unsupported(t *testing.T) {
	for _, format := range []string{"xml", "", "JSON"} {
		t.Run(format, func(t *testing.T) {
			exporter, err := NewExporter(format)
			if exporter != nil {
				t.Errorf("NewExporter(%q) returned %T, want nil", format, exporter)
			}

			var exportErr *internal.ExportError
			if !errors.As(err, &exportErr) {
				t.Fatalf("NewExporter(%q) error = %v, want ExportError", format, err)
			}
			if exportErr.Format != format {
				t.Errorf("ExportError.Format = %q, want %q", exportErr.Format, format)
			}
			if !strings.Contains(err.Error(), strings.Join(Formats, ", ")) {
				t.Errorf("error should list supported formats: %v", err)
			}
		})
	}
}

func TestFormats_AllConstructible(t *testing.T) {
	for _, format := range Formats {
		exporter, err := NewExporter(format)
		if err != nil {
			t.Errorf("NewExporter(%q) error = %v", format, err)
			continue
		}
		if exporter.Extension() != format {
			t.Errorf("canonical format %q has extension %q", format, exporter.Extension())
		}
	}
}
