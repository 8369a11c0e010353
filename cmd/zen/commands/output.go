package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const yamlIndent = 2

func validOutputFormat(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return true
	default:
		return false
	}
}

func outputFormat() (string, error) {
	format := viper.GetString("output")
	if format == "" {
		return constants.FormatTable, nil
	}

	if !validOutputFormat(format) {
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}

	return format, nil
}

// render writes data in the configured output format; fill populates the
// table for the table format.
func render[T any](w io.Writer, data T, fill func(table *tablewriter.Table)) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		return renderJSON(w, data)
	case constants.FormatYAML:
		return renderYAML(w, data)
	default:
		table := tablewriter.NewWriter(w)
		fill(table)

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// renderList writes items as a table with one row per item, or as a JSON or
// YAML list.
func renderList[T any](w io.Writer, items []T, plural string, header []string, row func(T) []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format == constants.FormatTable && len(items) == 0 {
		_, _ = fmt.Fprintf(w, "No %s found\n", plural)

		return nil
	}

	return render(w, items, func(table *tablewriter.Table) {
		table.Header(header)

		for _, item := range items {
			_ = table.Append(row(item))
		}
	})
}

// renderDocument writes a free-form server document such as a configuration map.
func renderDocument(w io.Writer, document map[string]interface{}) error {
	return render(w, document, func(table *tablewriter.Table) {
		table.Header("Key", "Value")

		for _, key := range sortedKeys(document) {
			_ = table.Append(key, formatAny(document[key]))
		}
	})
}

func renderJSON[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

func renderYAML[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func formatValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Local().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format("2006-01-02")
}

func formatID(id *uuid.UUID) string {
	if id == nil || *id == uuid.Nil {
		return constants.NotAvailable
	}

	return id.String()
}

func formatAny(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return formatValue(v)
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

func formatMap(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, key := range sortedKeys(m) {
		parts = append(parts, key+"="+m[key])
	}

	return formatValue(strings.Join(parts, ", "))
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}

	if len(token) <= constants.TokenPreviewLength {
		return constants.MaskedSecret
	}

	return token[:constants.TokenPreviewLength] + constants.MaskedSecret
}
