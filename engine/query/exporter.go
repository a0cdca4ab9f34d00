package query

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/compozy/testproject/engine/core"
	"gopkg.in/yaml.v3"
)

// ExportFormat represents the export format
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
	FormatCSV  ExportFormat = "csv"
	FormatTSV  ExportFormat = "tsv"
)

// ParseFormat maps a flag value to an ExportFormat
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	}
	return "", core.Errorf(core.ErrorCodeInvalidInput, map[string]any{"format": s},
		"unsupported export format %q (want json, yaml, csv or tsv)", s)
}

// ExportOptions contains options for exporting query results
type ExportOptions struct {
	Format    ExportFormat `json:"format"`
	Pretty    bool         `json:"pretty"`     // JSON only
	Headers   bool         `json:"headers"`    // CSV/TSV only
	Delimiter string       `json:"delimiter"`  // CSV/TSV only
	NullValue string       `json:"null_value"` // How to represent null values
	// ListSeparator joins list values in CSV/TSV cells
	ListSeparator string `json:"list_separator"`
}

// DefaultExportOptions returns default export options
func DefaultExportOptions(format ExportFormat) *ExportOptions {
	opts := &ExportOptions{
		Format:        format,
		Headers:       true,
		ListSeparator: ";",
	}

	switch format {
	case FormatJSON:
		opts.Pretty = true
	case FormatCSV:
		opts.Delimiter = ","
	case FormatTSV:
		opts.Delimiter = "\t"
	}

	return opts
}

// Exporter writes query rows in one of the export formats
type Exporter struct {
	options *ExportOptions
}

// NewExporter creates a new exporter with the specified options
func NewExporter(options *ExportOptions) *Exporter {
	if options == nil {
		options = DefaultExportOptions(FormatJSON)
	}
	return &Exporter{
		options: options,
	}
}

// Export writes results to writer
func (e *Exporter) Export(writer io.Writer, results []map[string]any) error {
	switch e.options.Format {
	case FormatJSON:
		return e.exportJSON(writer, results)
	case FormatYAML:
		return e.exportYAML(writer, results)
	case FormatCSV, FormatTSV:
		return e.exportCSV(writer, results)
	default:
		return fmt.Errorf("unsupported export format: %s", e.options.Format)
	}
}

func (e *Exporter) exportJSON(writer io.Writer, results []map[string]any) error {
	if results == nil {
		results = []map[string]any{}
	}

	var data []byte
	var err error
	if e.options.Pretty {
		data, err = json.MarshalIndent(results, "", "  ")
	} else {
		data, err = json.Marshal(results)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	data = append(data, '\n')
	_, err = writer.Write(data)
	return err
}

func (e *Exporter) exportYAML(writer io.Writer, results []map[string]any) error {
	if results == nil {
		results = []map[string]any{}
	}
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// exportCSV exports results as CSV or TSV with sorted columns
func (e *Exporter) exportCSV(writer io.Writer, results []map[string]any) error {
	if len(results) == 0 {
		return nil
	}

	csvWriter := csv.NewWriter(writer)
	if e.options.Delimiter != "" {
		delimiter, _ := utf8.DecodeRuneInString(e.options.Delimiter)
		csvWriter.Comma = delimiter
	}

	columns := Columns(results)
	if e.options.Headers {
		if err := csvWriter.Write(columns); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, result := range results {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = e.formatValue(result[column])
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// formatValue renders one cell for CSV/TSV export
func (e *Exporter) formatValue(value any) string {
	if value == nil {
		return e.options.NullValue
	}

	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		if v == "" {
			return e.options.NullValue
		}
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = e.formatValue(item)
		}
		return strings.Join(parts, e.options.ListSeparator)
	case []string:
		return strings.Join(v, e.options.ListSeparator)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Columns returns the union of the result keys in sorted order
func Columns(results []map[string]any) []string {
	columnSet := make(map[string]bool)
	for _, result := range results {
		for key := range result {
			columnSet[key] = true
		}
	}
	columns := make([]string, 0, len(columnSet))
	for column := range columnSet {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
