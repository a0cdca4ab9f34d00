package query

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var callableRows = []map[string]any{
	{"name": "tp_add_library", "line": int64(8), "public": true, "args": []any{"name", "visibility"}},
	{"name": "_tp_check_var_defined", "line": int64(40), "public": false, "args": []any{"var"}},
}

func TestExporter_ExportJSON(t *testing.T) {
	t.Run("Should_export_JSON_with_pretty_formatting", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewExporter(DefaultExportOptions(FormatJSON)).Export(&buf, callableRows)
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "tp_add_library")
		assert.Contains(t, output, "\n  ")

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Len(t, decoded, 2)
		assert.Equal(t, float64(8), decoded[0]["line"])
	})

	t.Run("Should_export_JSON_without_pretty_formatting", func(t *testing.T) {
		options := DefaultExportOptions(FormatJSON)
		options.Pretty = false

		var buf bytes.Buffer
		require.NoError(t, NewExporter(options).Export(&buf, callableRows))
		assert.NotContains(t, buf.String(), "  ")
	})

	t.Run("Should_export_an_empty_array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewExporter(nil).Export(&buf, nil))
		assert.Equal(t, "[]\n", buf.String())
	})
}

func TestExporter_ExportYAML(t *testing.T) {
	t.Run("Should_export_a_YAML_sequence", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewExporter(DefaultExportOptions(FormatYAML)).Export(&buf, callableRows))

		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "_tp_check_var_defined", decoded[1]["name"])
		assert.Equal(t, false, decoded[1]["public"])
	})
}

func TestExporter_ExportCSV(t *testing.T) {
	t.Run("Should_export_CSV_with_sorted_headers", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewExporter(DefaultExportOptions(FormatCSV)).Export(&buf, callableRows))

		assert.Equal(t,
			"args,line,name,public\n"+
				"name;visibility,8,tp_add_library,true\n"+
				"var,40,_tp_check_var_defined,false\n",
			buf.String())
	})

	t.Run("Should_export_CSV_without_headers", func(t *testing.T) {
		options := DefaultExportOptions(FormatCSV)
		options.Headers = false

		var buf bytes.Buffer
		require.NoError(t, NewExporter(options).Export(&buf, callableRows[:1]))
		assert.Equal(t, "name;visibility,8,tp_add_library,true\n", buf.String())
	})

	t.Run("Should_use_the_null_value_for_missing_cells", func(t *testing.T) {
		options := DefaultExportOptions(FormatCSV)
		options.NullValue = "-"

		var buf bytes.Buffer
		rows := []map[string]any{{"a": "x"}, {"b": nil}}
		require.NoError(t, NewExporter(options).Export(&buf, rows))
		assert.Equal(t, "a,b\nx,-\n-,-\n", buf.String())
	})

	t.Run("Should_write_nothing_for_empty_results", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewExporter(DefaultExportOptions(FormatCSV)).Export(&buf, nil))
		assert.Empty(t, buf.String())
	})
}

func TestExporter_ExportTSV(t *testing.T) {
	t.Run("Should_export_TSV_with_tab_delimiter", func(t *testing.T) {
		var buf bytes.Buffer
		rows := []map[string]any{{"name": "tp_python_module", "line": int64(52)}}
		require.NoError(t, NewExporter(DefaultExportOptions(FormatTSV)).Export(&buf, rows))
		assert.Equal(t, "line\tname\n52\ttp_python_module\n", buf.String())
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want ExportFormat
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"csv", FormatCSV},
		{"tsv", FormatTSV},
	}
	for _, tt := range tests {
		t.Run("Should_parse_"+tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Should_reject_unknown_formats", func(t *testing.T) {
		_, err := ParseFormat("xml")
		assert.Error(t, err)
	})
}
