package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenmdCommand(t *testing.T) {
	t.Run("Should write the Markdown file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "docs.md")
		output, err := executeCommand("genmd", fixture, "-o", out, "-t", "Helpers")

		require.NoError(t, err)
		assert.Contains(t, output, "Success! Output saved to: "+out)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# Helpers\n")
		assert.Contains(t, string(data), "tp_add_library")
	})

	t.Run("Should print the Markdown with -o -", func(t *testing.T) {
		output, err := executeCommand("genmd", fixture, "-o", "-")

		require.NoError(t, err)
		assert.Contains(t, output, "# CMake Documentation\n")
		assert.NotContains(t, output, "Success!")
	})

	t.Run("Should write the index in the format of its extension", func(t *testing.T) {
		dir := t.TempDir()
		index := filepath.Join(dir, "index.yaml")
		output, err := executeCommand("genmd", fixture, "-o", filepath.Join(dir, "docs.md"), "--index", index, "--no-progress")

		require.NoError(t, err)
		assert.Contains(t, output, "Index saved to: "+index)

		data, err := os.ReadFile(index)
		require.NoError(t, err)
		assert.Contains(t, string(data), "source: "+fixture)
		assert.Contains(t, string(data), "name: tp_python_module")
	})

	t.Run("Should honor --format", func(t *testing.T) {
		dir := t.TempDir()
		index := filepath.Join(dir, "index.out")
		_, err := executeCommand("genmd", fixture, "-o", filepath.Join(dir, "docs.md"), "--index", index, "--format", "json")

		require.NoError(t, err)
		data, err := os.ReadFile(index)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"source": "`+fixture+`"`)
	})

	t.Run("Should use docs defaults from the config", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "from-config.md")
		abs, err := filepath.Abs(fixture)
		require.NoError(t, err)
		cfg := writeFile(t, "testproject.yaml", "docs:\n  input: "+abs+"\n  output: "+out+"\n  title: Configured\n")

		_, err = executeCommand("--config", cfg, "genmd")
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# Configured\n")
	})

	t.Run("Should report a missing input", func(t *testing.T) {
		_, err := executeCommand("genmd", filepath.Join(t.TempDir(), "missing.cmake"), "-o", "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FILE_NOT_FOUND")
	})

	t.Run("Should require an api key for --describe", func(t *testing.T) {
		_, err := executeCommand("genmd", fixture, "-o", "-", "--describe")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api key is required")
	})
}
