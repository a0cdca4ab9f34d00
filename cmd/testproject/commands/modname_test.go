package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModnameCommand(t *testing.T) {
	module := writeFile(t, "test_project_bindings.so", "\x7fELF\x00\x00PyInit_test_project_bindings\x00rest")

	t.Run("Should print the module name", func(t *testing.T) {
		output, err := executeCommand("modname", module)

		require.NoError(t, err)
		assert.Equal(t, "test_project_bindings\n", output)
	})

	t.Run("Should succeed silently when the name matches", func(t *testing.T) {
		output, err := executeCommand("modname", module, "test_project_bindings")

		require.NoError(t, err)
		assert.Empty(t, output)
	})

	t.Run("Should fail when the name differs", func(t *testing.T) {
		_, err := executeCommand("modname", module, "other")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Expected 'other', found 'test_project_bindings'")
	})

	t.Run("Should reject other file types", func(t *testing.T) {
		_, err := executeCommand("modname", writeFile(t, "module.txt", "PyInit_x"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVALID_INPUT")
	})

	t.Run("Should print nothing when no symbol exists", func(t *testing.T) {
		output, err := executeCommand("modname", writeFile(t, "empty.pyd", "MZ\x00\x00"))

		require.NoError(t, err)
		assert.Empty(t, output)
	})
}
