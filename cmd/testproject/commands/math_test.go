package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMathAndStrCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Should add", []string{"math", "add", "2", "3"}, "5\n"},
		{"Should multiply", []string{"math", "multiply", "4", "5"}, "20\n"},
		{"Should add negative floats", []string{"math", "add", "--", "-1.5", "0.25"}, "-1.25\n"},
		{"Should uppercase", []string{"str", "upper", "hello"}, "HELLO\n"},
		{"Should keep non letters", []string{"str", "upper", "Already UPPER 123"}, "ALREADY UPPER 123\n"},
		{"Should reverse", []string{"str", "reverse", "hello"}, "olleh\n"},
		{"Should bracket", []string{"str", "brackets", "x"}, "[x]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeCommand(tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, output)
		})
	}

	t.Run("Should reject non numeric operands", func(t *testing.T) {
		_, err := executeCommand("math", "add", "two", "3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
	})

	t.Run("Should require two operands", func(t *testing.T) {
		_, err := executeCommand("math", "multiply", "3")
		assert.Error(t, err)
	})
}
