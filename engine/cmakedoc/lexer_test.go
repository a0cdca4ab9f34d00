package cmakedoc_test

import (
	"testing"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	t.Run("Should tokenise commands and arguments", func(t *testing.T) {
		nodes, err := cmakedoc.Lex("set(FOO \"a b\" [[raw ]] x;y ${BAR})\n")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, cmakedoc.NodeCommand, nodes[0].Kind)
		assert.Equal(t, "set", nodes[0].Identifier)
		assert.Equal(t, []string{"FOO", `"a b"`, "raw ", "x;y", "${BAR}"}, nodes[0].Values())
		assert.True(t, nodes[0].Args[1].Quoted)
		assert.True(t, nodes[0].Args[2].Bracket)
	})

	t.Run("Should track lines and own-line comments", func(t *testing.T) {
		src := "# header\n\nmessage(STATUS hi) # trailing\n#[==[ block\n]==]\n"
		nodes, err := cmakedoc.Lex(src)
		require.NoError(t, err)
		require.Len(t, nodes, 4)

		assert.Equal(t, "# header", nodes[0].Text)
		assert.True(t, nodes[0].OwnLine)
		assert.Equal(t, 1, nodes[0].Line)

		assert.Equal(t, 3, nodes[1].Line)

		assert.Equal(t, "# trailing", nodes[2].Text)
		assert.False(t, nodes[2].OwnLine)

		assert.True(t, nodes[3].Bracketed)
		assert.Equal(t, " block\n", nodes[3].Text)
		assert.Equal(t, 4, nodes[3].Line)
		assert.Equal(t, 5, nodes[3].EndLine)
	})

	t.Run("Should accept a UTF-8 byte order mark", func(t *testing.T) {
		nodes, err := cmakedoc.Lex("\xef\xbb\xbf# d\nfunction(g)\nendfunction()\n")
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		assert.Equal(t, "# d", nodes[0].Text)
		assert.True(t, nodes[0].OwnLine)
		assert.Equal(t, 2, nodes[1].Line)

		callables, err := cmakedoc.Parse("\xef\xbb\xbf# d\nfunction(g)\nendfunction()\n")
		require.NoError(t, err)
		require.Len(t, callables, 1)
		assert.Equal(t, "g", callables[0].Name)
		assert.Equal(t, "d", callables[0].Doc)
	})

	t.Run("Should keep nested parentheses and escapes", func(t *testing.T) {
		nodes, err := cmakedoc.Lex("if((A OR B) AND \"q\\\"x\")\nendif()")
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.Equal(t, []string{"(", "A", "OR", "B", ")", "AND", `"q\"x"`}, nodes[0].Values())
		assert.Equal(t, 2, nodes[1].Line)
	})

	t.Run("Should skip comments inside argument lists", func(t *testing.T) {
		nodes, err := cmakedoc.Lex("set(A\n  # note\n  B #[[x]] C\n)")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, []string{"A", "B", "C"}, nodes[0].Values())
		assert.Equal(t, 4, nodes[0].EndLine)
	})

	errorCases := []struct {
		name string
		src  string
	}{
		{name: "Should fail on unterminated argument list", src: "set(A B\n"},
		{name: "Should fail on unterminated quote", src: "set(A \"open)\n"},
		{name: "Should fail on unterminated bracket comment", src: "#[[ never closed"},
		{name: "Should fail on missing parenthesis", src: "set A B"},
		{name: "Should fail on stray characters", src: ")"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cmakedoc.Lex(tc.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrParseFailure)
		})
	}
}
