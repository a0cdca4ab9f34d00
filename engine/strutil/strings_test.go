package strutil_test

import (
	"testing"

	"github.com/compozy/testproject/engine/strutil"
	"github.com/stretchr/testify/assert"
)

var samples = []string{
	"",
	"a",
	"hello",
	"Already UPPER 123",
	"mixed_Case-with.punct!",
	"tab\tand\nnewline",
	"héllo wörld",
	"日本語",
	"\x00\xff\x80",
}

func TestToUpper(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Should upper-case lower-case letters", input: "hello", expected: "HELLO"},
		{name: "Should leave upper-case and digits alone", input: "Already UPPER 123", expected: "ALREADY UPPER 123"},
		{name: "Should return empty for empty", input: "", expected: ""},
		{name: "Should not fold multi-byte letters", input: "héllo", expected: "HéLLO"},
		{name: "Should keep punctuation", input: "a-b_c.d", expected: "A-B_C.D"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, strutil.ToUpper(tc.input))
		})
	}

	t.Run("Should be idempotent", func(t *testing.T) {
		for _, s := range samples {
			once := strutil.ToUpper(s)
			assert.Equal(t, once, strutil.ToUpper(once), "input %q", s)
		}
	})

	t.Run("Should produce only upper-case for alphabetic input", func(t *testing.T) {
		for _, s := range []string{"abc", "xYz", "Zebra", "q"} {
			for _, c := range []byte(strutil.ToUpper(s)) {
				assert.True(t, c >= 'A' && c <= 'Z', "byte %q in %q", c, s)
			}
		}
	})
}

func TestReverse(t *testing.T) {
	t.Run("Should reverse ASCII", func(t *testing.T) {
		assert.Equal(t, "olleh", strutil.Reverse("hello"))
	})

	t.Run("Should return empty for empty", func(t *testing.T) {
		assert.Equal(t, "", strutil.Reverse(""))
	})

	t.Run("Should reverse bytes, not runes", func(t *testing.T) {
		assert.Equal(t, "\xa9\xc3", strutil.Reverse("é"))
	})

	t.Run("Should be an involution", func(t *testing.T) {
		for _, s := range samples {
			assert.Equal(t, s, strutil.Reverse(strutil.Reverse(s)), "input %q", s)
		}
	})
}

func TestBrackets(t *testing.T) {
	t.Run("Should wrap in square brackets", func(t *testing.T) {
		assert.Equal(t, "[abc]", strutil.Brackets("abc"))
		assert.Equal(t, "[]", strutil.Brackets(""))
	})
}

func TestStringUtils(t *testing.T) {
	t.Run("Should match the free functions", func(t *testing.T) {
		var u strutil.StringUtils
		for _, s := range samples {
			assert.Equal(t, strutil.ToUpper(s), u.ToUpper(s))
			assert.Equal(t, strutil.Reverse(s), u.Reverse(s))
			assert.Equal(t, strutil.Brackets(s), u.Brackets(s))
		}
	})
}
