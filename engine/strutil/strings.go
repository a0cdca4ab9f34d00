// Package strutil provides byte-oriented string transforms.
//
// The transforms work on bytes, not runes: ToUpper only maps ASCII letters and
// Reverse reverses byte order, so multi-byte UTF-8 input is not preserved.
package strutil

// ToUpper returns s with every ASCII lower-case letter mapped to upper case.
// All other bytes are copied unchanged.
func ToUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// Reverse returns s with its bytes in reverse order.
func Reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Brackets returns s wrapped in square brackets, e.g. "x" becomes "[x]".
// The declared method it mirrors has no body, so no reference behaviour
// exists; square brackets are a chosen convention recorded in DESIGN.md.
func Brackets(s string) string {
	return "[" + s + "]"
}

// StringUtils exposes the transforms as methods. The zero value is ready to use.
type StringUtils struct{}

// ToUpper calls the package-level ToUpper
func (StringUtils) ToUpper(s string) string { return ToUpper(s) }

// Reverse calls the package-level Reverse
func (StringUtils) Reverse(s string) string { return Reverse(s) }

// Brackets calls the package-level Brackets
func (StringUtils) Brackets(s string) string { return Brackets(s) }
