// Package mathutil provides the arithmetic half of the example library.
//
// Every operation exists both as a generic free function and as a method on
// the stateless Math type, so either binding style can sit on top of it.
package mathutil

// Number is the set of operand types accepted by Add and Multiply.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Add returns a + b. Integer overflow wraps.
func Add[T Number](a, b T) T {
	return a + b
}

// Multiply returns a * b. Integer overflow wraps.
func Multiply[T Number](a, b T) T {
	return a * b
}

// Math exposes Add and Multiply as methods over float64.
// The zero value is ready to use.
type Math struct{}

// Add returns a + b
func (Math) Add(a, b float64) float64 {
	return Add(a, b)
}

// Multiply returns a * b
func (Math) Multiply(a, b float64) float64 {
	return Multiply(a, b)
}
