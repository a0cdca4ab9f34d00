package mathutil_test

import (
	"math"
	"testing"

	"github.com/compozy/testproject/engine/mathutil"
	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	t.Run("Should add two integers", func(t *testing.T) {
		assert.Equal(t, 5, mathutil.Add(2, 3))
	})

	t.Run("Should be commutative", func(t *testing.T) {
		pairs := [][2]int64{{0, 0}, {-7, 12}, {math.MaxInt32, 9}, {1 << 40, -(1 << 20)}}
		for _, p := range pairs {
			assert.Equal(t, mathutil.Add(p[0], p[1]), mathutil.Add(p[1], p[0]))
			assert.Equal(t, p[0]+p[1], mathutil.Add(p[0], p[1]))
		}
	})

	t.Run("Should wrap on integer overflow", func(t *testing.T) {
		assert.Equal(t, int8(math.MinInt8), mathutil.Add(int8(math.MaxInt8), int8(1)))
		assert.Equal(t, uint8(0), mathutil.Add(uint8(255), uint8(1)))
	})

	t.Run("Should add floats", func(t *testing.T) {
		assert.InDelta(t, 0.3, mathutil.Add(0.1, 0.2), 1e-12)
		assert.True(t, math.IsInf(mathutil.Add(math.Inf(1), 1), 1))
	})
}

func TestMultiply(t *testing.T) {
	t.Run("Should multiply two integers", func(t *testing.T) {
		assert.Equal(t, 20, mathutil.Multiply(4, 5))
	})

	t.Run("Should be commutative", func(t *testing.T) {
		pairs := [][2]float64{{0, 3}, {-2.5, 4}, {1e10, 1e-10}, {7, 7}}
		for _, p := range pairs {
			assert.Equal(t, mathutil.Multiply(p[0], p[1]), mathutil.Multiply(p[1], p[0]))
			assert.Equal(t, p[0]*p[1], mathutil.Multiply(p[0], p[1]))
		}
	})

	t.Run("Should support named numeric types", func(t *testing.T) {
		type celsius float32
		assert.Equal(t, celsius(9), mathutil.Multiply(celsius(3), celsius(3)))
	})
}

func TestMath(t *testing.T) {
	t.Run("Should match the free functions", func(t *testing.T) {
		var m mathutil.Math
		assert.Equal(t, 5.0, m.Add(2, 3))
		assert.Equal(t, 20.0, m.Multiply(4, 5))
		assert.Equal(t, mathutil.Add(1.5, -4.25), m.Add(1.5, -4.25))
	})
}
