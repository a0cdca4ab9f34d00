package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/compozy/testproject/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Should format code and metadata", func(t *testing.T) {
		err := core.NewError(errors.New("bad value"), core.ErrorCodeInvalidArgument, map[string]any{"arg": 0})
		assert.Equal(t, "[INVALID_ARGUMENT] bad value (metadata: map[arg:0])", err.Error())
	})

	t.Run("Should format without metadata", func(t *testing.T) {
		err := core.Errorf(core.ErrorCodeParseFailure, nil, "line %d", 3)
		assert.Equal(t, "[PARSE_FAILURE] line 3", err.Error())
	})

	t.Run("Should match sentinel by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("calling add: %w", core.Errorf(core.ErrorCodeInvalidArgument, nil, "nil"))
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
		assert.NotErrorIs(t, err, core.ErrUnknownSymbol)
		assert.Equal(t, core.ErrorCodeInvalidArgument, core.CodeOf(err))
	})

	t.Run("Should return empty code for plain errors", func(t *testing.T) {
		assert.Equal(t, core.ErrorCode(""), core.CodeOf(errors.New("plain")))
		assert.Equal(t, core.ErrorCode(""), core.CodeOf(nil))
	})
}

func TestNewID(t *testing.T) {
	t.Run("Should generate distinct ids", func(t *testing.T) {
		a, b := core.NewID(), core.NewID()
		assert.NotEqual(t, a, b)
		assert.Len(t, a.String(), 36)
	})
}
