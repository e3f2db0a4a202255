package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWipeByteArray(t *testing.T) {
	key := []byte("derived-key-material")
	WipeByteArray(key)
	assert.Equal(t, make([]byte, len(key)), key)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(16)
	b := GenerateRandByteArray(16)
	require.Len(t, a, 16)
	require.Len(t, b, 16)
	assert.NotEqual(t, a, b)

	assert.Empty(t, GenerateRandByteArray(0))
}

func TestValidationErrorsShareSentinel(t *testing.T) {
	for _, err := range []error{ErrOutOfBounds, ErrMealAlreadyExists, ErrTooManyMeals, ErrMealNotFound} {
		assert.True(t, errors.Is(err, ErrValidation), err.Error())
	}
	assert.False(t, errors.Is(ErrorUnauthorized, ErrValidation))
}
