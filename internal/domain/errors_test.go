package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("create event: %w", NewValidationError("name", "is required"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "create event: name: is required", err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)
}
