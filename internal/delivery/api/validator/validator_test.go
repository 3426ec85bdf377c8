package validator

import (
	"testing"

	domainerrors "authcore/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestCustomValidator_Valid(t *testing.T) {
	assert.NoError(t, New().Validate(&sample{Email: "test@example.com", Password: "password123"}))
}

func TestCustomValidator_ReportsJSONFieldNames(t *testing.T) {
	err := New().Validate(&sample{Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.KindValidation, appErr.Kind())

	details, ok := appErr.Details().([]FieldError)
	require.True(t, ok)
	assert.ElementsMatch(t, []FieldError{
		{Field: "email", Rule: "email"},
		{Field: "password", Rule: "min", Param: "6"},
	}, details)
}

func TestCustomValidator_MissingFields(t *testing.T) {
	err := New().Validate(&sample{})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	details := appErr.Details().([]FieldError)
	assert.Len(t, details, 2)
	for _, d := range details {
		assert.Equal(t, "required", d.Rule)
	}
}

type secret struct {
	Password string `json:"password" validate:"required,maxbytes=8"`
}

func TestCustomValidator_MaxBytesCountsBytes(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&secret{Password: "abcdefgh"}))
	assert.NoError(t, v.Validate(&secret{Password: "éééé"}))

	err := v.Validate(&secret{Password: "ééééé"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []FieldError{{Field: "password", Rule: "maxbytes", Param: "8"}}, appErr.Details())
}
