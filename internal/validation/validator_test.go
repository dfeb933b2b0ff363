package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
	Role     string `form:"role" binding:"required,oneof=Admin Agent"`
	Limit    int    `form:"limit" binding:"max=10"`
}

func TestFieldErrors(t *testing.T) {
	v := New()

	err := v.Struct(signup{Email: "not-an-email", Password: "short", Role: "Root", Limit: 20})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "Enter a valid email address", fields["email"])
	assert.Equal(t, "Must be at least 8 characters", fields["password"])
	assert.Equal(t, "Must be one of: Admin, Agent", fields["role"])
	assert.Equal(t, "Must be at most 10", fields["limit"])
}

func TestFieldErrorsRequired(t *testing.T) {
	fields := FieldErrors(New().Struct(signup{}))
	assert.Equal(t, "This field is required", fields["email"])
	assert.Equal(t, "This field is required", fields["password"])
}

func TestValidStruct(t *testing.T) {
	assert.NoError(t, New().Struct(signup{Email: "a@b.co", Password: "longenough", Role: "Agent"}))
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}

func TestValidateStructSkipsNonStructs(t *testing.T) {
	v := New()
	assert.NoError(t, v.ValidateStruct(nil))
	assert.NoError(t, v.ValidateStruct([]string{"x"}))
	assert.Error(t, v.ValidateStruct(&signup{}))
	assert.NotNil(t, v.Engine())
}
