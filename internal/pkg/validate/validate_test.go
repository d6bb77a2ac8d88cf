package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassword(t *testing.T) {
	assert.True(t, Password("Aa1!aaaa"))
	assert.True(t, Password("Correct-Horse"))
	assert.False(t, Password("Aa1!aaa"), "too short")
	assert.False(t, Password("aa1!aaaa"), "no upper")
	assert.False(t, Password("AA1!AAAA"), "no lower")
	assert.False(t, Password("Aa1aaaaa"), "no special")
	assert.True(t, Password("Aa1!"+strings.Repeat("a", 68)), "72 bytes")
	assert.False(t, Password("Aa1!"+strings.Repeat("a", 80)), "over bcrypt limit")
	assert.False(t, Password("Aa1!"+strings.Repeat("é", 35)), "72 bytes is counted in bytes, not runes")
}

type signupForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
	Marital  string `validate:"omitempty,maritalstatus"`
}

func TestStruct_CustomTags(t *testing.T) {
	assert.NoError(t, Struct(signupForm{Email: "a@x.com", Password: "Aa1!aaaa", Marital: "married"}))

	err := Struct(signupForm{Email: "a@x.com", Password: "weak", Marital: "engaged"})
	assert.ErrorContains(t, err, "field 'Password' failed 'password'")
	assert.ErrorContains(t, err, "field 'Marital' failed 'maritalstatus'")
}

type resetForm struct {
	NewPassword string `json:"new_password" validate:"required,password"`
}

func TestStruct_ReportsJSONNames(t *testing.T) {
	err := Struct(resetForm{NewPassword: "short"})
	assert.ErrorContains(t, err, "field 'new_password' failed 'password'")
}

func TestStruct_MaritalStatusIgnoresCase(t *testing.T) {
	assert.NoError(t, Struct(signupForm{Email: "a@x.com", Password: "Aa1!aaaa", Marital: "Single"}))
}
