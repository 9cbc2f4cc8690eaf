package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email_address" binding:"required,email"`
	Code  string `json:"otp_code" binding:"required,otp"`
	Pass  string `json:"password" binding:"required,pwd"`
}

func validate(v sample) error {
	return binding.Validator.ValidateStruct(v)
}

func TestAliasesAndFieldNames(t *testing.T) {
	Init()

	err := validate(sample{Email: "a@x.com", Code: "123456", Pass: "secret1"})
	assert.NoError(t, err)

	err = validate(sample{Email: "not-an-email", Code: "12a456", Pass: "abc"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Contains(t, details, "email_address")
	assert.Contains(t, details, "otp_code")
	assert.Contains(t, details, "password")
}

func TestToDetailsNonValidationError(t *testing.T) {
	details := ToDetails(assert.AnError)
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, details)

	assert.Nil(t, ToDetails(nil))
}
