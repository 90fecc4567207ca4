package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+7 (999) 123-45-67": "+79991234567",
		"  89991234567 ":     "89991234567",
		"7+999":              "7999",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("+79991234567"))
	assert.NoError(t, ValidatePhone("1234567"))
	assert.ErrorIs(t, ValidatePhone("+12345"), ErrInvalidPhone)
	assert.ErrorIs(t, ValidatePhone("+1234567890123456"), ErrInvalidPhone)
	assert.ErrorIs(t, ValidatePhone("12a4567"), ErrInvalidPhone)
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "79991234567", PhoneDigits("+7 999 123 45 67"))
}

func TestCreateClientRequestValidate(t *testing.T) {
	req := CreateClientRequest{Name: "Ann", Phone: "+79991234567"}
	assert.NoError(t, req.Validate())

	req.Link = "ftp://example.com/file"
	assert.ErrorIs(t, req.Validate(), ErrInvalidLink)

	req.Link = "https://example.com/portfolio"
	assert.NoError(t, req.Validate())

	req.Phone = "abc"
	assert.ErrorIs(t, req.Validate(), ErrInvalidPhone)

	req.Phone = "+7 (999) 123-45-67"
	assert.NoError(t, req.Validate())

	req.Name = ""
	assert.ErrorIs(t, req.Validate(), ErrNameRequired)
}

func TestCreateContactRequestValidate(t *testing.T) {
	req := CreateContactRequest{Name: "Bob"}
	assert.ErrorIs(t, req.Validate(), ErrPhoneRequired)

	for _, phone := range []string{"abc", "12", "+1234567890123456"} {
		req.Phone = phone
		assert.ErrorIs(t, req.Validate(), ErrInvalidPhone, phone)
	}

	req.Phone = "+7 (999) 123-45-67"
	assert.NoError(t, req.Validate())
}

func TestOTPRecordExpired(t *testing.T) {
	now := time.Now()
	rec := OTPRecord{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, rec.Expired(now))
	assert.True(t, rec.Expired(now.Add(2*time.Minute)))
	assert.False(t, (&OTPRecord{}).Expired(now))
}
