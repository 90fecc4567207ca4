package domain

import "errors"

var (
	// Validation errors
	ErrNameRequired  = errors.New("name is required")
	ErrPhoneRequired = errors.New("phone number is required")
	ErrCodeRequired  = errors.New("verification code is required")
	ErrInvalidPhone  = errors.New("invalid phone number")
	ErrInvalidLink   = errors.New("link must be an absolute http(s) URL")

	// OTP errors
	ErrCodeNotFound = errors.New("verification code not found for this phone number")
	ErrCodeExpired  = errors.New("verification code has expired")
	ErrCodeMismatch = errors.New("invalid verification code")
)
