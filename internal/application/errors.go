package application

import "errors"

// Domain failures surfaced to clients. The error text is the stable message
// code written into the response envelope; the HTTP layer owns the mapping to
// status codes. None of these are retryable without changing input.
var (
	ErrEmailAlreadyExists   = errors.New("email_already_exists")
	ErrPasswordMismatch     = errors.New("password_not_match")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrEmailAlreadyVerified = errors.New("email_already_verified")

	ErrOTPNotFound     = errors.New("otp_not_found")
	ErrOTPExpired      = errors.New("otp_expired")
	ErrInvalidOTP      = errors.New("invalid_otp")
	ErrTooManyAttempts = errors.New("too_many_attempts_try_later")

	ErrResendTooSoon       = errors.New("please_wait_before_resend")
	ErrResendLimitExceeded = errors.New("resend_limit_exceeded")

	ErrInvalidCredentials     = errors.New("invalid_credentials")
	ErrEmailNotVerified       = errors.New("email_not_verified")
	ErrAuthenticationRequired = errors.New("authentication_required")
	ErrToken                  = errors.New("token_error")

	ErrEmailDelivery = errors.New("email_delivery_failed")
	ErrNotFound      = errors.New("not_found")
)
