package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Auth errors. Every caller-caused rejection maps to one of these; handlers
// translate them to stable status codes and never log them as crashes.
var (
	ErrDuplicateEmail          = errors.New("email already exists")
	ErrDuplicateLicense        = errors.New("license number already exists")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrNotVerified             = errors.New("account pending admin verification")
	ErrMfaSetupIncomplete      = errors.New("mfa setup incomplete")
	ErrInvalidOrExpiredSession = errors.New("mfa session invalid or expired")
	ErrInvalidTOTP             = errors.New("invalid totp code")
	ErrInvalidOrExpiredToken   = errors.New("token invalid or expired")
	ErrUserNotFound            = errors.New("user not found")
)
