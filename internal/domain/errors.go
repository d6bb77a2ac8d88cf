package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrExpired         = errors.New("expired")
	ErrInvalid         = errors.New("invalid")
	ErrUnconfigured    = errors.New("unconfigured")
	ErrTooManyRequests = errors.New("too many requests")
)

// Error is a business-rule failure with a stable machine-readable code.
// It unwraps to its Kind, so errors.Is(err, ErrNotFound) keeps working.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds a coded error of the given kind.
func NewError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Verification flow.
var (
	ErrTokenInvalid            = NewError(ErrInvalid, "TOKEN_INVALID", "invalid token")
	ErrTokenExpired            = NewError(ErrExpired, "TOKEN_EXPIRED", "token expired")
	ErrChallengeNotFound       = NewError(ErrNotFound, "CHALLENGE_NOT_FOUND", "verification challenge not found")
	ErrEmailMismatch           = NewError(ErrInvalid, "EMAIL_MISMATCH", "email does not match the verification challenge")
	ErrInvalidVerificationCode = NewError(ErrInvalid, "INVALID_VERIFICATION_CODE", "invalid verification code")
	ErrChallengeExpired        = NewError(ErrExpired, "CHALLENGE_EXPIRED", "verification code expired")
	ErrChallengeSuperseded     = NewError(ErrInvalid, "CHALLENGE_SUPERSEDED", "verification challenge was replaced by a newer one")
	ErrChallengeAlreadyUsed    = NewError(ErrConflict, "CHALLENGE_ALREADY_USED", "verification challenge already used")
	ErrChallengeMismatch       = NewError(ErrConflict, "CHALLENGE_MISMATCH", "verification challenge does not match the pending verification")
	ErrVerificationNotFound    = NewError(ErrNotFound, "VERIFICATION_NOT_FOUND", "verification record not found")
	ErrVerificationExpired     = NewError(ErrExpired, "VERIFICATION_EXPIRED", "verification code expired")
	ErrVerificationRequired    = NewError(ErrInvalid, "VERIFICATION_REQUIRED", "email verification required")
	ErrUserAlreadyExists       = NewError(ErrConflict, "USER_ALREADY_EXISTS", "user already exists")
)

// Accounts, sessions and password reset.
var (
	ErrUserNotFound             = NewError(ErrNotFound, "USER_NOT_FOUND", "user not found")
	ErrInvalidCredentials       = NewError(ErrUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrPasswordResetUnavailable = NewError(ErrForbidden, "PASSWORD_RESET_UNAVAILABLE", "password reset is not available for this account")
	ErrResetCodeInvalid         = NewError(ErrInvalid, "RESET_CODE_INVALID", "invalid or expired reset code")
	ErrResetCodeExpired         = NewError(ErrExpired, "RESET_CODE_EXPIRED", "reset code expired")
	ErrPasswordReused           = NewError(ErrInvalid, "PASSWORD_REUSED", "new password must differ from the current one")
	ErrPasswordTooLong          = NewError(ErrBadRequest, "PASSWORD_TOO_LONG", "password must be at most 72 bytes")
	ErrRateLimited              = NewError(ErrTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
)
