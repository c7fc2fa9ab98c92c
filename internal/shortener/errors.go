package shortener

import "errors"

var (
	ErrNotFound     = errors.New("short link not found")
	ErrUnauthorized = errors.New("login required")
	ErrForbidden    = errors.New("short link belongs to another user")
	ErrInvalidURL   = errors.New("url must be an absolute http or https url")

	// ErrCodeTaken is returned by a Repository when the code is already in use.
	ErrCodeTaken = errors.New("short code already in use")

	// ErrExhaustedRetries is returned when no free code was found within MaxCodeAttempts.
	ErrExhaustedRetries = errors.New("could not generate a unique short code")
)
