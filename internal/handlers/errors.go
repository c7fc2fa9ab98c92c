package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/account"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// toHTTPError maps domain errors to API errors. Unexpected errors are
// logged here and reported as 500 without details.
func toHTTPError(logger *zap.Logger, op string, err error) error {
	switch {
	case errors.Is(err, account.ErrEmptyField),
		errors.Is(err, account.ErrPasswordTooLong),
		errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, account.ErrEmailTaken):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, account.ErrInvalidCredentials):
		return huma.Error401Unauthorized(account.ErrInvalidCredentials.Error())
	case errors.Is(err, shortener.ErrUnauthorized):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, shortener.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	}

	logger.Error("request failed", zap.String("operation", op), zap.Error(err))

	return huma.Error500InternalServerError("internal error")
}
