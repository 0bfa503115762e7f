// Package apierr maps ledger errors onto HTTP problem responses.
package apierr

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/budget-ledger/internal/model"
)

// Status returns the HTTP status for err.
func Status(err error) int {
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAccountNotFound, model.KindEntityNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// FromError wraps err in a huma error. Client errors carry the ledger's
// message; server errors carry msg only.
func FromError(msg string, err error) error {
	status := Status(err)
	if status < http.StatusInternalServerError {
		var kinded *model.Error
		if errors.As(err, &kinded) {
			return huma.NewError(status, kinded.Message, err)
		}
	}
	return huma.NewError(status, msg, err)
}
