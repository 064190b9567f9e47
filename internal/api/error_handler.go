package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
)

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func errorBody(appErr *errors.AppError) map[string]errorPayload {
	return map[string]errorPayload{
		"error": {Code: appErr.Code, Message: appErr.Message, Retryable: appErr.Retryable},
	}
}

// toAppError maps anything a handler can see onto an AppError.
func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, repository.ErrConflict):
		return errors.NewConflictError(err)
	case stderrors.Is(err, repository.ErrUnavailable), stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewStoreUnavailableError(err)
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError("resource", "")
	}
	return errors.NewInternalError(err)
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	if stderrors.Is(err, context.Canceled) {
		log.Debug("client went away: %v", err)
		return
	}

	appErr := toAppError(err)
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	writeJSON(w, r, appErr.Status, errorBody(appErr))
}
