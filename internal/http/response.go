package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/domain/repository"
	httperrors "github.com/OpenQueue/API/internal/http/errors"
	"github.com/OpenQueue/API/internal/login"
	"github.com/OpenQueue/API/internal/observability/logger"
)

// envelope is the wire shape of every response: exactly one of data and
// error is non-null.
type envelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// WriteData writes a success envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// WriteAppError writes an error envelope from a catalogue entry.
func WriteAppError(w http.ResponseWriter, e *httperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.HTTPStatus)
	msg := e.Message
	if e.Detail != "" {
		msg = e.Detail
	}
	_ = json.NewEncoder(w).Encode(envelope{Error: map[string]any{
		"code":    e.Code,
		"message": msg,
	}})
}

// WriteError maps err onto the catalogue and writes it. Internal causes
// are logged, not exposed.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var app *httperrors.AppError
	switch {
	case errors.As(err, &app):
		// already mapped
	case errors.Is(err, auth.ErrAuthentication):
		app = httperrors.ErrUnauthorized
	case errors.Is(err, auth.ErrScopeDenied):
		app = httperrors.ErrForbidden
	case errors.Is(err, auth.ErrMissingState):
		app = httperrors.ErrBadRequest.WithDetail(err.Error())
	case errors.Is(err, login.ErrInvalidToken):
		app = httperrors.ErrInvalidToken
	case errors.Is(err, repository.ErrNotFound):
		app = httperrors.ErrNotFound
	default:
		app = httperrors.ErrInternal.WithCause(err)
	}

	if app.HTTPStatus >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed",
			logger.Layer("http"), logger.Path(r.URL.Path), logger.Err(err))
	}
	WriteAppError(w, app)
}

// ReadJSON decodes the request body, bounded at 64KB.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}
