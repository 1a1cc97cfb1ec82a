package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/domain/repository"
	httperrors "github.com/OpenQueue/API/internal/http/errors"
	"github.com/OpenQueue/API/internal/login"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"authentication", auth.ErrAuthentication, http.StatusUnauthorized},
		{"scope denied", fmt.Errorf("%w: league.owner", auth.ErrScopeDenied), http.StatusForbidden},
		{"missing state", fmt.Errorf("%w: queue", auth.ErrMissingState), http.StatusBadRequest},
		{"invalid token", login.ErrInvalidToken, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: league L9", repository.ErrNotFound), http.StatusNotFound},
		{"already mapped", httperrors.ErrConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			WriteError(w, r, tc.err)

			assert.Equal(t, tc.code, w.Code)
			env := decode(t, w)
			assert.Nil(t, env.Data)
			require.NotNil(t, env.Error)
			assert.NotEmpty(t, env.Error["code"])
		})
	}
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(w, r, errors.New("dsn password leaked"))

	assert.NotContains(t, w.Body.String(), "dsn password leaked")
}

func TestWriteDataEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteData(w, http.StatusOK, map[string]string{"k": "v"})

	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	env := decode(t, w)
	assert.Equal(t, "v", env.Data["k"])
	assert.Nil(t, env.Error)
}

func TestReadJSON(t *testing.T) {
	var v struct {
		A string `json:"a"`
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"b"}`))
	require.NoError(t, ReadJSON(w, r, &v))
	assert.Equal(t, "b", v.A)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":`))
	err := ReadJSON(w, r, &v)
	require.Error(t, err)

	var app *httperrors.AppError
	require.ErrorAs(t, err, &app)
	assert.Equal(t, "INVALID_JSON", app.Code)

	// oversized body is rejected
	w = httptest.NewRecorder()
	big := `{"a":"` + strings.Repeat("x", 65<<10) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	require.Error(t, ReadJSON(w, r, &v))
}
