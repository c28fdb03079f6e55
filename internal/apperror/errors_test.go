package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	nf := NotFound("list not found")

	assert.Nil(t, From(nil))
	assert.Same(t, nf, From(nf))
	assert.Same(t, nf, From(fmt.Errorf("wrapped: %w", nf)))

	raw := errors.New("boom")
	se := From(raw)
	assert.Equal(t, CodeInternal, se.Code)
	assert.Equal(t, http.StatusInternalServerError, se.HTTPStatus)
	assert.ErrorIs(t, se, raw)
}

func TestStatuses(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation(FieldError{Field: "email"}).HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, Conflict("user already exists").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("").HTTPStatus)
	assert.Equal(t, "unauthorized", Unauthorized("").Message)
	assert.Equal(t, http.StatusTooManyRequests, RateLimited().HTTPStatus)
}

func TestWithDetailsCopies(t *testing.T) {
	base := Unauthorized("invalid token")
	withAlg := base.WithDetails("alg", "none")

	assert.Nil(t, base.Details)
	assert.Equal(t, "none", withAlg.Details["alg"])
}

func TestRenderValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, Validation(FieldError{Field: "email", Message: "must be a valid email"}), true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"error":"validation failed","errors":[{"field":"email","message":"must be a valid email"}]}`,
		rec.Body.String())
}

func TestRenderInternalDetail(t *testing.T) {
	err := fmt.Errorf("list tasks: %w", errors.New("connection reset"))

	rec := httptest.NewRecorder()
	Render(rec, err, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"server error","detail":"list tasks: connection reset"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Render(rec, err, false)
	assert.JSONEq(t, `{"error":"server error"}`, rec.Body.String())
}

func TestRenderNeverLeaksClientErrorCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, NotFound("task not found"), true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"task not found"}`, rec.Body.String())
}
