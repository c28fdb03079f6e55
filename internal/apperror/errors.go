// Package apperror описывает ошибки уровня API и их отображение в HTTP-статусы.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// FieldError - описание нарушения для одного поля запроса
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ServiceError struct {
	Code       Code
	HTTPStatus int
	Message    string
	Fields     []FieldError
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails возвращает копию ошибки с дополнительным полем деталей
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	cp := *e
	cp.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

func Validation(fields ...FieldError) *ServiceError {
	return &ServiceError{Code: CodeValidation, HTTPStatus: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

// BadRequest - некорректный запрос без разбивки по полям (битый JSON и т.п.)
func BadRequest(message string) *ServiceError {
	return &ServiceError{Code: CodeValidation, HTTPStatus: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "unauthorized"
	}
	return &ServiceError{Code: CodeUnauthorized, HTTPStatus: http.StatusUnauthorized, Message: message}
}

func NotFound(message string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, HTTPStatus: http.StatusNotFound, Message: message}
}

func Conflict(message string) *ServiceError {
	return &ServiceError{Code: CodeConflict, HTTPStatus: http.StatusBadRequest, Message: message}
}

func RateLimited() *ServiceError {
	return &ServiceError{Code: CodeRateLimited, HTTPStatus: http.StatusTooManyRequests, Message: "too many requests"}
}

func Internal(err error) *ServiceError {
	return &ServiceError{Code: CodeInternal, HTTPStatus: http.StatusInternalServerError, Message: "server error", Err: err}
}

// From приводит произвольную ошибку к ServiceError; неизвестные ошибки становятся Internal
func From(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return Internal(err)
}
