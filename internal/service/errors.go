package service

import (
	"errors"
	"fmt"

	"github.com/sun1tar/taskmanager/internal/apperror"
	"github.com/sun1tar/taskmanager/internal/repository"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgUserExists         = "user already exists"
	msgWrongPassword      = "current password is incorrect"
	msgUserNotFound       = "user not found"
	msgListNotFound       = "list not found"
	msgTaskNotFound       = "task not found"
)

// storeError переводит ошибки хранилища в ошибки API
func storeError(op string, err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Conflict(msgUserExists)
	default:
		return apperror.Internal(fmt.Errorf("%s: %w", op, err))
	}
}
