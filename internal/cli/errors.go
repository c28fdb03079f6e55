package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sun1tar/taskmanager/internal/client"
)

// userError - ошибка во вводе пользователя, код 1
type userError struct {
	msg string
}

func (e *userError) Error() string { return e.msg }

func userErrorf(format string, args ...interface{}) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

// report печатает ошибку и подбирает код завершения
func report(w io.Writer, err error) int {
	var ue *userError
	if errors.As(err, &ue) {
		fmt.Fprintf(w, "error: %s\n", ue.msg)
		return ExitUserError
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			fmt.Fprintf(w, "error: auth error: %s (run: taskctl login)\n", apiErr.Message)
			return ExitAuthError
		case apiErr.Status >= http.StatusInternalServerError:
			fmt.Fprintf(w, "error: backend error: %s\n", apiErr.Message)
			return ExitBackendError
		default:
			fmt.Fprintf(w, "error: %s\n", apiErr.Error())
			return ExitUserError
		}
	}

	fmt.Fprintf(w, "error: backend error: %v\n", err)
	return ExitBackendError
}
