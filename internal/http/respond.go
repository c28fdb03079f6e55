package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/apperror"
	"github.com/sun1tar/taskmanager/internal/validation"
	"github.com/sun1tar/taskmanager/shared/middleware"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

// base - общее для всех хендлеров: логгер и режим выдачи деталей ошибок
type base struct {
	logger       *logrus.Logger
	exposeDetail bool
}

func (b base) entry(r *http.Request, handler string) *logrus.Entry {
	return b.logger.WithFields(logrus.Fields{
		"component":  "http_handler",
		"handler":    handler,
		"request_id": middleware.GetRequestID(r.Context()),
	})
}

// fail логирует и отдаёт ошибку; 5xx - на уровне error, остальное - warn
func (b base) fail(w http.ResponseWriter, entry *logrus.Entry, err error) {
	se := apperror.From(err)
	if se.HTTPStatus >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithFields(logrus.Fields{
			"status": se.HTTPStatus,
			"reason": se.Message,
		}).Warn("request rejected")
	}
	apperror.Render(w, se, b.exposeDetail)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type normalizer interface {
	normalize()
}

// decode читает тело запроса, приводит поля к каноническому виду и валидирует
func decode(w http.ResponseWriter, r *http.Request, dst normalizer) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.BadRequest("request body too large")
		}
		return apperror.BadRequest("invalid request body")
	}
	dst.normalize()
	return validation.Struct(dst)
}
