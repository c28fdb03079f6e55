package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/apperror"
	"github.com/sun1tar/taskmanager/internal/auth"
	sharedmw "github.com/sun1tar/taskmanager/shared/middleware"
)

type userIDKey struct{}

// TokenVerifier - то, что нужно middleware от сервиса токенов
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth пропускает запрос дальше только с валидным Bearer-токеном
func Auth(verifier TokenVerifier, l *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				apperror.Render(w, apperror.Unauthorized("missing or malformed authorization header"), false)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				l.WithFields(logrus.Fields{
					"component":  "auth_middleware",
					"request_id": sharedmw.GetRequestID(r.Context()),
				}).Warn("token rejected")
				apperror.Render(w, apperror.Unauthorized("invalid or expired token"), false)
				return
			}

			l.WithFields(logrus.Fields{
				"component":  "auth_middleware",
				"request_id": sharedmw.GetRequestID(r.Context()),
				"user_id":    claims.UserID,
			}).Debug("request authenticated")

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID возвращает id пользователя, подтверждённый Auth; пустая строка вне защищённых маршрутов
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
