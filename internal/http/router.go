package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/apperror"
	"github.com/sun1tar/taskmanager/internal/middleware"
	"github.com/sun1tar/taskmanager/internal/service"
	sharedmw "github.com/sun1tar/taskmanager/shared/middleware"
)

// Pinger - хранилище для /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Auth   *service.AuthService
	Lists  *service.ListService
	Tasks  *service.TaskService
	Tokens middleware.TokenVerifier
	Store  Pinger
	Logger *logrus.Logger

	// ExposeErrorDetail добавляет текст внутренней ошибки в ответы 500 (вне production)
	ExposeErrorDetail bool
	AllowedOrigins    []string
	AuthRateLimiter   *middleware.RateLimiter
	HSTS              bool
}

// NewRouter собирает маршруты API и цепочку middleware:
// request-id -> logging -> metrics -> security headers -> CORS -> mux
func NewRouter(cfg RouterConfig) http.Handler {
	b := base{logger: cfg.Logger, exposeDetail: cfg.ExposeErrorDetail}
	authHandler := &AuthHandler{base: b, auth: cfg.Auth}
	listHandler := &ListHandler{base: b, lists: cfg.Lists}
	taskHandler := &TaskHandler{base: b, tasks: cfg.Tasks}

	r := mux.NewRouter()
	r.HandleFunc("/", welcome).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz(cfg.Store)).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.AuthRateLimiter == nil {
			return h
		}
		return cfg.AuthRateLimiter.Handler(h)
	}
	api.Handle("/auth/register", limited(authHandler.Register)).Methods(http.MethodPost)
	api.Handle("/auth/login", limited(authHandler.Login)).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Auth(cfg.Tokens, cfg.Logger))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/auth/password", authHandler.ChangePassword).Methods(http.MethodPut)

	protected.HandleFunc("/lists", listHandler.ListLists).Methods(http.MethodGet)
	protected.HandleFunc("/lists", listHandler.CreateList).Methods(http.MethodPost)
	protected.HandleFunc("/lists/{id}", listHandler.RenameList).Methods(http.MethodPut)
	protected.HandleFunc("/lists/{id}", listHandler.DeleteList).Methods(http.MethodDelete)

	protected.HandleFunc("/tasks/{listId}", taskHandler.ListTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{listId}", taskHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{listId}/{taskId}", taskHandler.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{listId}/{taskId}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	protected.HandleFunc("/starred", taskHandler.Starred).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apperror.Render(w, apperror.NotFound("route not found"), false)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apperror.Render(w, &apperror.ServiceError{
			Code:       apperror.CodeValidation,
			HTTPStatus: http.StatusMethodNotAllowed,
			Message:    "method not allowed",
		}, false)
	})

	var handler http.Handler = r
	handler = middleware.NewCORS(cfg.AllowedOrigins).Handler(handler)
	handler = middleware.SecurityHeaders(cfg.HSTS)(handler)
	handler = middleware.Metrics(r)(handler)
	handler = sharedmw.LoggingMiddleware(cfg.Logger)(handler)
	handler = sharedmw.RequestIDMiddleware(handler)
	return handler
}

func welcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Task Manager API"})
}

func healthz(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
