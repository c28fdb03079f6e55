// Package grpc поднимает служебный gRPC-сервер: стандартный health-check
// и reflection. Статус обновляется по результату пинга хранилища.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
)

// ServiceName - имя сервиса в health-check; пустое имя описывает сервер целиком
const ServiceName = "taskmanager.TaskManager"

const (
	DefaultProbeInterval = 10 * time.Second
	probeTimeout         = 3 * time.Second
)

// Pinger - хранилище, доступность которого определяет статус
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServer struct {
	server *grpc.Server
	health *health.Server
	pinger Pinger
	logger *logrus.Logger
}

func NewHealthServer(pinger Pinger, logger *logrus.Logger) *HealthServer {
	hs := health.NewServer()
	s := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &HealthServer{server: s, health: hs, pinger: pinger, logger: logger}
}

// Probe пингует хранилище и выставляет SERVING или NOT_SERVING
func (h *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WithError(err).WithField("component", "grpc_health").Warn("store ping failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch проверяет хранилище каждые interval, пока ctx не отменён
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	h.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *HealthServer) Serve(lis net.Listener) error {
	return h.server.Serve(lis)
}

// GracefulStop переводит все сервисы в NOT_SERVING и дожидается активных вызовов
func (h *HealthServer) GracefulStop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}

func loggingInterceptor(logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// request-id из входящих метаданных
		var requestID string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("x-request-id"); len(values) > 0 {
				requestID = values[0]
			}
		}

		start := time.Now()
		resp, err := handler(ctx, req)

		entry := logger.WithFields(logrus.Fields{
			"component":   "grpc_server",
			"method":      info.FullMethod,
			"request_id":  requestID,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Warn("grpc call failed")
		} else {
			entry.Debug("grpc call completed")
		}
		return resp, err
	}
}
