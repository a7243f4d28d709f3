package engine

import (
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName задает имя сервиса в grpc.health.v1.
const HealthServiceName = "cyberinvest.Advisor"

// HealthServer отдает состояние сервиса по стандартному протоколу gRPC health.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	logger *zap.Logger
}

func NewHealthServer(logger *zap.Logger) *HealthServer {
	hs := &HealthServer{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
		logger: logger.Named("grpc-health"),
	}
	healthpb.RegisterHealthServer(hs.srv, hs.health)
	hs.SetServing(true)
	return hs
}

// SetServing переключает статус и сервиса, и сервера целиком ("").
func (hs *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.health.SetServingStatus("", status)
	hs.health.SetServingStatus(HealthServiceName, status)
}

// Serve блокируется до остановки сервера.
func (hs *HealthServer) Serve(lis net.Listener) error {
	hs.logger.Info("gRPC health server started", zap.String("addr", lis.Addr().String()))
	return hs.srv.Serve(lis)
}

// Shutdown сначала объявляет NOT_SERVING, затем дожидается активных вызовов.
func (hs *HealthServer) Shutdown() {
	hs.SetServing(false)
	hs.health.Shutdown()
	hs.srv.GracefulStop()
}
