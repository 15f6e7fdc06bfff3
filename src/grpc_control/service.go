package grpc_control

import (
	"fmt"
	"net"

	"drift-observer/src/logger"
	"drift-observer/src/models"
	"drift-observer/src/store"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// -----------------------------------------------------------------------------
// ControlService exposes the standard gRPC health service for orchestration
// probes. The "session" service name reports SERVING only while a trading
// session is active; the empty name covers overall process liveness.
// -----------------------------------------------------------------------------

const sessionServiceName = "session"

type ControlService struct {
	Config       *models.MConfig
	TradingStore *store.TradingSessionStore
	Logger       *logger.Logger

	server *grpc.Server
	health *health.Server
}

// -----------------------------------------------------------------------------

func NewControlService(cfg *models.MConfig, tradingStore *store.TradingSessionStore, log *logger.Logger) *ControlService {
	return &ControlService{
		Config:       cfg,
		TradingStore: tradingStore,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// Start listens on the configured gRPC address. Blocks until Stop.
func (s *ControlService) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.GrpcHost, s.Config.GrpcPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", addr, err)
	}

	s.server = grpc.NewServer()
	s.health = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.server, s.health)

	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.refreshSessionStatus()

	s.Logger.Info("gRPC control listening on %s", addr)
	return s.server.Serve(listener)
}

// -----------------------------------------------------------------------------

// RefreshStatus re-evaluates the session health status. Called by the wiring
// layer after connect/disconnect transitions.
func (s *ControlService) RefreshStatus() {
	if s.health == nil {
		return
	}
	s.refreshSessionStatus()
}

// -----------------------------------------------------------------------------

func (s *ControlService) refreshSessionStatus() {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if _, _, _, active := s.TradingStore.Session(); active {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(sessionServiceName, status)
}

// -----------------------------------------------------------------------------

func (s *ControlService) Stop() {
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.server != nil {
		s.server.GracefulStop()
	}
}
