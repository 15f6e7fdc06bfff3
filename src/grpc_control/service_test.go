package grpc_control

import (
	"context"
	"sync"
	"testing"

	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"
	"drift-observer/src/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// -----------------------------------------------------------------------------
// Stubs for the trading-session handles
// -----------------------------------------------------------------------------

type stubClient struct{}

func (stubClient) PlaceOrder(ctx context.Context, params models.MOrderParams) (string, error) {
	return "", nil
}

func (stubClient) PlaceOrders(ctx context.Context, params []models.MOrderParams) (string, error) {
	return "", nil
}

func (stubClient) Deposit(ctx context.Context, amount string, marketIndex int, ata string, subAccountID uint16, reduceOnly bool) (string, error) {
	return "", nil
}

func (stubClient) Withdraw(ctx context.Context, amount string, marketIndex int, ata string, subAccountID uint16, reduceOnly bool) (string, error) {
	return "", nil
}

func (stubClient) GetAssociatedTokenAccount(ctx context.Context, marketIndex int) (string, error) {
	return "", nil
}

func (stubClient) UserAccountExists(ctx context.Context) (bool, error)      { return false, nil }
func (stubClient) UserStatsAccountExists(ctx context.Context) (bool, error) { return false, nil }

func (stubClient) InitializeUserAccount(ctx context.Context, subAccountID uint16, name string) (string, error) {
	return "", nil
}

func (stubClient) Subscribe(ctx context.Context) error { return nil }

type stubMap struct{}

func (stubMap) Entries() []interfaces.IAccountEntry { return nil }

func (stubMap) Subscribe(ctx context.Context, updates chan<- struct{}, wg *sync.WaitGroup) error {
	return nil
}

func (stubMap) Stop() error { return nil }

// -----------------------------------------------------------------------------

func sessionStatus(t *testing.T, s *ControlService) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: sessionServiceName})
	require.NoError(t, err)
	return resp.Status
}

// -----------------------------------------------------------------------------

func TestRefreshStatusTracksTradingSession(t *testing.T) {
	tradingStore := store.NewTradingSessionStore()
	s := NewControlService(&models.MConfig{}, tradingStore, logger.NewLogger("ERROR", "test"))
	s.health = health.NewServer()

	s.RefreshStatus()
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, sessionStatus(t, s))

	tradingStore.SetSession(stubClient{}, stubMap{}, &models.MMarketCatalog{Env: "devnet"})
	s.RefreshStatus()
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, sessionStatus(t, s))

	tradingStore.Reset()
	s.RefreshStatus()
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, sessionStatus(t, s))
}

// -----------------------------------------------------------------------------

func TestRefreshStatusBeforeStartIsSafe(t *testing.T) {
	s := NewControlService(&models.MConfig{}, store.NewTradingSessionStore(), logger.NewLogger("ERROR", "test"))

	// Session transitions can fire before the gRPC server is up.
	assert.NotPanics(t, func() { s.RefreshStatus() })
}
