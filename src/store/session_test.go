package store

import (
	"context"
	"sync"
	"testing"

	"drift-observer/src/interfaces"
	"drift-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
// SessionStore
// -----------------------------------------------------------------------------

func TestConnectReplacesLookupContext(t *testing.T) {
	s := NewSessionStore()
	s.SetLookupAddress("LookupAddr11111111111111111111111111111111")
	s.SetConnected("WalletPubkey111111111111111111111111111111", "Local")

	state := s.State()
	assert.True(t, state.Connected)
	assert.Empty(t, state.LookupAddress)

	authority, ok := s.ActiveAuthority()
	require.True(t, ok)
	assert.Equal(t, "WalletPubkey111111111111111111111111111111", authority)
}

// -----------------------------------------------------------------------------

func TestLookupReplacesConnectedContext(t *testing.T) {
	s := NewSessionStore()
	s.SetConnected("WalletPubkey111111111111111111111111111111", "Local")
	s.SetLookupAddress("LookupAddr11111111111111111111111111111111")

	state := s.State()
	assert.False(t, state.Connected)
	assert.Empty(t, state.PublicKey)
	assert.Empty(t, state.WalletName)

	authority, ok := s.ActiveAuthority()
	require.True(t, ok)
	assert.Equal(t, "LookupAddr11111111111111111111111111111111", authority)
}

// -----------------------------------------------------------------------------

func TestActiveAuthorityWithoutContext(t *testing.T) {
	s := NewSessionStore()
	_, ok := s.ActiveAuthority()
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestConnectedClearsConnectingFlag(t *testing.T) {
	s := NewSessionStore()
	s.SetConnecting(true)
	s.SetConnected("WalletPubkey111111111111111111111111111111", "Local")

	state := s.State()
	assert.True(t, state.Connected)
	assert.False(t, state.Connecting)
}

// -----------------------------------------------------------------------------

func TestDisconnectResetsSessionState(t *testing.T) {
	s := NewSessionStore()
	s.SetConnected("WalletPubkey111111111111111111111111111111", "Local")
	s.Disconnect()

	assert.Equal(t, models.MSessionState{}, s.State())
	_, ok := s.ActiveAuthority()
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------
// TradingSessionStore
// -----------------------------------------------------------------------------

func TestTradingSessionHandles(t *testing.T) {
	s := NewTradingSessionStore()

	_, _, _, active := s.Session()
	assert.False(t, active)

	catalog := &models.MMarketCatalog{Env: "devnet"}
	s.SetSession(stubClient{}, stubMap{}, catalog)

	client, accountMap, got, active := s.Session()
	assert.True(t, active)
	assert.NotNil(t, client)
	assert.NotNil(t, accountMap)
	assert.Equal(t, "devnet", got.Env)

	s.Reset()
	_, _, _, active = s.Session()
	assert.False(t, active)
}

// -----------------------------------------------------------------------------

func TestModalFlagsByName(t *testing.T) {
	s := NewTradingSessionStore()

	s.SetModal(ModalDeposit, true)
	s.SetModal(ModalScaledOrders, true)
	s.SetModal("no-such-modal", true)

	modals := s.Modals()
	assert.True(t, modals.Deposit)
	assert.True(t, modals.ScaledOrders)
	assert.False(t, modals.Withdraw)

	s.SetModal(ModalDeposit, false)
	assert.False(t, s.Modals().Deposit)
}

// -----------------------------------------------------------------------------

func TestOrderFormClampsScaledCount(t *testing.T) {
	s := NewTradingSessionStore()

	form := s.OrderForm()
	assert.Equal(t, models.OrderTypeMarket, form.OrderType)
	assert.Equal(t, 2, form.ScaledOrdersCount)

	s.UpdateOrderForm(func(f *models.MOrderForm) { f.ScaledOrdersCount = 50 })
	assert.Equal(t, 10, s.OrderForm().ScaledOrdersCount)

	s.UpdateOrderForm(func(f *models.MOrderForm) { f.ScaledOrdersCount = 0 })
	assert.Equal(t, 2, s.OrderForm().ScaledOrdersCount)

	s.UpdateOrderForm(func(f *models.MOrderForm) {
		f.OrderType = models.OrderTypeLimit
		f.OrderSize = "2.5"
	})
	s.ResetOrderForm()
	form = s.OrderForm()
	assert.Equal(t, models.OrderTypeMarket, form.OrderType)
	assert.Empty(t, form.OrderSize)
}
