package store

import (
	"sync"

	"drift-observer/src/interfaces"
	"drift-observer/src/models"
)

// -----------------------------------------------------------------------------
// Modal identifiers
// -----------------------------------------------------------------------------

const (
	ModalDeposit      = "deposit"
	ModalWithdraw     = "withdraw"
	ModalPerpOrder    = "perp_order"
	ModalTpSl         = "tp_sl"
	ModalScaledOrders = "scaled_orders"
	ModalWalletLookup = "wallet_lookup"
)

// -----------------------------------------------------------------------------
// TradingSessionStore owns the handles of the active trading session: the
// external client, the account map, the market catalog, plus the dashboard's
// modal flags and in-progress order form. Torn down fully on disconnect so
// no stale handles leak into a later session for a different wallet.
// -----------------------------------------------------------------------------

type TradingSessionStore struct {
	mu         sync.RWMutex
	client     interfaces.ITradingClient
	accountMap interfaces.IAccountMap
	catalog    *models.MMarketCatalog
	modals     models.MModalFlags
	orderForm  models.MOrderForm
}

// -----------------------------------------------------------------------------

func NewTradingSessionStore() *TradingSessionStore {
	s := &TradingSessionStore{}
	s.orderForm = defaultOrderForm()
	return s
}

// -----------------------------------------------------------------------------

func defaultOrderForm() models.MOrderForm {
	return models.MOrderForm{
		OrderType:         models.OrderTypeMarket,
		OrderDirection:    models.DirectionLong,
		ScaledOrdersCount: 2,
	}
}

// -----------------------------------------------------------------------------
// Session handles
// -----------------------------------------------------------------------------

// SetSession installs the handles of a freshly initialized trading session.
func (s *TradingSessionStore) SetSession(client interfaces.ITradingClient, accountMap interfaces.IAccountMap, catalog *models.MMarketCatalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
	s.accountMap = accountMap
	s.catalog = catalog
}

// -----------------------------------------------------------------------------

// Session returns the current handles. Active is false when no trading
// session is initialized.
func (s *TradingSessionStore) Session() (interfaces.ITradingClient, interfaces.IAccountMap, *models.MMarketCatalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.accountMap, s.catalog, s.client != nil && s.accountMap != nil
}

// -----------------------------------------------------------------------------
// Modal flags
// -----------------------------------------------------------------------------

// SetModal opens or closes a named modal. Unknown names are ignored.
func (s *TradingSessionStore) SetModal(name string, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case ModalDeposit:
		s.modals.Deposit = open
	case ModalWithdraw:
		s.modals.Withdraw = open
	case ModalPerpOrder:
		s.modals.PerpOrder = open
	case ModalTpSl:
		s.modals.TpSl = open
	case ModalScaledOrders:
		s.modals.ScaledOrders = open
	case ModalWalletLookup:
		s.modals.WalletLookup = open
	}
}

// -----------------------------------------------------------------------------

func (s *TradingSessionStore) Modals() models.MModalFlags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modals
}

// -----------------------------------------------------------------------------
// Order form
// -----------------------------------------------------------------------------

// UpdateOrderForm applies a mutation to the in-progress order form.
func (s *TradingSessionStore) UpdateOrderForm(update func(*models.MOrderForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.orderForm)

	// Keep the scaled-order count inside the form's 2..10 range.
	if s.orderForm.ScaledOrdersCount < 2 {
		s.orderForm.ScaledOrdersCount = 2
	} else if s.orderForm.ScaledOrdersCount > 10 {
		s.orderForm.ScaledOrdersCount = 10
	}
}

// -----------------------------------------------------------------------------

func (s *TradingSessionStore) OrderForm() models.MOrderForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderForm
}

// -----------------------------------------------------------------------------

// ResetOrderForm restores the form defaults without touching the session.
func (s *TradingSessionStore) ResetOrderForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderForm = defaultOrderForm()
}

// -----------------------------------------------------------------------------

// Reset tears the whole trading session down: handles, catalog, modal flags
// and order form.
func (s *TradingSessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.accountMap = nil
	s.catalog = nil
	s.modals = models.MModalFlags{}
	s.orderForm = defaultOrderForm()
}
