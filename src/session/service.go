package session

import (
	"context"
	"crypto/ed25519"
	"sync"
	"time"

	"drift-observer/src/config"
	"drift-observer/src/derivation"
	"drift-observer/src/helpers"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"
	"drift-observer/src/orders"
	"drift-observer/src/store"
	"drift-observer/src/wallet"

	"github.com/mr-tron/base58"
)

// -----------------------------------------------------------------------------
// Service orchestrates the wallet session lifecycle: connect/lookup/disconnect,
// subaccount discovery and selection, the concurrent balance/position/order
// fetches and the snapshot broadcasts to the dashboard. All state lives in the
// injected stores; the service itself only coordinates.
// -----------------------------------------------------------------------------

// TradingSessionFactory builds the external client and account map for an
// authority. Injected so tests can substitute fakes for the gateway.
type TradingSessionFactory func(ctx context.Context, authority string) (interfaces.ITradingClient, interfaces.IAccountMap, *models.MMarketCatalog, error)

// -----------------------------------------------------------------------------

type Service struct {
	config       *config.Config
	registry     *wallet.Registry
	factory      TradingSessionFactory
	sessionStore *store.SessionStore
	tradingStore *store.TradingSessionStore
	subStore     *store.SubaccountStore
	database     interfaces.IDatabase
	exchanger    interfaces.IDataExchanger
	log          *logger.Logger

	fetchTimeout time.Duration

	mu          sync.Mutex
	adapter     interfaces.IWalletAdapter
	cancelWatch context.CancelFunc
	watchWG     sync.WaitGroup
	sessionHook func()
}

// -----------------------------------------------------------------------------

func NewService(
	cfg *config.Config,
	registry *wallet.Registry,
	factory TradingSessionFactory,
	sessionStore *store.SessionStore,
	tradingStore *store.TradingSessionStore,
	subStore *store.SubaccountStore,
	database interfaces.IDatabase,
	log *logger.Logger,
) *Service {
	fetchTimeout := time.Duration(cfg.Drift.FetchTimeout) * time.Second
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}

	return &Service{
		config:       cfg,
		registry:     registry,
		factory:      factory,
		sessionStore: sessionStore,
		tradingStore: tradingStore,
		subStore:     subStore,
		database:     database,
		log:          log,
		fetchTimeout: fetchTimeout,
	}
}

// -----------------------------------------------------------------------------

// SetExchanger attaches the broadcast sink. Wired after construction because
// the server needs the service for its handlers and vice versa.
func (s *Service) SetExchanger(exchanger interfaces.IDataExchanger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanger = exchanger
}

// -----------------------------------------------------------------------------

// SetSessionHook registers a callback fired after every session transition
// (connect, lookup, disconnect). The wiring layer points it at the control
// plane so health status tracks trading-session liveness.
func (s *Service) SetSessionHook(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionHook = hook
}

// -----------------------------------------------------------------------------

func (s *Service) notifySessionChange() {
	s.mu.Lock()
	hook := s.sessionHook
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// -----------------------------------------------------------------------------

// WalletNames lists the wallet adapters available to the dashboard.
func (s *Service) WalletNames() []string {
	return s.registry.Names()
}

// -----------------------------------------------------------------------------
// Connect / Lookup / Disconnect
// -----------------------------------------------------------------------------

// Connect runs the full wallet connection flow: adapter connect, ownership
// proof via signed nonce message, then trading-session initialization and
// subaccount discovery.
func (s *Service) Connect(ctx context.Context, walletName string) error {
	adapter, err := s.registry.Select(walletName)
	if err != nil {
		return helpers.InvalidInputError("unknown wallet adapter %q", walletName)
	}

	s.sessionStore.SetConnecting(true)
	s.broadcast()

	publicKey, err := adapter.Connect(ctx)
	if err != nil {
		s.sessionStore.SetConnecting(false)
		s.broadcast()
		return helpers.InitializationError(err, "wallet connection failed")
	}

	// Ownership proof: the wallet signs a fresh nonce message.
	message := wallet.GenerateMessage()
	signature, err := adapter.SignMessage(ctx, []byte(message))
	if err != nil {
		s.sessionStore.SetConnecting(false)
		s.broadcast()
		return helpers.InitializationError(err, "message signing failed")
	}

	verified, err := wallet.VerifySignedMessage(message, signature, publicKey)
	if err != nil || !verified {
		s.sessionStore.SetConnecting(false)
		s.broadcast()
		if err != nil {
			return helpers.InitializationError(err, "signature verification failed")
		}
		return helpers.InitializationError(nil, "signature does not match wallet %s", wallet.Ellipsify(publicKey, 4))
	}

	s.log.Info("Wallet %s verified: %s", walletName, wallet.Ellipsify(publicKey, 4))

	if err := s.startTradingSession(ctx, publicKey); err != nil {
		s.sessionStore.SetConnecting(false)
		s.broadcast()
		return err
	}

	s.mu.Lock()
	s.adapter = adapter
	s.mu.Unlock()

	s.sessionStore.SetConnected(publicKey, walletName)
	s.notifySessionChange()
	s.discoverSubaccounts(ctx)
	return nil
}

// -----------------------------------------------------------------------------

// Lookup switches to read-only viewing of another wallet's subaccounts. No
// signature is required; trading submissions stay disabled at the server.
func (s *Service) Lookup(ctx context.Context, address string) error {
	keyBytes, err := base58.Decode(address)
	if err != nil || len(keyBytes) != ed25519.PublicKeySize {
		return helpers.InvalidInputError("invalid wallet address %q", address)
	}

	if err := s.startTradingSession(ctx, address); err != nil {
		return err
	}

	s.sessionStore.SetLookupAddress(address)
	s.log.Info("Lookup mode: viewing %s", wallet.Ellipsify(address, 4))
	s.notifySessionChange()
	s.discoverSubaccounts(ctx)
	return nil
}

// -----------------------------------------------------------------------------

// Disconnect tears down the wallet session and resets every store back to the
// logged-out state.
func (s *Service) Disconnect(ctx context.Context) error {
	s.sessionStore.SetDisconnecting(true)
	s.broadcast()

	s.mu.Lock()
	adapter := s.adapter
	s.adapter = nil
	cancel := s.cancelWatch
	s.cancelWatch = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.watchWG.Wait()

	if _, accountMap, _, active := s.tradingStore.Session(); active {
		if err := accountMap.Stop(); err != nil {
			s.log.Warning("Account map shutdown: %v", err)
		}
	}

	if adapter != nil {
		if err := adapter.Disconnect(ctx); err != nil {
			s.log.Warning("Wallet disconnect: %v", err)
		}
	}

	s.tradingStore.Reset()
	s.subStore.Reset()
	s.sessionStore.Disconnect()
	s.notifySessionChange()

	s.log.Info("Session disconnected")
	s.broadcast()
	return nil
}

// -----------------------------------------------------------------------------
// Trading-session lifecycle
// -----------------------------------------------------------------------------

// startTradingSession builds the client/account-map pair for the authority,
// installs it and starts the account-change watcher.
func (s *Service) startTradingSession(ctx context.Context, authority string) error {
	client, accountMap, catalog, err := s.factory(ctx, authority)
	if err != nil {
		return helpers.InitializationError(err, "failed to initialize trading session")
	}

	s.tradingStore.SetSession(client, accountMap, catalog)

	watchCtx, cancel := context.WithCancel(context.Background())
	updates := make(chan struct{}, 16)

	if err := accountMap.Subscribe(watchCtx, updates, &s.watchWG); err != nil {
		cancel()
		return helpers.InitializationError(err, "account subscription failed")
	}

	s.mu.Lock()
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	s.cancelWatch = cancel
	s.mu.Unlock()

	// Refresh the view on every account change pushed by the subscription.
	s.watchWG.Add(1)
	go func() {
		defer s.watchWG.Done()
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, ok := <-updates:
				if !ok {
					return
				}
				s.RefreshSelected(context.Background())
			}
		}
	}()

	return nil
}

// -----------------------------------------------------------------------------

// discoverSubaccounts enumerates the account map, stores the list and kicks
// off the first data fetch for the selected subaccount.
func (s *Service) discoverSubaccounts(ctx context.Context) {
	_, accountMap, _, active := s.tradingStore.Session()
	if !active {
		return
	}

	s.subStore.SetLoading(true)
	s.broadcast()

	subaccounts := derivation.ListSubaccounts(accountMap, s.log)
	s.subStore.SetSubaccounts(subaccounts)
	s.subStore.SetLoading(false)

	s.log.Info("Discovered %d subaccount(s)", len(subaccounts))

	if len(subaccounts) > 0 {
		s.refresh(ctx, true)
	} else {
		s.broadcast()
	}
}

// -----------------------------------------------------------------------------
// Selection and refresh
// -----------------------------------------------------------------------------

// SelectSubaccount switches the viewed subaccount. The old subaccount's data
// is cleared immediately so nothing stale shows during the fetch.
func (s *Service) SelectSubaccount(ctx context.Context, index int) error {
	if !s.subStore.SetSelectedIndex(index) {
		return helpers.InvalidInputError("subaccount index %d out of range", index)
	}
	s.refresh(ctx, true)
	return nil
}

// -----------------------------------------------------------------------------

// RefreshSelected refetches the selected subaccount's data without clearing
// it first; on failure the previous data stays visible.
func (s *Service) RefreshSelected(ctx context.Context) {
	s.refresh(ctx, false)
}

// -----------------------------------------------------------------------------

// refresh runs the three independent fetches concurrently, each under its own
// timeout. Results commit only while their generation is current, so a rapid
// subaccount switch discards the superseded cycle instead of racing it.
func (s *Service) refresh(ctx context.Context, clearData bool) {
	_, accountMap, catalog, active := s.tradingStore.Session()
	if !active {
		return
	}

	selected, ok := s.subStore.SelectedSubaccount()
	if !ok {
		return
	}

	gen := s.subStore.StartCycle(clearData)
	s.broadcast()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()

		balances, err := s.fetchBalances(fetchCtx, accountMap, catalog, selected.SubAccountID)
		if err != nil {
			s.log.Error("Balances fetch for subaccount %d: %v", selected.SubAccountID, err)
			s.subStore.FailFetch(gen, "balances", err.Error())
			return
		}
		s.subStore.CommitBalances(gen, balances)
	}()

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()

		positions, err := s.fetchPositions(fetchCtx, accountMap, selected.SubAccountID)
		if err != nil {
			s.log.Error("Positions fetch for subaccount %d: %v", selected.SubAccountID, err)
			s.subStore.FailFetch(gen, "positions", err.Error())
			return
		}
		s.subStore.CommitPositions(gen, positions)
	}()

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()

		openOrders, err := s.fetchOrders(fetchCtx, accountMap, selected.SubAccountID)
		if err != nil {
			s.log.Error("Orders fetch for subaccount %d: %v", selected.SubAccountID, err)
			s.subStore.FailFetch(gen, "orders", err.Error())
			return
		}
		s.subStore.CommitOrders(gen, openOrders)
	}()

	wg.Wait()
	s.broadcast()
}

// -----------------------------------------------------------------------------
// Fetch wrappers. Derivation is synchronous over the in-memory account map;
// the timeout context guards against a map implementation that blocks on the
// wire while reading records.
// -----------------------------------------------------------------------------

func (s *Service) fetchBalances(ctx context.Context, accountMap interfaces.IAccountMap, catalog *models.MMarketCatalog, subaccountID uint16) (map[string]models.MTokenBalance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return derivation.GetBalances(accountMap, catalog, subaccountID, s.log)
}

// -----------------------------------------------------------------------------

func (s *Service) fetchPositions(ctx context.Context, accountMap interfaces.IAccountMap, subaccountID uint16) ([]models.MPerpPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return derivation.GetPerpPositions(accountMap, subaccountID, s.log)
}

// -----------------------------------------------------------------------------

func (s *Service) fetchOrders(ctx context.Context, accountMap interfaces.IAccountMap, subaccountID uint16) ([]models.MOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return derivation.GetOpenOrders(accountMap, subaccountID, s.log)
}

// -----------------------------------------------------------------------------
// Per-subaccount reads for the REST surface. Lookup-mode sessions may read.
// -----------------------------------------------------------------------------

// BalancesFor derives the balances of one subaccount on demand.
func (s *Service) BalancesFor(subaccountID uint16) (map[string]models.MTokenBalance, error) {
	_, accountMap, catalog, active := s.tradingStore.Session()
	if !active {
		return nil, helpers.InvalidInputError("no active session")
	}
	return derivation.GetBalances(accountMap, catalog, subaccountID, s.log)
}

// -----------------------------------------------------------------------------

// PositionsFor derives the open perp positions of one subaccount on demand.
func (s *Service) PositionsFor(subaccountID uint16) ([]models.MPerpPosition, error) {
	_, accountMap, _, active := s.tradingStore.Session()
	if !active {
		return nil, helpers.InvalidInputError("no active session")
	}
	return derivation.GetPerpPositions(accountMap, subaccountID, s.log)
}

// -----------------------------------------------------------------------------

// OrdersFor derives the open orders of one subaccount on demand.
func (s *Service) OrdersFor(subaccountID uint16) ([]models.MOrder, error) {
	_, accountMap, _, active := s.tradingStore.Session()
	if !active {
		return nil, helpers.InvalidInputError("no active session")
	}
	return derivation.GetOpenOrders(accountMap, subaccountID, s.log)
}

// -----------------------------------------------------------------------------
// Submissions. Every call requires an authenticated (non-lookup) session,
// records the outcome in storage and refreshes the view afterwards.
// -----------------------------------------------------------------------------

// requireTradingSession returns the handles for a submission. Lookup-mode
// sessions are read-only and rejected here.
func (s *Service) requireTradingSession() (interfaces.ITradingClient, interfaces.IAccountMap, string, error) {
	state := s.sessionStore.State()
	if !state.Connected || state.PublicKey == "" {
		return nil, nil, "", helpers.InvalidInputError("trading requires a connected wallet")
	}

	client, accountMap, _, active := s.tradingStore.Session()
	if !active {
		return nil, nil, "", helpers.InvalidInputError("no active trading session")
	}

	return client, accountMap, state.PublicKey, nil
}

// -----------------------------------------------------------------------------

// PlaceOrder submits a market or limit order for the selected subaccount.
func (s *Service) PlaceOrder(ctx context.Context, subaccountID uint16, marketIndex int, size, direction, orderType, price string) (string, error) {
	client, accountMap, authority, err := s.requireTradingSession()
	if err != nil {
		return "", err
	}

	txSig, err := orders.PlaceOrder(ctx, client, accountMap, subaccountID, marketIndex, size, direction, orderType, price, s.log)
	s.recordTransaction(txSig, "order", authority, subaccountID, marketIndex, size, err)
	if err != nil {
		return "", err
	}

	s.RefreshSelected(ctx)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// PlaceTpSl attaches take-profit and/or stop-loss trigger orders to an open
// position. Either price may be empty to skip that side; at least one is
// required.
func (s *Service) PlaceTpSl(ctx context.Context, subaccountID uint16, marketIndex int, size, positionDirection, takeProfitPrice, stopLossPrice string) ([]string, error) {
	client, accountMap, authority, err := s.requireTradingSession()
	if err != nil {
		return nil, err
	}

	if takeProfitPrice == "" && stopLossPrice == "" {
		return nil, helpers.InvalidInputError("at least one of take-profit or stop-loss price is required")
	}

	signatures := []string{}

	if takeProfitPrice != "" {
		txSig, err := orders.PlaceTriggerOrder(ctx, client, accountMap, subaccountID, marketIndex, size, positionDirection, takeProfitPrice, true, s.log)
		s.recordTransaction(txSig, "order", authority, subaccountID, marketIndex, size, err)
		if err != nil {
			return signatures, err
		}
		signatures = append(signatures, txSig)
	}

	if stopLossPrice != "" {
		txSig, err := orders.PlaceTriggerOrder(ctx, client, accountMap, subaccountID, marketIndex, size, positionDirection, stopLossPrice, false, s.log)
		s.recordTransaction(txSig, "order", authority, subaccountID, marketIndex, size, err)
		if err != nil {
			return signatures, err
		}
		signatures = append(signatures, txSig)
	}

	s.RefreshSelected(ctx)
	return signatures, nil
}

// -----------------------------------------------------------------------------

// PreviewScaledOrders computes the scaled-order plan without submitting.
func (s *Service) PreviewScaledOrders(totalSize, startPrice, endPrice string, count int) ([]models.MScaledOrderPlan, error) {
	return orders.PlanScaledOrders(totalSize, startPrice, endPrice, count)
}

// -----------------------------------------------------------------------------

// PlaceScaledOrders submits the scaled-order plan as one transaction.
func (s *Service) PlaceScaledOrders(ctx context.Context, subaccountID uint16, marketIndex int, direction, totalSize, startPrice, endPrice string, count int) (string, error) {
	client, accountMap, authority, err := s.requireTradingSession()
	if err != nil {
		return "", err
	}

	txSig, err := orders.SubmitScaledOrders(ctx, client, accountMap, subaccountID, marketIndex, direction, totalSize, startPrice, endPrice, count, s.log)
	s.recordTransaction(txSig, "order", authority, subaccountID, marketIndex, totalSize, err)
	if err != nil {
		return "", err
	}

	s.RefreshSelected(ctx)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// Deposit submits a collateral deposit, bootstrapping the user account first
// when needed.
func (s *Service) Deposit(ctx context.Context, subaccountID uint16, marketIndex int, amount string) (string, error) {
	client, accountMap, authority, err := s.requireTradingSession()
	if err != nil {
		return "", err
	}

	txSig, err := orders.DepositFunds(ctx, client, accountMap, subaccountID, marketIndex, amount, s.log)
	s.recordTransaction(txSig, "deposit", authority, subaccountID, marketIndex, amount, err)
	if err != nil {
		return "", err
	}

	s.RefreshSelected(ctx)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// Withdraw submits a collateral withdrawal.
func (s *Service) Withdraw(ctx context.Context, subaccountID uint16, marketIndex int, amount string) (string, error) {
	client, accountMap, authority, err := s.requireTradingSession()
	if err != nil {
		return "", err
	}

	txSig, err := orders.WithdrawFunds(ctx, client, accountMap, subaccountID, marketIndex, amount, s.log)
	s.recordTransaction(txSig, "withdraw", authority, subaccountID, marketIndex, amount, err)
	if err != nil {
		return "", err
	}

	s.RefreshSelected(ctx)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// recordTransaction persists a submission outcome. Storage failures are
// logged, never surfaced: the transaction already happened on chain.
func (s *Service) recordTransaction(signature, kind, authority string, subaccountID uint16, marketIndex int, amount string, submitErr error) {
	if s.database == nil {
		return
	}

	record := models.MTransactionRecord{
		Signature:    signature,
		Kind:         kind,
		Authority:    authority,
		SubAccountID: subaccountID,
		MarketIndex:  marketIndex,
		Amount:       amount,
		Status:       "submitted",
		CreatedAt:    time.Now().UTC(),
	}
	if submitErr != nil {
		record.Status = "failed"
		record.Detail = submitErr.Error()
	}

	if err := s.database.SaveTransaction(record); err != nil {
		s.log.Error("Failed to persist transaction record: %v", err)
	}
}

// -----------------------------------------------------------------------------

// RecentTransactions returns the persisted submission history of the active
// authority, newest first.
func (s *Service) RecentTransactions(limit int) ([]models.MTransactionRecord, error) {
	authority, ok := s.sessionStore.ActiveAuthority()
	if !ok {
		return nil, helpers.NotFoundError("no active session")
	}
	if s.database == nil {
		return []models.MTransactionRecord{}, nil
	}
	return s.database.RecentTransactions(authority, limit)
}

// -----------------------------------------------------------------------------
// Snapshots
// -----------------------------------------------------------------------------

// Snapshot assembles the full dashboard state.
func (s *Service) Snapshot(snapshotType string) *models.MSnapshot {
	_, balancesLoading, positionsLoading, ordersLoading := s.subStore.LoadingFlags()

	return &models.MSnapshot{
		Type:             snapshotType,
		Session:          s.sessionStore.State(),
		Subaccounts:      s.subStore.Subaccounts(),
		SelectedIndex:    s.subStore.SelectedIndex(),
		Balances:         s.subStore.Balances(),
		Positions:        s.subStore.Positions(),
		Orders:           s.subStore.Orders(),
		BalancesLoading:  balancesLoading,
		PositionsLoading: positionsLoading,
		OrdersLoading:    ordersLoading,
		LastError:        s.subStore.LastError(),
		Timestamp:        time.Now().UnixMilli(),
	}
}

// -----------------------------------------------------------------------------

// broadcast pushes an UPDATE snapshot to all connected dashboard clients.
func (s *Service) broadcast() {
	s.mu.Lock()
	exchanger := s.exchanger
	s.mu.Unlock()

	if exchanger == nil {
		return
	}
	exchanger.Broadcast(s.Snapshot("UPDATE"))
}
