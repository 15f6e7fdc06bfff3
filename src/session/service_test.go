package session

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"sync"
	"testing"

	"drift-observer/src/config"
	"drift-observer/src/helpers"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"
	"drift-observer/src/store"
	"drift-observer/src/wallet"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeAdapter struct {
	name         string
	publicKey    ed25519.PublicKey
	privateKey   ed25519.PrivateKey
	disconnected bool
}

func newFakeAdapter(t *testing.T, name string) *fakeAdapter {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return &fakeAdapter{name: name, publicKey: publicKey, privateKey: privateKey}
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Connect(ctx context.Context) (string, error) {
	return base58.Encode(a.publicKey), nil
}

func (a *fakeAdapter) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	return ed25519.Sign(a.privateKey, message), nil
}

func (a *fakeAdapter) Disconnect(ctx context.Context) error {
	a.disconnected = true
	return nil
}

// -----------------------------------------------------------------------------

type fakeEntry struct {
	record *models.MUserAccount
}

func (e *fakeEntry) Record() (*models.MUserAccount, error) { return e.record, nil }

type fakeAccountMap struct {
	records []*models.MUserAccount
	stopped bool
}

func (m *fakeAccountMap) Entries() []interfaces.IAccountEntry {
	entries := make([]interfaces.IAccountEntry, 0, len(m.records))
	for _, r := range m.records {
		entries = append(entries, &fakeEntry{record: r})
	}
	return entries
}

func (m *fakeAccountMap) Subscribe(ctx context.Context, updates chan<- struct{}, wg *sync.WaitGroup) error {
	return nil
}

func (m *fakeAccountMap) Stop() error {
	m.stopped = true
	return nil
}

// -----------------------------------------------------------------------------

type fakeTradingClient struct {
	mu          sync.Mutex
	placed      []models.MOrderParams
	batches     [][]models.MOrderParams
	deposits    []string
	withdrawals []string
	userExists  bool
}

func (c *fakeTradingClient) PlaceOrder(ctx context.Context, params models.MOrderParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placed = append(c.placed, params)
	return "sig-order", nil
}

func (c *fakeTradingClient) PlaceOrders(ctx context.Context, params []models.MOrderParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, params)
	return "sig-batch", nil
}

func (c *fakeTradingClient) Deposit(ctx context.Context, amount string, marketIndex int, ata string, subAccountID uint16, reduceOnly bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deposits = append(c.deposits, amount)
	return "sig-deposit", nil
}

func (c *fakeTradingClient) Withdraw(ctx context.Context, amount string, marketIndex int, ata string, subAccountID uint16, reduceOnly bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.withdrawals = append(c.withdrawals, amount)
	return "sig-withdraw", nil
}

func (c *fakeTradingClient) GetAssociatedTokenAccount(ctx context.Context, marketIndex int) (string, error) {
	return "TokenAccount1111111111111111111111111111111", nil
}

func (c *fakeTradingClient) UserAccountExists(ctx context.Context) (bool, error) {
	return c.userExists, nil
}

func (c *fakeTradingClient) UserStatsAccountExists(ctx context.Context) (bool, error) {
	return c.userExists, nil
}

func (c *fakeTradingClient) InitializeUserAccount(ctx context.Context, subAccountID uint16, name string) (string, error) {
	return "sig-init", nil
}

func (c *fakeTradingClient) Subscribe(ctx context.Context) error { return nil }

// -----------------------------------------------------------------------------

type fakeDatabase struct {
	mu      sync.Mutex
	records []models.MTransactionRecord
}

func (d *fakeDatabase) Initialize() error { return nil }

func (d *fakeDatabase) SaveTransaction(tx models.MTransactionRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = append(d.records, tx)
	return nil
}

func (d *fakeDatabase) RecentTransactions(authority string, limit int) ([]models.MTransactionRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := []models.MTransactionRecord{}
	for i := len(d.records) - 1; i >= 0 && len(out) < limit; i-- {
		if d.records[i].Authority == authority {
			out = append(out, d.records[i])
		}
	}
	return out, nil
}

func (d *fakeDatabase) CleanupOldData() error { return nil }

func (d *fakeDatabase) Close() error { return nil }

func (d *fakeDatabase) saved() []models.MTransactionRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.MTransactionRecord, len(d.records))
	copy(out, d.records)
	return out
}

// -----------------------------------------------------------------------------

type fakeExchanger struct {
	mu        sync.Mutex
	snapshots []*models.MSnapshot
}

func (e *fakeExchanger) Broadcast(snapshot *models.MSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshots = append(e.snapshots, snapshot)
}

func (e *fakeExchanger) UpdateSnapshot(snapshot *models.MSnapshot) {}

func (e *fakeExchanger) Start() error { return nil }

func (e *fakeExchanger) Stop() error { return nil }

func (e *fakeExchanger) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.snapshots)
}

// -----------------------------------------------------------------------------
// Harness
// -----------------------------------------------------------------------------

type harness struct {
	service   *Service
	adapter   *fakeAdapter
	client    *fakeTradingClient
	account   *fakeAccountMap
	database  *fakeDatabase
	exchanger *fakeExchanger
	session   *store.SessionStore
	trading   *store.TradingSessionStore
	sub       *store.SubaccountStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	adapter := newFakeAdapter(t, "Test")
	registry := wallet.NewRegistry()
	registry.Register(adapter)

	client := &fakeTradingClient{userExists: true}
	accountMap := &fakeAccountMap{records: []*models.MUserAccount{
		{
			Authority:    "AuthorityPubkey11111111111111111111111111",
			SubAccountID: 0,
			Name:         "Main Account",
			SpotPositions: []models.MSpotPosition{
				{MarketIndex: 0, ScaledBalance: "1500.25"},
			},
		},
		{
			Authority:    "AuthorityPubkey11111111111111111111111111",
			SubAccountID: 1,
			Name:         "Scalping",
		},
	}}
	catalog := &models.MMarketCatalog{
		Env:         "devnet",
		SpotMarkets: []models.MSpotMarketConfig{{MarketIndex: 0, Symbol: "USDC"}},
	}

	factory := func(ctx context.Context, authority string) (interfaces.ITradingClient, interfaces.IAccountMap, *models.MMarketCatalog, error) {
		return client, accountMap, catalog, nil
	}

	cfg := &config.Config{MConfig: &models.MConfig{
		Drift: models.MDriftConfig{FetchTimeout: 5},
	}}

	sessionStore := store.NewSessionStore()
	tradingStore := store.NewTradingSessionStore()
	subStore := store.NewSubaccountStore()
	database := &fakeDatabase{}
	exchanger := &fakeExchanger{}

	svc := NewService(cfg, registry, factory, sessionStore, tradingStore, subStore, database, logger.NewLogger("ERROR", "test"))
	svc.SetExchanger(exchanger)

	return &harness{
		service:   svc,
		adapter:   adapter,
		client:    client,
		account:   accountMap,
		database:  database,
		exchanger: exchanger,
		session:   sessionStore,
		trading:   tradingStore,
		sub:       subStore,
	}
}

// -----------------------------------------------------------------------------
// Connect / Lookup / Disconnect
// -----------------------------------------------------------------------------

func TestConnectEstablishesSessionAndDiscovers(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	state := h.session.State()
	assert.True(t, state.Connected)
	assert.Equal(t, "Test", state.WalletName)
	assert.Equal(t, base58.Encode(h.adapter.publicKey), state.PublicKey)

	subaccounts := h.sub.Subaccounts()
	require.Len(t, subaccounts, 2)
	assert.Equal(t, "Subaccount 0", subaccounts[0].Name)

	// The first fetch cycle committed the selected subaccount's balances.
	balances := h.sub.Balances()
	require.Contains(t, balances, "USDC")
	assert.Equal(t, "1500.25", balances["USDC"].Balance)

	assert.Greater(t, h.exchanger.count(), 0)
}

// -----------------------------------------------------------------------------

func TestConnectUnknownAdapter(t *testing.T) {
	h := newHarness(t)
	err := h.service.Connect(context.Background(), "Ghost")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)
}

// -----------------------------------------------------------------------------

func TestLookupIsReadOnly(t *testing.T) {
	h := newHarness(t)

	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	address := base58.Encode(publicKey)

	require.NoError(t, h.service.Lookup(context.Background(), address))

	state := h.session.State()
	assert.False(t, state.Connected)
	assert.Equal(t, address, state.LookupAddress)
	assert.Len(t, h.sub.Subaccounts(), 2)

	// Submissions require an authenticated wallet.
	_, err = h.service.Deposit(context.Background(), 0, 0, "100")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)
	assert.Empty(t, h.client.deposits)
}

// -----------------------------------------------------------------------------

func TestLookupRejectsMalformedAddress(t *testing.T) {
	h := newHarness(t)

	err := h.service.Lookup(context.Background(), "not-base58!")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)

	err = h.service.Lookup(context.Background(), base58.Encode([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)
}

// -----------------------------------------------------------------------------

func TestDisconnectResetsEverything(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	require.NoError(t, h.service.Disconnect(context.Background()))

	assert.True(t, h.adapter.disconnected)
	assert.True(t, h.account.stopped)
	assert.Equal(t, models.MSessionState{}, h.session.State())
	assert.Empty(t, h.sub.Subaccounts())

	_, _, _, active := h.trading.Session()
	assert.False(t, active)
}

// -----------------------------------------------------------------------------

func TestSessionHookFiresOnTransitions(t *testing.T) {
	h := newHarness(t)

	var mu sync.Mutex
	calls := 0
	h.service.SetSessionHook(func() {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}

	require.NoError(t, h.service.Connect(context.Background(), "Test"))
	assert.Equal(t, 1, count())

	require.NoError(t, h.service.Disconnect(context.Background()))
	assert.Equal(t, 2, count())

	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, h.service.Lookup(context.Background(), base58.Encode(publicKey)))
	assert.Equal(t, 3, count())
}

// -----------------------------------------------------------------------------
// Selection
// -----------------------------------------------------------------------------

func TestSelectSubaccountOutOfRange(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	err := h.service.SelectSubaccount(context.Background(), 5)
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)

	require.NoError(t, h.service.SelectSubaccount(context.Background(), 1))
	assert.Equal(t, 1, h.sub.SelectedIndex())
}

// -----------------------------------------------------------------------------
// Submissions
// -----------------------------------------------------------------------------

func TestDepositRecordsTransaction(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	sig, err := h.service.Deposit(context.Background(), 0, 0, "250.5")
	require.NoError(t, err)
	assert.Equal(t, "sig-deposit", sig)

	saved := h.database.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "deposit", saved[0].Kind)
	assert.Equal(t, "submitted", saved[0].Status)
	assert.Equal(t, base58.Encode(h.adapter.publicKey), saved[0].Authority)
	assert.Equal(t, "250.5", saved[0].Amount)
}

// -----------------------------------------------------------------------------

func TestFailedSubmissionIsRecordedAsFailed(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	// Limit order without a price fails validation before submission.
	_, err := h.service.PlaceOrder(context.Background(), 0, 0, "1", models.DirectionLong, models.OrderTypeLimit, "")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)

	saved := h.database.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "failed", saved[0].Status)
	assert.NotEmpty(t, saved[0].Detail)
}

// -----------------------------------------------------------------------------

func TestPlaceTpSlRequiresOnePrice(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	_, err := h.service.PlaceTpSl(context.Background(), 0, 0, "1", models.DirectionLong, "", "")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)

	signatures, err := h.service.PlaceTpSl(context.Background(), 0, 0, "1", models.DirectionLong, "80", "60")
	require.NoError(t, err)
	assert.Len(t, signatures, 2)
	assert.Len(t, h.client.placed, 2)
}

// -----------------------------------------------------------------------------

func TestPlaceScaledOrdersSubmitsOneBatch(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	sig, err := h.service.PlaceScaledOrders(context.Background(), 0, 0, models.DirectionLong, "3", "100", "110", 3)
	require.NoError(t, err)
	assert.Equal(t, "sig-batch", sig)

	require.Len(t, h.client.batches, 1)
	assert.Len(t, h.client.batches[0], 3)
}

// -----------------------------------------------------------------------------

func TestRecentTransactionsScopedToAuthority(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.RecentTransactions(10)
	assert.ErrorIs(t, err, helpers.ErrNotFound)

	require.NoError(t, h.service.Connect(context.Background(), "Test"))
	_, err = h.service.Withdraw(context.Background(), 0, 0, "10")
	require.NoError(t, err)

	records, err := h.service.RecentTransactions(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "withdraw", records[0].Kind)
}

// -----------------------------------------------------------------------------
// Snapshots
// -----------------------------------------------------------------------------

func TestSnapshotAssemblesFullState(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.service.Connect(context.Background(), "Test"))

	snapshot := h.service.Snapshot("INITIAL")
	assert.Equal(t, "INITIAL", snapshot.Type)
	assert.True(t, snapshot.Session.Connected)
	assert.Len(t, snapshot.Subaccounts, 2)
	assert.Contains(t, snapshot.Balances, "USDC")
	assert.NotZero(t, snapshot.Timestamp)
}
