package driftgw

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024 // 1MB for full account records
	reconnectWait  = 5 * time.Second
)

// -----------------------------------------------------------------------------
// AccountMap keeps a live copy of the wallet's user account records. Seeded
// with an HTTP snapshot, then kept current over the gateway's websocket feed.
// Records are slotted by subaccount id, so iteration order is stable and
// skipped ids leave gaps.
// -----------------------------------------------------------------------------

type AccountMap struct {
	BaseURL   string
	WSURL     string
	Authority string
	Network   interfaces.INetworkManager
	Logger    *logger.Logger

	mu    sync.RWMutex
	slots [models.MaxSubaccounts]*models.MUserAccount

	cancelFunc context.CancelFunc
	isRunning  atomic.Bool
	lifecycle  sync.Mutex
}

// -----------------------------------------------------------------------------

func NewAccountMap(baseURL, wsURL, authority string, network interfaces.INetworkManager, log *logger.Logger) *AccountMap {
	return &AccountMap{
		BaseURL:   baseURL,
		WSURL:     wsURL,
		Authority: authority,
		Network:   network,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------
// Entries
// -----------------------------------------------------------------------------

type accountEntry struct {
	owner *AccountMap
	slot  int
}

// -----------------------------------------------------------------------------

func (e *accountEntry) Record() (*models.MUserAccount, error) {
	e.owner.mu.RLock()
	defer e.owner.mu.RUnlock()

	record := e.owner.slots[e.slot]
	if record == nil {
		return nil, fmt.Errorf("account slot %d is not initialized", e.slot)
	}

	// Copy so callers never see a record mutated by the feed.
	copied := *record
	return &copied, nil
}

// -----------------------------------------------------------------------------

// Entries returns one entry per subaccount slot, in slot order.
func (a *AccountMap) Entries() []interfaces.IAccountEntry {
	entries := make([]interfaces.IAccountEntry, models.MaxSubaccounts)
	for i := range entries {
		entries[i] = &accountEntry{owner: a, slot: i}
	}
	return entries
}

// -----------------------------------------------------------------------------
// Subscription lifecycle
// -----------------------------------------------------------------------------

// Subscribe seeds the map from the HTTP snapshot and starts the websocket
// feed. Every applied record change pushes a notification to updates.
func (a *AccountMap) Subscribe(parentCtx context.Context, updates chan<- struct{}, wg *sync.WaitGroup) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.isRunning.Load() {
		return fmt.Errorf("account map for %s is already subscribed", a.Authority)
	}

	ctx, cancel := context.WithCancel(parentCtx)

	if err := a.loadSnapshot(ctx); err != nil {
		cancel()
		return fmt.Errorf("initial account snapshot failed: %w", err)
	}

	a.cancelFunc = cancel
	a.isRunning.Store(true)

	wg.Add(1)
	go a.runLoop(ctx, updates, wg)

	a.Logger.Info("Account map subscribed for %s", a.Authority)
	return nil
}

// -----------------------------------------------------------------------------

// Stop terminates the websocket feed.
func (a *AccountMap) Stop() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if !a.isRunning.Load() {
		return fmt.Errorf("account map for %s is not subscribed", a.Authority)
	}

	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.isRunning.Store(false)
	a.Logger.Info("Account map stopped for %s", a.Authority)
	return nil
}

// -----------------------------------------------------------------------------
// Snapshot
// -----------------------------------------------------------------------------

// loadSnapshot fetches all user accounts of the authority over HTTP and
// slots them by subaccount id.
func (a *AccountMap) loadSnapshot(ctx context.Context) error {
	params := map[string]string{"authority": a.Authority}

	body, err := a.Network.Get(ctx, a.BaseURL+"/v2/users", params)
	if err != nil {
		return err
	}

	var accounts []models.MUserAccount
	if err := json.Unmarshal(body, &accounts); err != nil {
		return fmt.Errorf("bad users response: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.slots {
		a.slots[i] = nil
	}
	for i := range accounts {
		account := accounts[i]
		if int(account.SubAccountID) >= models.MaxSubaccounts {
			a.Logger.Warning("Ignoring account with out-of-range subaccount id %d", account.SubAccountID)
			continue
		}
		a.slots[account.SubAccountID] = &account
	}

	a.Logger.Info("Loaded %d account record(s) for %s", len(accounts), a.Authority)
	return nil
}

// -----------------------------------------------------------------------------
// Websocket feed
// -----------------------------------------------------------------------------

// accountUpdateMessage is one pushed record change.
type accountUpdateMessage struct {
	Channel string               `json:"channel"`
	Account *models.MUserAccount `json:"account"`
}

// -----------------------------------------------------------------------------

// runLoop keeps the websocket connection alive, reconnecting with a fixed
// backoff until the context is cancelled.
func (a *AccountMap) runLoop(ctx context.Context, updates chan<- struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		if err := a.consumeFeed(ctx, updates); err != nil {
			if ctx.Err() != nil {
				return
			}
			a.Logger.Warning("Account feed dropped: %v, reconnecting in %s", err, reconnectWait)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectWait):
		}

		// Re-seed after a gap so missed updates are not lost.
		if err := a.loadSnapshot(ctx); err != nil {
			a.Logger.Warning("Snapshot reload failed: %v", err)
		} else {
			notify(updates)
		}
	}
}

// -----------------------------------------------------------------------------

// consumeFeed runs one websocket session: dial, subscribe, read until error.
func (a *AccountMap) consumeFeed(ctx context.Context, updates chan<- struct{}) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.WSURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", a.WSURL, err)
	}
	defer conn.Close()

	subscribe := map[string]string{
		"command":   "subscribe",
		"authority": a.Authority,
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(subscribe); err != nil {
		return fmt.Errorf("subscribe command: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Keepalive pings and context cancellation run beside the read loop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				conn.Close()
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var update accountUpdateMessage
		if err := json.Unmarshal(message, &update); err != nil {
			a.Logger.Warning("Unparseable account update: %v", err)
			continue
		}
		if update.Account == nil {
			continue
		}

		if a.applyUpdate(update.Account) {
			notify(updates)
		}
	}
}

// -----------------------------------------------------------------------------

// applyUpdate stores an updated record in its slot.
func (a *AccountMap) applyUpdate(account *models.MUserAccount) bool {
	if int(account.SubAccountID) >= models.MaxSubaccounts {
		a.Logger.Warning("Ignoring update with out-of-range subaccount id %d", account.SubAccountID)
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.slots[account.SubAccountID] = account
	return true
}

// -----------------------------------------------------------------------------

// notify pushes a change signal without blocking; a full channel already has
// a pending wakeup, which is enough.
func notify(updates chan<- struct{}) {
	select {
	case updates <- struct{}{}:
	default:
	}
}
