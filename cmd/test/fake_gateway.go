package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"drift-observer/src/logger"
	"drift-observer/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// fakeGateway is an in-process stand-in for the Drift gateway. It serves the
// REST surface the client uses and a websocket feed that mutates a balance
// every few seconds, so the full refresh/broadcast path can be exercised
// without touching a chain.
// -----------------------------------------------------------------------------

type fakeGateway struct {
	Logger *logger.Logger

	mu       sync.Mutex
	accounts []models.MUserAccount
	txSeq    int
}

// -----------------------------------------------------------------------------

func newFakeGateway(log *logger.Logger) *fakeGateway {
	return &fakeGateway{
		Logger: log,
		accounts: []models.MUserAccount{
			{
				Authority:    "FakeAuthority11111111111111111111111111111",
				SubAccountID: 0,
				Name:         "Main Account",
				SpotPositions: []models.MSpotPosition{
					{MarketIndex: 0, ScaledBalance: "1500.25", BalanceType: "deposit"},
					{MarketIndex: 1, ScaledBalance: "12.5", BalanceType: "deposit"},
				},
				PerpPositions: []models.MPerpRecord{
					{
						MarketIndex:              0,
						BaseAssetAmount:          "2000000000",
						QuoteAssetAmount:         "150000000",
						QuoteEntryAmount:         "148000000",
						QuoteBreakEvenAmount:     "148500000",
						SettledPnl:               "1200000",
						RemainderBaseAssetAmount: "500000",
					},
				},
				Orders: []models.MOrderRecord{
					{
						OrderID:         42,
						MarketIndex:     0,
						Status:          "open",
						OrderType:       "limit",
						Direction:       "long",
						Price:           "72000000",
						BaseAssetAmount: "1000000000",
						AuctionDuration: 60000,
					},
				},
			},
			{
				Authority:    "FakeAuthority11111111111111111111111111111",
				SubAccountID: 1,
				Name:         "Scalping",
				SpotPositions: []models.MSpotPosition{
					{MarketIndex: 0, ScaledBalance: "320.10", BalanceType: "deposit"},
				},
			},
		},
	}
}

// -----------------------------------------------------------------------------

func (g *fakeGateway) serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/users", g.handleUsers)
	mux.HandleFunc("/v2/orders", g.handleTx)
	mux.HandleFunc("/v2/deposit", g.handleTx)
	mux.HandleFunc("/v2/withdraw", g.handleTx)
	mux.HandleFunc("/v2/user", g.handleTx)
	mux.HandleFunc("/v2/subscribe", g.handleOK)
	mux.HandleFunc("/v2/user/exists", g.handleExists)
	mux.HandleFunc("/v2/user-stats/exists", g.handleExists)
	mux.HandleFunc("/v2/token-account", g.handleTokenAccount)
	mux.HandleFunc("/ws", g.handleFeed)

	g.Logger.Info("Fake gateway listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// -----------------------------------------------------------------------------

func (g *fakeGateway) handleUsers(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// The fake returns the same accounts for any authority, but with the
	// requested authority stamped in so the derivation filters pass.
	authority := r.URL.Query().Get("authority")
	out := make([]models.MUserAccount, len(g.accounts))
	copy(out, g.accounts)
	for i := range out {
		out[i].Authority = authority
	}

	json.NewEncoder(w).Encode(out)
}

// -----------------------------------------------------------------------------

func (g *fakeGateway) handleTx(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.txSeq++
	sig := fmt.Sprintf("FakeTxSignature%06d", g.txSeq)
	g.mu.Unlock()

	g.Logger.Info("Fake gateway accepted %s %s -> %s", r.Method, r.URL.Path, sig)
	json.NewEncoder(w).Encode(map[string]string{"signature": sig})
}

// -----------------------------------------------------------------------------

func (g *fakeGateway) handleOK(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// -----------------------------------------------------------------------------

func (g *fakeGateway) handleExists(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]bool{"exists": true})
}

// -----------------------------------------------------------------------------

func (g *fakeGateway) handleTokenAccount(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"address": "FakeTokenAccount111111111111111111111111111"})
}

// -----------------------------------------------------------------------------

var feedUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleFeed pushes a mutated account record every few seconds.
func (g *fakeGateway) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		g.Logger.Error("Feed upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Read the subscribe command to learn the authority.
	var cmd struct {
		Command   string `json:"command"`
		Authority string `json:"authority"`
	}
	if err := conn.ReadJSON(&cmd); err != nil {
		return
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	tick := 0
	for range ticker.C {
		tick++

		g.mu.Lock()
		account := g.accounts[0]
		account.Authority = cmd.Authority
		account.SpotPositions = append([]models.MSpotPosition{}, account.SpotPositions...)
		account.SpotPositions[0].ScaledBalance = fmt.Sprintf("%d.25", 1500+tick)
		g.mu.Unlock()

		payload := map[string]interface{}{
			"channel": "user",
			"account": account,
		}
		conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}
}
