package models

import "time"

// -----------------------------------------------------------------------------
// Session state shapes shared between stores, service and server.
// -----------------------------------------------------------------------------

// MSessionState is the wallet viewing context. Exactly one of "own wallet
// connected" or "lookup address set" is active at a time; both may be unset.
type MSessionState struct {
	PublicKey     string `json:"public_key,omitempty"`
	Connected     bool   `json:"connected"`
	Connecting    bool   `json:"connecting"`
	Disconnecting bool   `json:"disconnecting"`
	LookupAddress string `json:"lookup_address,omitempty"`
	WalletName    string `json:"wallet_name,omitempty"`
}

// -----------------------------------------------------------------------------

// MOrderForm holds the in-progress order-form field values. String fields
// carry the raw user input; validation happens at submission time.
type MOrderForm struct {
	SelectedMarket    string `json:"selected_market,omitempty"`
	OrderType         string `json:"order_type"` // MARKET or LIMIT
	OrderSize         string `json:"order_size"`
	OrderPrice        string `json:"order_price"`
	OrderDirection    string `json:"order_direction"` // LONG or SHORT
	TakeProfitPrice   string `json:"take_profit_price"`
	StopLossPrice     string `json:"stop_loss_price"`
	ScaledOrdersCount int    `json:"scaled_orders_count"` // 2..10
	PriceRangeStart   string `json:"price_range_start"`
	PriceRangeEnd     string `json:"price_range_end"`
	TotalSize         string `json:"total_size"`
}

// -----------------------------------------------------------------------------

// MModalFlags mirrors the dashboard's modal visibility switches.
type MModalFlags struct {
	Deposit      bool `json:"deposit"`
	Withdraw     bool `json:"withdraw"`
	PerpOrder    bool `json:"perp_order"`
	TpSl         bool `json:"tp_sl"`
	ScaledOrders bool `json:"scaled_orders"`
	WalletLookup bool `json:"wallet_lookup"`
}

// -----------------------------------------------------------------------------

// MScaledOrderPlan is one child order of a scaled-order plan.
type MScaledOrderPlan struct {
	OrderNum int    `json:"order_num"`
	Price    string `json:"price"`
	Size     string `json:"size"`
}

// -----------------------------------------------------------------------------

// MTransactionRecord is one persisted submission (order/deposit/withdraw).
type MTransactionRecord struct {
	Signature    string    `json:"signature"`
	Kind         string    `json:"kind"` // "order", "deposit", "withdraw"
	Authority    string    `json:"authority"`
	SubAccountID uint16    `json:"sub_account_id"`
	MarketIndex  int       `json:"market_index"`
	Amount       string    `json:"amount"`
	Status       string    `json:"status"` // "submitted" or "failed"
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// -----------------------------------------------------------------------------
// Dashboard push payload
// -----------------------------------------------------------------------------

// MSnapshot is the full dashboard state pushed over the websocket.
type MSnapshot struct {
	Type             string                   `json:"type"` // "INITIAL" or "UPDATE"
	Session          MSessionState            `json:"session"`
	Subaccounts      []MSubaccount            `json:"subaccounts"`
	SelectedIndex    int                      `json:"selected_index"`
	Balances         map[string]MTokenBalance `json:"balances"`
	Positions        []MPerpPosition          `json:"positions"`
	Orders           []MOrder                 `json:"orders"`
	BalancesLoading  bool                     `json:"balances_loading"`
	PositionsLoading bool                     `json:"positions_loading"`
	OrdersLoading    bool                     `json:"orders_loading"`
	LastError        string                   `json:"last_error,omitempty"`
	Timestamp        int64                    `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MSubscribeCommand is the websocket client's subscribe message.
type MSubscribeCommand struct {
	Command    string `json:"command"`
	ClientType string `json:"clientType"`
}
