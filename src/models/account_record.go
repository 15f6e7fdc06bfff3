package models

// -----------------------------------------------------------------------------
// Raw account-map record shapes, as decoded by the Drift gateway.
// Magnitudes are fixed-point integers carried as decimal strings because the
// on-chain types (u64/i64/u128) exceed what float64 can represent exactly.
// -----------------------------------------------------------------------------

// DefaultAuthority is the all-zero system address of uninitialized records.
const DefaultAuthority = "11111111111111111111111111111111"

// -----------------------------------------------------------------------------

// MUserAccount mirrors one on-chain user account (a subaccount record).
type MUserAccount struct {
	Authority     string          `json:"authority"`
	SubAccountID  uint16          `json:"subAccountId"`
	Delegate      string          `json:"delegate"`
	Name          string          `json:"name"`
	SpotPositions []MSpotPosition `json:"spotPositions"`
	PerpPositions []MPerpRecord   `json:"perpPositions"`
	Orders        []MOrderRecord  `json:"orders"`
}

// -----------------------------------------------------------------------------

// MSpotPosition is one spot-token slot of a user account.
type MSpotPosition struct {
	MarketIndex   int    `json:"marketIndex"`
	ScaledBalance string `json:"scaledBalance"`
	BalanceType   string `json:"balanceType"` // "deposit" or "borrow"
}

// -----------------------------------------------------------------------------

// MPerpRecord is one perpetual-position slot of a user account.
type MPerpRecord struct {
	MarketIndex              int    `json:"marketIndex"`
	BaseAssetAmount          string `json:"baseAssetAmount"`
	QuoteAssetAmount         string `json:"quoteAssetAmount"`
	QuoteEntryAmount         string `json:"quoteEntryAmount"`
	QuoteBreakEvenAmount     string `json:"quoteBreakEvenAmount"`
	SettledPnl               string `json:"settledPnl"`
	RemainderBaseAssetAmount string `json:"remainderBaseAssetAmount"`
}

// -----------------------------------------------------------------------------

// MOrderRecord is one order slot of a user account. Status, type, direction
// and trigger condition come through in the gateway's enum encoding
// ("open", "triggerMarket", "long", "above", ...).
type MOrderRecord struct {
	OrderID          uint32 `json:"orderId"`
	MarketIndex      int    `json:"marketIndex"`
	Status           string `json:"status"`
	OrderType        string `json:"orderType"`
	Direction        string `json:"direction"`
	Price            string `json:"price"`
	BaseAssetAmount  string `json:"baseAssetAmount"`
	TriggerPrice     string `json:"triggerPrice"`
	TriggerCondition string `json:"triggerCondition"`
	AuctionDuration  int64  `json:"auctionDuration"`
}

// -----------------------------------------------------------------------------

// MOrderParams is the submission payload handed to the trading client.
// Amounts are already converted to the client's fixed-point representation.
type MOrderParams struct {
	MarketIndex      int    `json:"marketIndex"`
	Direction        string `json:"direction"` // LONG or SHORT
	OrderType        string `json:"orderType"` // MARKET, LIMIT, TRIGGER_MARKET, ...
	BaseAssetAmount  string `json:"baseAssetAmount"`
	Price            string `json:"price,omitempty"`
	TriggerPrice     string `json:"triggerPrice,omitempty"`
	TriggerCondition string `json:"triggerCondition,omitempty"`
	ReduceOnly       bool   `json:"reduceOnly"`
	SubAccountID     uint16 `json:"subAccountId"`
}
