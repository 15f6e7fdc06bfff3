package models

// -----------------------------------------------------------------------------
// Protocol Constants
// -----------------------------------------------------------------------------

const (
	// MaxSubaccounts is the protocol cap on trading accounts per authority.
	MaxSubaccounts = 8

	// Supported collateral spot markets for deposit/withdraw.
	MarketIndexUSDC = 0
	MarketIndexSOL  = 1
)

// -----------------------------------------------------------------------------
// Direction / order enums (decoded, dashboard-facing form)
// -----------------------------------------------------------------------------

const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"

	OrderTypeMarket        = "MARKET"
	OrderTypeLimit         = "LIMIT"
	OrderTypeTriggerMarket = "TRIGGER_MARKET"
	OrderTypeTriggerLimit  = "TRIGGER_LIMIT"
	OrderTypeOracle        = "ORACLE"

	TriggerAbove = "ABOVE"
	TriggerBelow = "BELOW"
)

// -----------------------------------------------------------------------------
// MSubaccount - one of up to 8 trading accounts owned by a wallet authority.
// ID is the local display index assigned during discovery; on-chain identity
// is the (Authority, SubAccountID) pair.
// -----------------------------------------------------------------------------

type MSubaccount struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Authority    string `json:"authority"`
	SubAccountID uint16 `json:"sub_account_id"`
	Delegate     string `json:"delegate"`
}

// -----------------------------------------------------------------------------
// MTokenBalance - spot token balance of a subaccount.
// Balance and Value carry the scaled-balance magnitude as a decimal string.
// -----------------------------------------------------------------------------

type MTokenBalance struct {
	Token   string `json:"token"`
	Balance string `json:"balance"`
	Value   string `json:"value"`
}

// -----------------------------------------------------------------------------
// MPerpPosition - open perpetual position of a subaccount.
// Magnitudes are passed through from the account record as decimal strings.
// -----------------------------------------------------------------------------

type MPerpPosition struct {
	MarketIndex      string `json:"market_index"`
	BaseAssetAmount  string `json:"base_asset_amount"`
	QuoteAssetAmount string `json:"quote_asset_amount"`
	EntryPrice       string `json:"entry_price"`
	BreakEvenPrice   string `json:"break_even_price"`
	Pnl              string `json:"pnl"`
	UnrealizedPnl    string `json:"unrealized_pnl"`
	Direction        string `json:"direction"`
}

// -----------------------------------------------------------------------------
// MOrder - open order of a subaccount.
// Timestamp approximates placement time as "now minus auction duration";
// the record does not carry a true creation time.
// -----------------------------------------------------------------------------

type MOrder struct {
	OrderID          string `json:"order_id"`
	MarketIndex      string `json:"market_index"`
	Price            string `json:"price"`
	BaseAssetAmount  string `json:"base_asset_amount"`
	Direction        string `json:"direction"`
	OrderType        string `json:"order_type"`
	TriggerPrice     string `json:"trigger_price,omitempty"`
	TriggerCondition string `json:"trigger_condition,omitempty"`
	Timestamp        string `json:"timestamp"`
}
