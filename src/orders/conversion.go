package orders

import (
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Fixed-point conversion between dashboard display decimals and the trading
// client's on-chain representation.
// -----------------------------------------------------------------------------

var (
	// BasePrecision scales perp sizes (1e9).
	BasePrecision = decimal.New(1, 9)

	// PricePrecision scales perp prices (1e6).
	PricePrecision = decimal.New(1, 6)

	// QuotePrecision scales collateral amounts (1e6).
	QuotePrecision = decimal.New(1, 6)
)

// -----------------------------------------------------------------------------

// ToBaseAmount converts a display size to the fixed-point base-asset string.
func ToBaseAmount(size decimal.Decimal) string {
	return size.Mul(BasePrecision).Truncate(0).String()
}

// -----------------------------------------------------------------------------

// ToPriceAmount converts a display price to the fixed-point price string.
func ToPriceAmount(price decimal.Decimal) string {
	return price.Mul(PricePrecision).Truncate(0).String()
}

// -----------------------------------------------------------------------------

// ToQuoteAmount converts a display collateral amount to the fixed-point
// quote string used by deposit/withdraw.
func ToQuoteAmount(amount decimal.Decimal) string {
	return amount.Mul(QuotePrecision).Truncate(0).String()
}
