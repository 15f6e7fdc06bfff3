package models

// -----------------------------------------------------------------------------
// Market catalog entries (static per environment, shipped with the gateway).
// -----------------------------------------------------------------------------

// MPerpMarketConfig describes one perpetual market. Symbol is the market
// name ("SOL-PERP") and BaseAsset the underlying token ("SOL").
type MPerpMarketConfig struct {
	MarketIndex int    `json:"marketIndex"`
	Symbol      string `json:"symbol"`
	BaseAsset   string `json:"baseAsset"`
	FullName    string `json:"fullName"`
}

// -----------------------------------------------------------------------------

// MSpotMarketConfig describes one spot (collateral) market, "USDC" and
// "SOL" on both environments.
type MSpotMarketConfig struct {
	MarketIndex int    `json:"marketIndex"`
	Symbol      string `json:"symbol"`
	Mint        string `json:"mint"`
	Decimals    int    `json:"decimals"`
}

// -----------------------------------------------------------------------------

// MMarketCatalog groups the perp and spot catalogs for one environment.
type MMarketCatalog struct {
	Env         string              `json:"env"`
	PerpMarkets []MPerpMarketConfig `json:"perpMarkets"`
	SpotMarkets []MSpotMarketConfig `json:"spotMarkets"`
}

// -----------------------------------------------------------------------------

// PerpMarketByIndex returns the perp market config for a market index.
func (c *MMarketCatalog) PerpMarketByIndex(marketIndex int) (MPerpMarketConfig, bool) {
	for _, m := range c.PerpMarkets {
		if m.MarketIndex == marketIndex {
			return m, true
		}
	}
	return MPerpMarketConfig{}, false
}

// -----------------------------------------------------------------------------

// SpotMarketByIndex returns the spot market config for a market index.
func (c *MMarketCatalog) SpotMarketByIndex(marketIndex int) (MSpotMarketConfig, bool) {
	for _, m := range c.SpotMarkets {
		if m.MarketIndex == marketIndex {
			return m, true
		}
	}
	return MSpotMarketConfig{}, false
}
