package driftgw

import "drift-observer/src/models"

// -----------------------------------------------------------------------------
// Static market catalogs per environment. The dashboard only needs the
// collateral spot markets (USDC, SOL) and the major perp markets; the gateway
// addresses everything else by market index.
// -----------------------------------------------------------------------------

var mainnetCatalog = models.MMarketCatalog{
	Env: "mainnet-beta",
	PerpMarkets: []models.MPerpMarketConfig{
		{MarketIndex: 0, Symbol: "SOL-PERP", BaseAsset: "SOL", FullName: "Solana"},
		{MarketIndex: 1, Symbol: "BTC-PERP", BaseAsset: "BTC", FullName: "Bitcoin"},
		{MarketIndex: 2, Symbol: "ETH-PERP", BaseAsset: "ETH", FullName: "Ethereum"},
	},
	SpotMarkets: []models.MSpotMarketConfig{
		{MarketIndex: 0, Symbol: "USDC", Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
		{MarketIndex: 1, Symbol: "SOL", Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
	},
}

// -----------------------------------------------------------------------------

var devnetCatalog = models.MMarketCatalog{
	Env: "devnet",
	PerpMarkets: []models.MPerpMarketConfig{
		{MarketIndex: 0, Symbol: "SOL-PERP", BaseAsset: "SOL", FullName: "Solana"},
		{MarketIndex: 1, Symbol: "BTC-PERP", BaseAsset: "BTC", FullName: "Bitcoin"},
		{MarketIndex: 2, Symbol: "ETH-PERP", BaseAsset: "ETH", FullName: "Ethereum"},
	},
	SpotMarkets: []models.MSpotMarketConfig{
		{MarketIndex: 0, Symbol: "USDC", Mint: "8zGuJQqwhZafTah7Uc7Z4tXRnguqkn5KLFAP8oV6PHe2", Decimals: 6},
		{MarketIndex: 1, Symbol: "SOL", Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
	},
}

// -----------------------------------------------------------------------------

// CatalogForEnv returns the market catalog for a Drift environment. Unknown
// environments fall back to mainnet.
func CatalogForEnv(env string) *models.MMarketCatalog {
	if env == "devnet" {
		catalog := devnetCatalog
		return &catalog
	}
	catalog := mainnetCatalog
	return &catalog
}
