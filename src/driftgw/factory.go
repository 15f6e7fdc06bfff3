package driftgw

import (
	"context"

	"drift-observer/src/config"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"
	"drift-observer/src/session"
)

// -----------------------------------------------------------------------------

// NewSessionFactory builds the trading-session factory used by the session
// service: one gateway client plus one account map per authority.
func NewSessionFactory(cfg *config.Config, network interfaces.INetworkManager, log *logger.Logger) session.TradingSessionFactory {
	return func(ctx context.Context, authority string) (interfaces.ITradingClient, interfaces.IAccountMap, *models.MMarketCatalog, error) {
		client := NewGatewayClient(cfg.Drift.GatewayURL, authority, cfg.Drift.ComputeUnitsPx, network, log)
		accountMap := NewAccountMap(cfg.Drift.GatewayURL, cfg.Drift.GatewayWSURL, authority, network, log)
		return client, accountMap, CatalogForEnv(cfg.Drift.Env), nil
	}
}
