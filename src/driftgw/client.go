package driftgw

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"drift-observer/src/helpers"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"
)

// -----------------------------------------------------------------------------
// GatewayClient submits transactions through the Drift gateway's REST API.
// The gateway owns keys, transaction building and confirmation; this client
// only ships validated payloads and reads back signatures.
// -----------------------------------------------------------------------------

type GatewayClient struct {
	BaseURL   string
	Authority string

	// ComputeUnitsPrice is the priority-fee price (micro-lamports per
	// compute unit) attached to every submitted transaction.
	ComputeUnitsPrice int

	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewGatewayClient(baseURL, authority string, computeUnitsPrice int, network interfaces.INetworkManager, log *logger.Logger) *GatewayClient {
	return &GatewayClient{
		BaseURL:           baseURL,
		Authority:         authority,
		ComputeUnitsPrice: computeUnitsPrice,
		Network:           network,
		Logger:            log,
	}
}

// -----------------------------------------------------------------------------
// Wire shapes
// -----------------------------------------------------------------------------

type txResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

type tokenAccountResponse struct {
	Address string `json:"address"`
}

// -----------------------------------------------------------------------------

// postTx posts a payload and decodes the transaction signature.
func (g *GatewayClient) postTx(ctx context.Context, path string, payload interface{}) (string, error) {
	body, err := g.Network.PostJSON(ctx, g.BaseURL+path, payload)
	if err != nil {
		return "", err
	}

	var resp txResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("bad gateway response for %s: %w", path, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("gateway rejected %s: %s", path, resp.Error)
	}
	if resp.Signature == "" {
		return "", fmt.Errorf("gateway returned no signature for %s", path)
	}

	return resp.Signature, nil
}

// -----------------------------------------------------------------------------
// ITradingClient implementation
// -----------------------------------------------------------------------------

func (g *GatewayClient) PlaceOrder(ctx context.Context, params models.MOrderParams) (string, error) {
	return g.PlaceOrders(ctx, []models.MOrderParams{params})
}

// -----------------------------------------------------------------------------

// PlaceOrders submits all orders as one transaction.
func (g *GatewayClient) PlaceOrders(ctx context.Context, params []models.MOrderParams) (string, error) {
	if len(params) == 0 {
		return "", helpers.InvalidInputError("no orders to place")
	}

	payload := map[string]interface{}{
		"authority":         g.Authority,
		"orders":            params,
		"computeUnitsPrice": g.ComputeUnitsPrice,
	}
	return g.postTx(ctx, "/v2/orders", payload)
}

// -----------------------------------------------------------------------------

func (g *GatewayClient) Deposit(ctx context.Context, amount string, marketIndex int, associatedTokenAccount string, subAccountID uint16, reduceOnly bool) (string, error) {
	payload := map[string]interface{}{
		"authority":              g.Authority,
		"amount":                 amount,
		"marketIndex":            marketIndex,
		"associatedTokenAccount": associatedTokenAccount,
		"subAccountId":           subAccountID,
		"reduceOnly":             reduceOnly,
		"computeUnitsPrice":      g.ComputeUnitsPrice,
	}
	return g.postTx(ctx, "/v2/deposit", payload)
}

// -----------------------------------------------------------------------------

func (g *GatewayClient) Withdraw(ctx context.Context, amount string, marketIndex int, associatedTokenAccount string, subAccountID uint16, reduceOnly bool) (string, error) {
	payload := map[string]interface{}{
		"authority":              g.Authority,
		"amount":                 amount,
		"marketIndex":            marketIndex,
		"associatedTokenAccount": associatedTokenAccount,
		"subAccountId":           subAccountID,
		"reduceOnly":             reduceOnly,
		"computeUnitsPrice":      g.ComputeUnitsPrice,
	}
	return g.postTx(ctx, "/v2/withdraw", payload)
}

// -----------------------------------------------------------------------------

func (g *GatewayClient) GetAssociatedTokenAccount(ctx context.Context, marketIndex int) (string, error) {
	params := map[string]string{
		"authority":   g.Authority,
		"marketIndex": strconv.Itoa(marketIndex),
	}

	body, err := g.Network.Get(ctx, g.BaseURL+"/v2/token-account", params)
	if err != nil {
		return "", err
	}

	var resp tokenAccountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("bad token-account response: %w", err)
	}
	if resp.Address == "" {
		return "", fmt.Errorf("no associated token account for market %d", marketIndex)
	}

	return resp.Address, nil
}

// -----------------------------------------------------------------------------

func (g *GatewayClient) UserAccountExists(ctx context.Context) (bool, error) {
	return g.checkExists(ctx, "/v2/user/exists")
}

// -----------------------------------------------------------------------------

func (g *GatewayClient) UserStatsAccountExists(ctx context.Context) (bool, error) {
	return g.checkExists(ctx, "/v2/user-stats/exists")
}

// -----------------------------------------------------------------------------

func (g *GatewayClient) checkExists(ctx context.Context, path string) (bool, error) {
	params := map[string]string{"authority": g.Authority}

	body, err := g.Network.Get(ctx, g.BaseURL+path, params)
	if err != nil {
		return false, err
	}

	var resp existsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("bad exists response for %s: %w", path, err)
	}

	return resp.Exists, nil
}

// -----------------------------------------------------------------------------

func (g *GatewayClient) InitializeUserAccount(ctx context.Context, subAccountID uint16, name string) (string, error) {
	payload := map[string]interface{}{
		"authority":         g.Authority,
		"subAccountId":      subAccountID,
		"name":              name,
		"computeUnitsPrice": g.ComputeUnitsPrice,
	}
	txSig, err := g.postTx(ctx, "/v2/user", payload)
	if err != nil {
		return "", err
	}

	g.Logger.Info("Initialized user account %d (%s): %s", subAccountID, name, txSig)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// Subscribe attaches the gateway's client instance to the user account after
// a bootstrap. A no-payload POST; the gateway tracks the subscription state.
func (g *GatewayClient) Subscribe(ctx context.Context) error {
	payload := map[string]interface{}{"authority": g.Authority}
	if _, err := g.Network.PostJSON(ctx, g.BaseURL+"/v2/subscribe", payload); err != nil {
		return err
	}
	return nil
}
