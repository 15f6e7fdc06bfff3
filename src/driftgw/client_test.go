package driftgw

import (
	"context"
	"encoding/json"
	"testing"

	"drift-observer/src/logger"
	"drift-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// fakeNetwork captures requests and replays canned JSON responses.
type fakeNetwork struct {
	posts    []capturedPost
	response []byte
}

type capturedPost struct {
	url  string
	body map[string]interface{}
}

func (n *fakeNetwork) Get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	return n.response, nil
}

func (n *fakeNetwork) PostJSON(ctx context.Context, url string, body interface{}) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	n.posts = append(n.posts, capturedPost{url: url, body: decoded})
	return n.response, nil
}

// -----------------------------------------------------------------------------

func newTestClient(network *fakeNetwork) *GatewayClient {
	return NewGatewayClient("http://gateway", "AuthorityPubkey11111111111111111111111111", 10000, network, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestPlaceOrdersPayloadCarriesComputeUnitsPrice(t *testing.T) {
	network := &fakeNetwork{response: []byte(`{"signature":"Sig1"}`)}
	client := newTestClient(network)

	sig, err := client.PlaceOrders(context.Background(), []models.MOrderParams{
		{MarketIndex: 0, Direction: models.DirectionLong, OrderType: models.OrderTypeMarket, BaseAssetAmount: "1000000000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sig1", sig)

	require.Len(t, network.posts, 1)
	post := network.posts[0]
	assert.Equal(t, "http://gateway/v2/orders", post.url)
	assert.Equal(t, "AuthorityPubkey11111111111111111111111111", post.body["authority"])
	assert.Equal(t, float64(10000), post.body["computeUnitsPrice"])
}

// -----------------------------------------------------------------------------

func TestDepositAndWithdrawPayloadsCarryComputeUnitsPrice(t *testing.T) {
	network := &fakeNetwork{response: []byte(`{"signature":"Sig2"}`)}
	client := newTestClient(network)

	_, err := client.Deposit(context.Background(), "250500000", 0, "TokenAccount1111111111111111111111111111111", 0, false)
	require.NoError(t, err)

	_, err = client.Withdraw(context.Background(), "2000000", 1, "TokenAccount1111111111111111111111111111111", 0, false)
	require.NoError(t, err)

	require.Len(t, network.posts, 2)
	for _, post := range network.posts {
		assert.Equal(t, float64(10000), post.body["computeUnitsPrice"])
	}
	assert.Equal(t, "http://gateway/v2/deposit", network.posts[0].url)
	assert.Equal(t, "http://gateway/v2/withdraw", network.posts[1].url)
}

// -----------------------------------------------------------------------------

func TestPostTxSurfacesGatewayErrors(t *testing.T) {
	network := &fakeNetwork{response: []byte(`{"error":"insufficient collateral"}`)}
	client := newTestClient(network)

	_, err := client.PlaceOrder(context.Background(), models.MOrderParams{
		MarketIndex: 0, Direction: models.DirectionLong, OrderType: models.OrderTypeMarket, BaseAssetAmount: "1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient collateral")
}
