package derivation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"drift-observer/src/helpers"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeEntry struct {
	record *models.MUserAccount
	err    error
}

func (e *fakeEntry) Record() (*models.MUserAccount, error) {
	return e.record, e.err
}

// accountMapStub satisfies interfaces.IAccountMap with a fixed entry list.
type accountMapStub struct {
	entries []interfaces.IAccountEntry
}

func (m *accountMapStub) Entries() []interfaces.IAccountEntry { return m.entries }

func (m *accountMapStub) Subscribe(ctx context.Context, updates chan<- struct{}, wg *sync.WaitGroup) error {
	return nil
}

func (m *accountMapStub) Stop() error { return nil }

// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	return logger.NewLogger("ERROR", "test")
}

func validRecord(subAccountID uint16, name string) *models.MUserAccount {
	return &models.MUserAccount{
		Authority:    "AuthorityPubkey11111111111111111111111111",
		SubAccountID: subAccountID,
		Name:         name,
	}
}

func mapOf(records ...*models.MUserAccount) *accountMapStub {
	stub := &accountMapStub{}
	for _, r := range records {
		stub.entries = append(stub.entries, &fakeEntry{record: r})
	}
	return stub
}

// -----------------------------------------------------------------------------
// ListSubaccounts
// -----------------------------------------------------------------------------

func TestListSubaccountsSkipsUninitialized(t *testing.T) {
	stub := mapOf(
		validRecord(0, "Main Account"),
		&models.MUserAccount{Authority: models.DefaultAuthority, SubAccountID: 1, Name: "Ghost"},
		validRecord(2, "Scalping"),
		&models.MUserAccount{Authority: "AuthorityPubkey11111111111111111111111111", SubAccountID: 3, Name: "   "},
	)

	subaccounts := ListSubaccounts(stub, testLogger())

	require.Len(t, subaccounts, 2)
	assert.Equal(t, "Subaccount 0", subaccounts[0].Name)
	assert.Equal(t, "Subaccount 2", subaccounts[1].Name)
}

// -----------------------------------------------------------------------------

// Skipped slots still consume their index: the ID is the slot position.
func TestListSubaccountsIDIsSlotPosition(t *testing.T) {
	stub := mapOf(
		&models.MUserAccount{Authority: models.DefaultAuthority},
		validRecord(5, "Second Slot"),
	)

	subaccounts := ListSubaccounts(stub, testLogger())

	require.Len(t, subaccounts, 1)
	assert.Equal(t, 1, subaccounts[0].ID)
	assert.Equal(t, uint16(5), subaccounts[0].SubAccountID)
}

// -----------------------------------------------------------------------------

func TestListSubaccountsCapsAtMax(t *testing.T) {
	stub := &accountMapStub{}
	for i := 0; i < models.MaxSubaccounts+4; i++ {
		stub.entries = append(stub.entries, &fakeEntry{record: validRecord(uint16(i), "Account")})
	}

	subaccounts := ListSubaccounts(stub, testLogger())

	assert.Len(t, subaccounts, models.MaxSubaccounts)
}

// -----------------------------------------------------------------------------

func TestListSubaccountsSkipsUnreadableSlots(t *testing.T) {
	stub := &accountMapStub{entries: []interfaces.IAccountEntry{
		&fakeEntry{err: errors.New("decode failure")},
		&fakeEntry{record: validRecord(1, "Alive")},
	}}

	subaccounts := ListSubaccounts(stub, testLogger())

	require.Len(t, subaccounts, 1)
	assert.Equal(t, uint16(1), subaccounts[0].SubAccountID)
}

// -----------------------------------------------------------------------------
// FindRecordBySubaccountID
// -----------------------------------------------------------------------------

func TestFindRecordBySubaccountID(t *testing.T) {
	stub := mapOf(validRecord(0, "Main"), validRecord(3, "Other"))

	record, err := FindRecordBySubaccountID(stub, 3, testLogger())
	require.NoError(t, err)
	assert.Equal(t, uint16(3), record.SubAccountID)

	_, err = FindRecordBySubaccountID(stub, 7, testLogger())
	assert.ErrorIs(t, err, helpers.ErrNotFound)
}

// -----------------------------------------------------------------------------
// GetBalances
// -----------------------------------------------------------------------------

func TestGetBalancesFiltersAndResolvesSymbols(t *testing.T) {
	record := validRecord(0, "Main")
	record.SpotPositions = []models.MSpotPosition{
		{MarketIndex: 0, ScaledBalance: "1500.25"},
		{MarketIndex: 1, ScaledBalance: "0"},
		{MarketIndex: 2, ScaledBalance: "-3"},
		{MarketIndex: 3, ScaledBalance: "not-a-number"},
		{MarketIndex: 9, ScaledBalance: "7"},
	}

	catalog := &models.MMarketCatalog{
		SpotMarkets: []models.MSpotMarketConfig{
			{MarketIndex: 0, Symbol: "USDC"},
			{MarketIndex: 1, Symbol: "SOL"},
		},
	}

	balances, err := GetBalances(mapOf(record), catalog, 0, testLogger())
	require.NoError(t, err)

	require.Len(t, balances, 2)
	assert.Equal(t, "1500.25", balances["USDC"].Balance)
	assert.Equal(t, "1500.25", balances["USDC"].Value)
	// Unknown market index falls back to its numeric form.
	assert.Equal(t, "7", balances["9"].Balance)
}

// -----------------------------------------------------------------------------

func TestGetBalancesUnknownSubaccount(t *testing.T) {
	_, err := GetBalances(mapOf(validRecord(0, "Main")), nil, 4, testLogger())
	assert.ErrorIs(t, err, helpers.ErrNotFound)
}

// -----------------------------------------------------------------------------
// GetPerpPositions
// -----------------------------------------------------------------------------

func TestGetPerpPositionsDirectionAndFilter(t *testing.T) {
	record := validRecord(0, "Main")
	record.PerpPositions = []models.MPerpRecord{
		{MarketIndex: 0, QuoteAssetAmount: "150000000", BaseAssetAmount: "2000000000", QuoteEntryAmount: "148000000", QuoteBreakEvenAmount: "148500000", SettledPnl: "1200000", RemainderBaseAssetAmount: "500000"},
		{MarketIndex: 1, QuoteAssetAmount: "90000000", BaseAssetAmount: "-1000000000"},
		{MarketIndex: 2, QuoteAssetAmount: "0", BaseAssetAmount: "5"},
	}

	positions, err := GetPerpPositions(mapOf(record), 0, testLogger())
	require.NoError(t, err)

	require.Len(t, positions, 2)
	assert.Equal(t, models.DirectionLong, positions[0].Direction)
	assert.Equal(t, "148000000", positions[0].EntryPrice)
	assert.Equal(t, "148500000", positions[0].BreakEvenPrice)
	assert.Equal(t, "1200000", positions[0].Pnl)
	assert.Equal(t, "500000", positions[0].UnrealizedPnl)
	assert.Equal(t, models.DirectionShort, positions[1].Direction)
}

// -----------------------------------------------------------------------------
// GetOpenOrders
// -----------------------------------------------------------------------------

func TestGetOpenOrdersFiltersByStatus(t *testing.T) {
	record := validRecord(0, "Main")
	record.Orders = []models.MOrderRecord{
		{OrderID: 1, MarketIndex: 0, Status: "open", OrderType: "limit", Direction: "long", Price: "72000000"},
		{OrderID: 2, MarketIndex: 0, Status: "filled", OrderType: "market", Direction: "short"},
		{OrderID: 3, MarketIndex: 1, Status: "open", OrderType: "triggerMarket", Direction: "short", TriggerCondition: "above"},
	}

	openOrders, err := GetOpenOrders(mapOf(record), 0, testLogger())
	require.NoError(t, err)

	require.Len(t, openOrders, 2)
	assert.Equal(t, "1", openOrders[0].OrderID)
	assert.Equal(t, models.DirectionLong, openOrders[0].Direction)
	assert.Equal(t, models.OrderTypeLimit, openOrders[0].OrderType)
	assert.Equal(t, models.OrderTypeTriggerMarket, openOrders[1].OrderType)
	assert.Equal(t, models.TriggerAbove, openOrders[1].TriggerCondition)
}

// -----------------------------------------------------------------------------
// Enum decoding
// -----------------------------------------------------------------------------

func TestDecodeHelpers(t *testing.T) {
	assert.Equal(t, models.DirectionLong, DecodeDirection("long"))
	assert.Equal(t, models.DirectionShort, DecodeDirection("short"))
	assert.Equal(t, models.DirectionShort, DecodeDirection("anything-else"))

	assert.Equal(t, models.OrderTypeMarket, DecodeOrderType("market"))
	assert.Equal(t, models.OrderTypeOracle, DecodeOrderType("oracle"))

	assert.Equal(t, models.TriggerAbove, DecodeTriggerCondition("triggeredAbove"))
	assert.Equal(t, models.TriggerBelow, DecodeTriggerCondition("below"))
	assert.Equal(t, "", DecodeTriggerCondition(""))
}
