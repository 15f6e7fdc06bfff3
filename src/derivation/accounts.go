package derivation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"drift-observer/src/helpers"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Pure derivation over the account map: subaccounts, balances, positions and
// open orders. Failure isolation is per-record (warn and skip); only a
// missing subaccount surfaces as an error from the per-subaccount lookups.
// -----------------------------------------------------------------------------

// ListSubaccounts enumerates up to models.MaxSubaccounts entries of the
// account map in iteration order. Slots whose record cannot be read, has a
// default authority or an empty name are skipped. ID is the slot position,
// so skipped slots consume indices.
func ListSubaccounts(accountMap interfaces.IAccountMap, log *logger.Logger) []models.MSubaccount {
	subaccounts := []models.MSubaccount{}

	for slot, entry := range accountMap.Entries() {
		if slot >= models.MaxSubaccounts {
			break
		}

		record, err := entry.Record()
		if err != nil {
			log.Warning("Skipping account slot %d: %v", slot, err)
			continue
		}

		if !isInitialized(record) {
			continue
		}

		subaccounts = append(subaccounts, models.MSubaccount{
			ID:           slot,
			Name:         fmt.Sprintf("Subaccount %d", record.SubAccountID),
			Authority:    record.Authority,
			SubAccountID: record.SubAccountID,
			Delegate:     record.Delegate,
		})
	}

	return subaccounts
}

// -----------------------------------------------------------------------------

// isInitialized - a record counts as a valid subaccount only with a
// non-default authority and a non-empty name.
func isInitialized(record *models.MUserAccount) bool {
	if record == nil {
		return false
	}
	if record.Authority == "" || record.Authority == models.DefaultAuthority {
		return false
	}
	return strings.TrimSpace(record.Name) != ""
}

// -----------------------------------------------------------------------------

// FindRecordBySubaccountID locates the first initialized record whose
// subAccountId matches, in iteration order. Unreadable slots are skipped.
func FindRecordBySubaccountID(accountMap interfaces.IAccountMap, subaccountID uint16, log *logger.Logger) (*models.MUserAccount, error) {
	for slot, entry := range accountMap.Entries() {
		record, err := entry.Record()
		if err != nil {
			log.Warning("Skipping account slot %d: %v", slot, err)
			continue
		}
		if record == nil || record.Authority == "" || record.Authority == models.DefaultAuthority {
			continue
		}
		if record.SubAccountID == subaccountID {
			return record, nil
		}
	}

	return nil, helpers.NotFoundError("subaccount %d not found", subaccountID)
}

// -----------------------------------------------------------------------------

// GetBalances derives the token balances of a subaccount. Only spot
// positions with a strictly positive scaled balance are included; the token
// symbol resolves through the spot catalog with the numeric market index as
// fallback. Value carries the balance magnitude (no separate pricing here).
func GetBalances(accountMap interfaces.IAccountMap, catalog *models.MMarketCatalog, subaccountID uint16, log *logger.Logger) (map[string]models.MTokenBalance, error) {
	record, err := FindRecordBySubaccountID(accountMap, subaccountID, log)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]models.MTokenBalance)

	for _, position := range record.SpotPositions {
		scaled, err := decimal.NewFromString(position.ScaledBalance)
		if err != nil {
			log.Warning("Skipping spot position (market %d): bad scaled balance %q", position.MarketIndex, position.ScaledBalance)
			continue
		}
		if !scaled.IsPositive() {
			continue
		}

		token := strconv.Itoa(position.MarketIndex)
		if catalog != nil {
			if market, ok := catalog.SpotMarketByIndex(position.MarketIndex); ok {
				token = market.Symbol
			}
		}

		balances[token] = models.MTokenBalance{
			Token:   token,
			Balance: scaled.String(),
			Value:   scaled.String(),
		}
	}

	return balances, nil
}

// -----------------------------------------------------------------------------

// GetPerpPositions derives the open perpetual positions of a subaccount.
// A slot is included only when its quote-asset amount is strictly positive;
// direction is LONG iff the base-asset amount is positive. Price and PnL
// fields are passed through from the record unmodified.
func GetPerpPositions(accountMap interfaces.IAccountMap, subaccountID uint16, log *logger.Logger) ([]models.MPerpPosition, error) {
	record, err := FindRecordBySubaccountID(accountMap, subaccountID, log)
	if err != nil {
		return nil, err
	}

	positions := []models.MPerpPosition{}

	for _, slot := range record.PerpPositions {
		quote, err := decimal.NewFromString(slot.QuoteAssetAmount)
		if err != nil {
			log.Warning("Skipping perp position (market %d): bad quote amount %q", slot.MarketIndex, slot.QuoteAssetAmount)
			continue
		}
		if !quote.IsPositive() {
			continue
		}

		base, err := decimal.NewFromString(slot.BaseAssetAmount)
		if err != nil {
			log.Warning("Skipping perp position (market %d): bad base amount %q", slot.MarketIndex, slot.BaseAssetAmount)
			continue
		}

		direction := models.DirectionShort
		if base.IsPositive() {
			direction = models.DirectionLong
		}

		positions = append(positions, models.MPerpPosition{
			MarketIndex:      strconv.Itoa(slot.MarketIndex),
			BaseAssetAmount:  slot.BaseAssetAmount,
			QuoteAssetAmount: slot.QuoteAssetAmount,
			EntryPrice:       slot.QuoteEntryAmount,
			BreakEvenPrice:   slot.QuoteBreakEvenAmount,
			Pnl:              slot.SettledPnl,
			UnrealizedPnl:    slot.RemainderBaseAssetAmount,
			Direction:        direction,
		})
	}

	return positions, nil
}

// -----------------------------------------------------------------------------

// GetOpenOrders derives the open orders of a subaccount. Only orders with
// status "open" are surfaced. The timestamp approximates placement time as
// now (unix ms) minus the order's auction duration.
func GetOpenOrders(accountMap interfaces.IAccountMap, subaccountID uint16, log *logger.Logger) ([]models.MOrder, error) {
	record, err := FindRecordBySubaccountID(accountMap, subaccountID, log)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	orders := []models.MOrder{}

	for _, slot := range record.Orders {
		if !strings.EqualFold(slot.Status, "open") {
			continue
		}

		orders = append(orders, models.MOrder{
			OrderID:          strconv.FormatUint(uint64(slot.OrderID), 10),
			MarketIndex:      strconv.Itoa(slot.MarketIndex),
			Price:            slot.Price,
			BaseAssetAmount:  slot.BaseAssetAmount,
			Direction:        DecodeDirection(slot.Direction),
			OrderType:        DecodeOrderType(slot.OrderType),
			TriggerPrice:     slot.TriggerPrice,
			TriggerCondition: DecodeTriggerCondition(slot.TriggerCondition),
			Timestamp:        strconv.FormatInt(now-slot.AuctionDuration, 10),
		})
	}

	return orders, nil
}

// -----------------------------------------------------------------------------
// Enum decoding (gateway encoding -> dashboard form)
// -----------------------------------------------------------------------------

// DecodeDirection maps the gateway's direction enum to LONG/SHORT.
func DecodeDirection(direction string) string {
	if strings.EqualFold(direction, "long") {
		return models.DirectionLong
	}
	return models.DirectionShort
}

// -----------------------------------------------------------------------------

// DecodeOrderType maps the gateway's order-type enum to the named form.
func DecodeOrderType(orderType string) string {
	switch orderType {
	case "market":
		return models.OrderTypeMarket
	case "limit":
		return models.OrderTypeLimit
	case "triggerMarket":
		return models.OrderTypeTriggerMarket
	case "triggerLimit":
		return models.OrderTypeTriggerLimit
	case "oracle":
		return models.OrderTypeOracle
	default:
		return strings.ToUpper(orderType)
	}
}

// -----------------------------------------------------------------------------

// DecodeTriggerCondition maps the gateway's trigger enum to ABOVE/BELOW.
// Already-triggered conditions keep their side.
func DecodeTriggerCondition(condition string) string {
	switch condition {
	case "above", "triggeredAbove":
		return models.TriggerAbove
	case "below", "triggeredBelow":
		return models.TriggerBelow
	case "":
		return ""
	default:
		return strings.ToUpper(condition)
	}
}
