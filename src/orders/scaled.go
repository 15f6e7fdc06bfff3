package orders

import (
	"context"

	"drift-observer/src/derivation"
	"drift-observer/src/helpers"
	"drift-observer/src/interfaces"
	"drift-observer/src/logger"
	"drift-observer/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Scaled orders: one large order split into count equal limit orders with
// prices interpolated linearly from startPrice to endPrice inclusive.
// PlanScaledOrders is pure (used for the dashboard preview);
// SubmitScaledOrders turns the plan into a single batched submission.
// -----------------------------------------------------------------------------

// PlanScaledOrders computes the child orders of a scaled order.
// price_i = start + i*(end-start)/(count-1), size_i = total/count.
func PlanScaledOrders(totalSize, startPrice, endPrice string, count int) ([]models.MScaledOrderPlan, error) {
	if count < 2 {
		return nil, helpers.InvalidInputError("scaled orders require at least 2 child orders, got %d", count)
	}

	total, err := parsePositiveDecimal(totalSize)
	if err != nil {
		return nil, helpers.InvalidInputError("total size must be a positive number, got %q", totalSize)
	}
	start, err := parsePositiveDecimal(startPrice)
	if err != nil {
		return nil, helpers.InvalidInputError("start price must be a positive number, got %q", startPrice)
	}
	end, err := parsePositiveDecimal(endPrice)
	if err != nil {
		return nil, helpers.InvalidInputError("end price must be a positive number, got %q", endPrice)
	}
	if start.Equal(end) {
		return nil, helpers.InvalidInputError("start and end price must differ")
	}

	countDec := decimal.NewFromInt(int64(count))
	sizePerOrder := total.Div(countDec)
	priceDelta := end.Sub(start).Div(countDec.Sub(decimal.NewFromInt(1)))

	plan := make([]models.MScaledOrderPlan, 0, count)
	for i := 0; i < count; i++ {
		price := start.Add(priceDelta.Mul(decimal.NewFromInt(int64(i))))
		plan = append(plan, models.MScaledOrderPlan{
			OrderNum: i + 1,
			Price:    price.String(),
			Size:     sizePerOrder.String(),
		})
	}

	return plan, nil
}

// -----------------------------------------------------------------------------

// SubmitScaledOrders places the planned child orders as one transaction
// through the client's batched order call and returns its signature.
func SubmitScaledOrders(
	ctx context.Context,
	client interfaces.ITradingClient,
	accountMap interfaces.IAccountMap,
	subaccountID uint16,
	marketIndex int,
	direction string,
	totalSize, startPrice, endPrice string,
	count int,
	log *logger.Logger,
) (string, error) {
	if direction != models.DirectionLong && direction != models.DirectionShort {
		return "", helpers.InvalidInputError("order direction must be LONG or SHORT, got %q", direction)
	}

	plan, err := PlanScaledOrders(totalSize, startPrice, endPrice, count)
	if err != nil {
		return "", err
	}

	if _, err := derivation.FindRecordBySubaccountID(accountMap, subaccountID, log); err != nil {
		return "", err
	}

	params := make([]models.MOrderParams, 0, len(plan))
	for _, child := range plan {
		// The plan's decimal strings parse back cleanly; errors cannot occur here.
		size, _ := decimal.NewFromString(child.Size)
		price, _ := decimal.NewFromString(child.Price)

		params = append(params, models.MOrderParams{
			MarketIndex:     marketIndex,
			Direction:       direction,
			OrderType:       models.OrderTypeLimit,
			BaseAssetAmount: ToBaseAmount(size),
			Price:           ToPriceAmount(price),
			SubAccountID:    subaccountID,
		})
	}

	txSig, err := client.PlaceOrders(ctx, params)
	if err != nil {
		return "", helpers.SubmissionError(err, "scaled orders rejected")
	}

	log.Info("Placed %d scaled %s orders on market %d for subaccount %d: %s", len(plan), direction, marketIndex, subaccountID, txSig)
	return txSig, nil
}
