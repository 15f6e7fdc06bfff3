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
// Order and collateral submission. Validates form input, converts display
// decimals to the client's fixed-point representation and hands the payload
// to the external trading client. No automatic retries: a rejected
// transaction is surfaced to the user as-is.
// -----------------------------------------------------------------------------

// bootstrapAccountName is the display name given to a user account created
// during the first-deposit bootstrap.
const bootstrapAccountName = "Main Account"

// -----------------------------------------------------------------------------

// PlaceOrder validates and submits a single market or limit order, returning
// the transaction signature.
func PlaceOrder(
	ctx context.Context,
	client interfaces.ITradingClient,
	accountMap interfaces.IAccountMap,
	subaccountID uint16,
	marketIndex int,
	size string,
	direction string,
	orderType string,
	price string,
	log *logger.Logger,
) (string, error) {
	sizeDec, err := parsePositiveDecimal(size)
	if err != nil {
		return "", helpers.InvalidInputError("order size must be a positive number, got %q", size)
	}

	if direction != models.DirectionLong && direction != models.DirectionShort {
		return "", helpers.InvalidInputError("order direction must be LONG or SHORT, got %q", direction)
	}

	params := models.MOrderParams{
		MarketIndex:     marketIndex,
		Direction:       direction,
		BaseAssetAmount: ToBaseAmount(sizeDec),
		SubAccountID:    subaccountID,
	}

	switch orderType {
	case models.OrderTypeMarket:
		params.OrderType = models.OrderTypeMarket
	case models.OrderTypeLimit:
		priceDec, err := parsePositiveDecimal(price)
		if err != nil {
			return "", helpers.InvalidInputError("limit orders require a positive price, got %q", price)
		}
		params.OrderType = models.OrderTypeLimit
		params.Price = ToPriceAmount(priceDec)
	default:
		return "", helpers.InvalidInputError("order type must be MARKET or LIMIT, got %q", orderType)
	}

	if _, err := derivation.FindRecordBySubaccountID(accountMap, subaccountID, log); err != nil {
		return "", err
	}

	txSig, err := client.PlaceOrder(ctx, params)
	if err != nil {
		return "", helpers.SubmissionError(err, "order rejected")
	}

	log.Info("Placed %s %s order on market %d for subaccount %d: %s", direction, params.OrderType, marketIndex, subaccountID, txSig)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// PlaceTriggerOrder submits a take-profit or stop-loss: a reduce-only
// trigger-market order in the offsetting direction of the position.
// takeProfit selects the trigger side (TP: above for longs, SL: below).
func PlaceTriggerOrder(
	ctx context.Context,
	client interfaces.ITradingClient,
	accountMap interfaces.IAccountMap,
	subaccountID uint16,
	marketIndex int,
	size string,
	positionDirection string,
	triggerPrice string,
	takeProfit bool,
	log *logger.Logger,
) (string, error) {
	sizeDec, err := parsePositiveDecimal(size)
	if err != nil {
		return "", helpers.InvalidInputError("order size must be a positive number, got %q", size)
	}

	triggerDec, err := parsePositiveDecimal(triggerPrice)
	if err != nil {
		return "", helpers.InvalidInputError("trigger price must be a positive number, got %q", triggerPrice)
	}

	if positionDirection != models.DirectionLong && positionDirection != models.DirectionShort {
		return "", helpers.InvalidInputError("position direction must be LONG or SHORT, got %q", positionDirection)
	}

	if _, err := derivation.FindRecordBySubaccountID(accountMap, subaccountID, log); err != nil {
		return "", err
	}

	// The closing order runs opposite to the position.
	closeDirection := models.DirectionShort
	if positionDirection == models.DirectionShort {
		closeDirection = models.DirectionLong
	}

	// TP triggers when price moves in the position's favor, SL against it.
	condition := models.TriggerBelow
	if takeProfit == (positionDirection == models.DirectionLong) {
		condition = models.TriggerAbove
	}

	params := models.MOrderParams{
		MarketIndex:      marketIndex,
		Direction:        closeDirection,
		OrderType:        models.OrderTypeTriggerMarket,
		BaseAssetAmount:  ToBaseAmount(sizeDec),
		TriggerPrice:     ToPriceAmount(triggerDec),
		TriggerCondition: condition,
		ReduceOnly:       true,
		SubAccountID:     subaccountID,
	}

	txSig, err := client.PlaceOrder(ctx, params)
	if err != nil {
		return "", helpers.SubmissionError(err, "trigger order rejected")
	}

	return txSig, nil
}

// -----------------------------------------------------------------------------

// DepositFunds validates and submits a collateral deposit. When the wallet
// has no user account yet, the protocol requires the one-time bootstrap
// first: initialize-user-stats -> initialize-user -> subscribe -> deposit.
func DepositFunds(
	ctx context.Context,
	client interfaces.ITradingClient,
	accountMap interfaces.IAccountMap,
	subaccountID uint16,
	marketIndex int,
	amount string,
	log *logger.Logger,
) (string, error) {
	amountFixed, err := validateCollateral(marketIndex, amount)
	if err != nil {
		return "", err
	}

	if _, err := derivation.FindRecordBySubaccountID(accountMap, subaccountID, log); err != nil {
		return "", err
	}

	if err := bootstrapUserAccount(ctx, client, log); err != nil {
		return "", err
	}

	ata, err := client.GetAssociatedTokenAccount(ctx, marketIndex)
	if err != nil {
		return "", helpers.SubmissionError(err, "failed to resolve associated token account")
	}

	txSig, err := client.Deposit(ctx, amountFixed, marketIndex, ata, subaccountID, false)
	if err != nil {
		return "", helpers.SubmissionError(err, "deposit rejected")
	}

	log.Info("Deposit successful: %s", txSig)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// WithdrawFunds validates and submits a collateral withdrawal. No bootstrap
// step: withdrawing presupposes an existing account.
func WithdrawFunds(
	ctx context.Context,
	client interfaces.ITradingClient,
	accountMap interfaces.IAccountMap,
	subaccountID uint16,
	marketIndex int,
	amount string,
	log *logger.Logger,
) (string, error) {
	amountFixed, err := validateCollateral(marketIndex, amount)
	if err != nil {
		return "", err
	}

	if _, err := derivation.FindRecordBySubaccountID(accountMap, subaccountID, log); err != nil {
		return "", err
	}

	ata, err := client.GetAssociatedTokenAccount(ctx, marketIndex)
	if err != nil {
		return "", helpers.SubmissionError(err, "failed to resolve associated token account")
	}

	txSig, err := client.Withdraw(ctx, amountFixed, marketIndex, ata, subaccountID, false)
	if err != nil {
		return "", helpers.SubmissionError(err, "withdrawal rejected")
	}

	log.Info("Withdrawal successful: %s", txSig)
	return txSig, nil
}

// -----------------------------------------------------------------------------

// bootstrapUserAccount performs the protocol-required account creation
// before a first deposit. Ordering matters and must be preserved.
func bootstrapUserAccount(ctx context.Context, client interfaces.ITradingClient, log *logger.Logger) error {
	exists, err := client.UserAccountExists(ctx)
	if err != nil {
		log.Warning("Could not check user account, assuming it does not exist: %v", err)
	}
	if exists {
		return nil
	}

	statsExists, err := client.UserStatsAccountExists(ctx)
	if err != nil {
		log.Warning("Could not check user stats account, assuming it does not exist: %v", err)
	}

	if !statsExists {
		log.Info("Initializing user account...")
		if _, err := client.InitializeUserAccount(ctx, 0, bootstrapAccountName); err != nil {
			return helpers.InitializationError(err, "failed to initialize user account")
		}
	}

	if err := client.Subscribe(ctx); err != nil {
		return helpers.InitializationError(err, "failed to subscribe to user account")
	}

	return nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// validateCollateral checks the deposit/withdraw preconditions and returns
// the fixed-point amount string.
func validateCollateral(marketIndex int, amount string) (string, error) {
	if marketIndex != models.MarketIndexUSDC && marketIndex != models.MarketIndexSOL {
		return "", helpers.InvalidInputError("only USDC (0) and SOL (1) are supported, got market %d", marketIndex)
	}

	amountDec, err := parsePositiveDecimal(amount)
	if err != nil {
		return "", helpers.InvalidInputError("amount must be a positive number, got %q", amount)
	}

	return ToQuoteAmount(amountDec), nil
}

// -----------------------------------------------------------------------------

func parsePositiveDecimal(value string) (decimal.Decimal, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if !dec.IsPositive() {
		return decimal.Zero, helpers.ErrInvalidInput
	}
	return dec, nil
}
