package server

import (
	"errors"
	"strconv"

	"drift-observer/src/helpers"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Error mapping: the shared error taxonomy decides the HTTP status.
//   not found          -> 404
//   invalid input      -> 400
//   submission failed  -> 502 (the gateway rejected the transaction)
//   everything else    -> 500
// -----------------------------------------------------------------------------

func writeError(c *gin.Context, err error) {
	status := 500
	switch {
	case errors.Is(err, helpers.ErrNotFound):
		status = 404
	case errors.Is(err, helpers.ErrInvalidInput):
		status = 400
	case errors.Is(err, helpers.ErrSubmissionFailed):
		status = 502
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

func writeBindError(c *gin.Context, err error) {
	c.JSON(400, gin.H{"error": "invalid request body: " + err.Error()})
}

// -----------------------------------------------------------------------------

func parseSubaccountID(raw string) (uint16, error) {
	id, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, helpers.InvalidInputError("subaccount id must be a small non-negative integer, got %q", raw)
	}
	return uint16(id), nil
}

// -----------------------------------------------------------------------------

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
