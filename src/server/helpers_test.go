package server

import (
	"errors"
	"net/http/httptest"
	"testing"

	"drift-observer/src/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestParseSubaccountID(t *testing.T) {
	id, err := parseSubaccountID("3")
	require.NoError(t, err)
	assert.Equal(t, uint16(3), id)

	_, err = parseSubaccountID("abc")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)

	_, err = parseSubaccountID("-1")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)

	// Values past uint16 are rejected, not truncated.
	_, err = parseSubaccountID("70000")
	assert.ErrorIs(t, err, helpers.ErrInvalidInput)
}

// -----------------------------------------------------------------------------

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 25, parseLimit("", 25))
	assert.Equal(t, 10, parseLimit("10", 25))
	assert.Equal(t, 25, parseLimit("0", 25))
	assert.Equal(t, 25, parseLimit("-5", 25))
	assert.Equal(t, 25, parseLimit("ten", 25))
}

// -----------------------------------------------------------------------------

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", helpers.NotFoundError("subaccount 9"), 404},
		{"invalid input", helpers.InvalidInputError("count must be at least 2"), 400},
		{"submission failed", helpers.SubmissionError(errors.New("gateway timeout"), "order rejected"), 502},
		{"unclassified", errors.New("boom"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			writeError(c, tc.err)

			assert.Equal(t, tc.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), "error")
		})
	}
}
