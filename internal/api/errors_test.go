package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thallipoli/internal/kitchen"
)

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, fmt.Errorf("store: %w", errors.New("failed to write orders table")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal", body.Kind)
	assert.NotContains(t, body.Error, "store:")
	assert.NotContains(t, body.Error, "orders table")

	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Error(), "failed to write orders table")
}

func TestRespondErrorKeepsKitchenMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &kitchen.Error{Kind: kitchen.KindOutOfStock, Message: "Insufficient stock for Fries. Missing: Frying Oil", Missing: []string{"Frying Oil"}})

	assert.Equal(t, http.StatusConflict, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient stock for Fries. Missing: Frying Oil", body.Error)
	assert.Equal(t, []string{"Frying Oil"}, body.Missing)
}
