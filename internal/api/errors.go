package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"thallipoli/internal/assistant"
	"thallipoli/internal/kitchen"
	"thallipoli/internal/store"
)

// errorBody is the JSON shape of every failed request
type errorBody struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	Missing []string `json:"missing,omitempty"`
}

const kindInternal = string(kitchen.KindInternal)

func statusFor(kind kitchen.ErrorKind) int {
	switch kind {
	case kitchen.KindNotFound:
		return http.StatusNotFound
	case kitchen.KindOutOfStock:
		return http.StatusConflict
	case kitchen.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case kitchen.KindInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	var kerr *kitchen.Error
	switch {
	case errors.As(err, &kerr):
		c.JSON(statusFor(kerr.Kind), errorBody{Error: kerr.Message, Kind: string(kerr.Kind), Missing: kerr.Missing})
	case errors.Is(err, assistant.ErrEmptyMessage):
		badRequest(c, "Message is required")
	case errors.Is(err, assistant.ErrConversationNotFound), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: err.Error(), Kind: string(kitchen.KindNotFound)})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody{Error: "Something went wrong, please try again", Kind: kindInternal})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: message, Kind: string(kitchen.KindInvalidInput)})
}
