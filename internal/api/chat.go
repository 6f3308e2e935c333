package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thallipoli/internal/models"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID uint   `json:"conversationId"`
}

// Chat answers one message through the assistant
func (k *KitchenAPI) Chat(c *gin.Context) {
	if k.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody{Error: "The assistant is not configured", Kind: "unavailable"})
		return
	}
	var req chatRequest
	if !bind(c, &req) {
		return
	}
	reply, err := k.Assistant.Chat(c.Request.Context(), req.ConversationID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (k *KitchenAPI) ListConversations(c *gin.Context) {
	convs, err := k.Engine.Store().ListConversations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	c.JSON(http.StatusOK, convs)
}

func (k *KitchenAPI) GetConversationMessages(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := k.Engine.Store().GetConversation(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	msgs, err := k.Engine.Store().ListMessages(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

func (k *KitchenAPI) DeleteConversation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := k.Engine.Store().DeleteConversation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
