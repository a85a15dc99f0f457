package handler

import (
	"errors"
	"net/http"
	"strconv"

	"socialite/backend/internal/chat"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves conversation history.
type MessageHandler struct {
	directory *chat.Directory
	log       *chat.Log
}

func NewMessageHandler(directory *chat.Directory, log *chat.Log) *MessageHandler {
	return &MessageHandler{directory: directory, log: log}
}

// GetConversationMessages godoc
// @Summary      Get conversation history
// @Description  Returns every message between the authenticated user and another user, in creation order.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Other User ID"
// @Success      200  {array}   models.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "No conversation with this user yet"
// @Router       /conversations/with/{id}/messages [get]
func (h *MessageHandler) GetConversationMessages(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	otherUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	conv, err := h.directory.Lookup(viewerID.(uint), uint(otherUserID))
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No conversation with this user", Reason: "conversation_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up conversation"})
		return
	}

	msgs, err := h.log.History(conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, msgs)
}
