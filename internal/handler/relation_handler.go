package handler

import (
	"errors"
	"net/http"
	"strconv"

	"socialite/backend/internal/models"
	"socialite/backend/internal/relationship"

	"github.com/gin-gonic/gin"
)

// RelationHandler exposes the friend-request state machine over HTTP.
type RelationHandler struct {
	relations *relationship.Service
}

func NewRelationHandler(relations *relationship.Service) *RelationHandler {
	return &RelationHandler{relations: relations}
}

// SendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Request sent successfully"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Already friends or request already sent"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/request [post]
func (h *RelationHandler) SendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	if err := h.relations.SendRequest(viewerID.(uint), uint(targetUserID)); err != nil {
		writeRelationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Request sent successfully"})
}

// AcceptRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a friend request from another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request accepted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Requesting user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/accept [post]
func (h *RelationHandler) AcceptRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requestingUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requesting user ID"})
		return
	}

	if err := h.relations.AcceptRequest(viewerID.(uint), uint(requestingUserID)); err != nil {
		writeRelationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// RemoveRelation godoc
// @Summary      Remove relation
// @Description  Unfriends a user, cancels a sent request, or declines a received one.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Relation removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/remove [post]
func (h *RelationHandler) RemoveRelation(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	if err := h.relations.RemoveOrDecline(viewerID.(uint), uint(targetUserID)); err != nil {
		writeRelationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Relation removed"})
}

// GetRelations godoc
// @Summary      Get user relations
// @Description  Fetches the authenticated user's friends or pending requests based on status and direction.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status (pending, accepted)" default(accepted)
// @Param        direction query     string  false  "Filter by direction for pending requests (incoming, outgoing)"
// @Success      200       {array}   PublicUserResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Router       /users/me/relations [get]
func (h *RelationHandler) GetRelations(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	statusFilter := c.DefaultQuery("status", string(models.StatusAccepted))
	directionFilter := c.Query("direction")

	var (
		users []models.User
		err   error
	)
	switch models.RelationStatus(statusFilter) {
	case models.StatusAccepted:
		users, err = h.relations.Friends(viewerID.(uint))
	case models.StatusPending:
		switch directionFilter {
		case "incoming":
			users, err = h.relations.RequestsReceived(viewerID.(uint))
		case "outgoing":
			users, err = h.relations.RequestsSent(viewerID.(uint))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "A 'direction' query parameter (incoming or outgoing) is required for pending relations."})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch relations"})
		return
	}

	userResponses := make([]PublicUserResponse, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, PublicUserResponse{
			ID:       user.ID,
			Username: user.Username,
		})
	}

	c.JSON(http.StatusOK, userResponses)
}

// writeRelationError maps state-machine failures to HTTP statuses with
// machine-readable reason codes.
func writeRelationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, relationship.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found", Reason: "user_not_found"})
	case errors.Is(err, relationship.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Cannot send a request to yourself", Reason: "self_request"})
	case errors.Is(err, relationship.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "You are already friends", Reason: "already_friends"})
	case errors.Is(err, relationship.ErrRequestAlreadySent):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "You have already sent a request", Reason: "request_already_sent"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update relation", Reason: "store_failure"})
	}
}
