package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/middleware"
	"github.com/courseboard/api/internal/notify"
)

// PushHandler issues push relay tickets to signed-in users.
type PushHandler struct {
	push *notify.PushClient
}

// NewPushHandler creates a new PushHandler. A nil push client means the
// relay is disabled.
func NewPushHandler(push *notify.PushClient) *PushHandler {
	return &PushHandler{push: push}
}

// Ticket returns a one-time socket login ticket for the current user.
func (h *PushHandler) Ticket(c *gin.Context) {
	if h.push == nil {
		apierrors.ServiceUnavailable(c, "Push relay is not configured")
		return
	}

	user := middleware.GetUser(c)
	ticket, err := h.push.GetTicket(user)
	if err != nil {
		apierrors.ServiceUnavailable(c, "Push relay did not issue a ticket")
		return
	}
	c.JSON(http.StatusOK, ticket)
}
