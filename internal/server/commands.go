package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicroom/memberdesk/internal/commands"
)

// HandleCommand accepts a command envelope and dispatches it. The response
// body only acknowledges receipt; the command's result arrives as an
// envelope on the caller's event stream.
func (s *Server) HandleCommand(c *gin.Context) {
	userID, ok := s.sessionUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	connID := connectionID(c)
	if connID == "" {
		AbortWithError(c, newValidationError("connection_id", "required", "connection id is required"))
		return
	}

	var msg commands.Inbound
	if err := c.ShouldBindJSON(&msg); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_payload", "request body must be a JSON envelope"))
		return
	}
	if strings.TrimSpace(msg.Name) == "" {
		AbortWithError(c, newValidationError("name", "required", "command name is required"))
		return
	}

	sess := commands.Session{UserID: userID, ConnectionID: connID}
	if err := s.dispatcher.Dispatch(c.Request.Context(), sess, msg); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
