package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicroom/memberdesk/internal/push"
)

// StreamEvents serves the push channel as a server-sent event stream.
// Envelopes published while the connection was away are replayed first.
func (s *Server) StreamEvents(c *gin.Context) {
	connID := connectionID(c)
	if connID == "" {
		AbortWithError(c, newValidationError("connection_id", "required", "connection id is required"))
		return
	}

	subscription, backlog, err := s.hub.Subscribe(connID)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer subscription.Close()

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}

	for _, envelope := range backlog {
		if err := writeEnvelope(writer, envelope); err != nil {
			return
		}
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case envelope := <-subscription.Events():
			if err := writeEnvelope(writer, envelope); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEnvelope(w io.Writer, envelope push.Envelope) error {
	data, err := json.Marshal(envelope.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", envelope.Name, data)
	return err
}
