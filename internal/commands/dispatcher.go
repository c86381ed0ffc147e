package commands

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/civicroom/memberdesk/internal/authorization"
	cidomain "github.com/civicroom/memberdesk/internal/contactinfo/domain"
	orgdomain "github.com/civicroom/memberdesk/internal/organization/domain"
	"github.com/civicroom/memberdesk/internal/push"
	"go.uber.org/zap"
)

// HandlerFunc executes one command on behalf of a session and returns the
// success envelope to push.
type HandlerFunc func(ctx context.Context, sess Session, data json.RawMessage) (*push.Envelope, error)

// Dispatcher routes inbound envelopes to their handlers and guarantees that
// every command pushes exactly one terminal envelope, success or error, to
// the originating connection.
type Dispatcher struct {
	log      *zap.Logger
	hub      *push.Hub
	handlers map[string]HandlerFunc
}

func NewDispatcher(log *zap.Logger, hub *push.Hub) *Dispatcher {
	return &Dispatcher{
		log:      log.Named("commands"),
		hub:      hub,
		handlers: make(map[string]HandlerFunc),
	}
}

func (d *Dispatcher) Register(name string, handler HandlerFunc) {
	d.handlers[name] = handler
}

// Dispatch runs the command and pushes its terminal envelope. The returned
// error reflects internal faults only; protocol-level denials and validation
// failures are reported to the caller, not the transport.
func (d *Dispatcher) Dispatch(ctx context.Context, sess Session, msg Inbound) error {
	handler, ok := d.handlers[msg.Name]
	if !ok {
		d.hub.Publish(sess.ConnectionID, push.Envelope{
			Name: NameErrorValidation,
			Data: ValidationData{Errors: []FieldError{{
				Field:   "name",
				Code:    "unknown_command",
				Message: "unknown command name",
			}}},
		})
		return nil
	}

	response, err := handler(ctx, sess, msg.Data)
	if err != nil {
		d.hub.Publish(sess.ConnectionID, d.errorEnvelope(sess, msg, err))
		return nil
	}

	d.hub.Publish(sess.ConnectionID, *response)
	return nil
}

func (d *Dispatcher) errorEnvelope(sess Session, msg Inbound, err error) push.Envelope {
	var vErr *cidomain.ValidationErrors
	if errors.As(err, &vErr) {
		fields := make([]FieldError, 0, len(vErr.Errors))
		for _, fe := range vErr.Errors {
			fields = append(fields, FieldError{Field: fe.Field, Code: fe.Code, Message: fe.Message})
		}
		return push.Envelope{
			Name: NameErrorValidation,
			Data: ValidationData{Errors: fields},
		}
	}

	if errors.Is(err, authorization.ErrForbidden) || errors.Is(err, orgdomain.ErrNoContext) {
		d.log.Debug("command denied",
			zap.String("command", msg.Name),
			zap.String("user_id", sess.UserID.String()),
		)
		return push.Envelope{
			Name: NameErrorUnauthorized,
			Data: UnauthorizedData{
				Object:     authorization.ObjectContactInfo,
				Permission: authorization.ActionOrganisationManage,
			},
		}
	}

	d.log.Error("command failed",
		zap.String("command", msg.Name),
		zap.String("user_id", sess.UserID.String()),
		zap.Error(err),
	)
	return push.Envelope{Name: NameErrorInternal}
}
