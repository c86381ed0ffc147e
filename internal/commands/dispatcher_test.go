package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/civicroom/memberdesk/internal/authorization"
	cidomain "github.com/civicroom/memberdesk/internal/contactinfo/domain"
	orgdomain "github.com/civicroom/memberdesk/internal/organization/domain"
	"github.com/civicroom/memberdesk/internal/push"
)

func testSession(t *testing.T) Session {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return Session{UserID: node.Generate(), ConnectionID: "conn-1"}
}

func receivedEnvelope(t *testing.T, hub *push.Hub, connectionID string) push.Envelope {
	t.Helper()
	_, backlog, err := hub.Subscribe(connectionID)
	require.NoError(t, err)
	require.Len(t, backlog, 1, "expected exactly one terminal envelope")
	return backlog[0]
}

func TestDispatchUnknownCommandPushesValidationEnvelope(t *testing.T) {
	hub := push.NewHub()
	d := NewDispatcher(zaptest.NewLogger(t), hub)
	sess := testSession(t)

	err := d.Dispatch(context.Background(), sess, Inbound{Name: "no.such.command"})
	require.NoError(t, err)

	envelope := receivedEnvelope(t, hub, sess.ConnectionID)
	assert.Equal(t, NameErrorValidation, envelope.Name)
	data, ok := envelope.Data.(ValidationData)
	require.True(t, ok)
	require.Len(t, data.Errors, 1)
	assert.Equal(t, "unknown_command", data.Errors[0].Code)
}

func TestDispatchSuccessPushesHandlerEnvelope(t *testing.T) {
	hub := push.NewHub()
	d := NewDispatcher(zaptest.NewLogger(t), hub)
	sess := testSession(t)

	d.Register("echo", func(ctx context.Context, sess Session, data json.RawMessage) (*push.Envelope, error) {
		return &push.Envelope{Name: "echo", Data: string(data)}, nil
	})

	err := d.Dispatch(context.Background(), sess, Inbound{Name: "echo", Data: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)

	envelope := receivedEnvelope(t, hub, sess.ConnectionID)
	assert.Equal(t, "echo", envelope.Name)
	assert.Equal(t, `{"a":1}`, envelope.Data)
}

func TestDispatchForbiddenPushesUnauthorizedEnvelope(t *testing.T) {
	hub := push.NewHub()
	d := NewDispatcher(zaptest.NewLogger(t), hub)
	sess := testSession(t)

	d.Register("denied", func(ctx context.Context, sess Session, data json.RawMessage) (*push.Envelope, error) {
		return nil, authorization.ErrForbidden
	})

	err := d.Dispatch(context.Background(), sess, Inbound{Name: "denied"})
	require.NoError(t, err)

	envelope := receivedEnvelope(t, hub, sess.ConnectionID)
	assert.Equal(t, NameErrorUnauthorized, envelope.Name)
	data, ok := envelope.Data.(UnauthorizedData)
	require.True(t, ok)
	assert.Equal(t, authorization.ObjectContactInfo, data.Object)
	assert.Equal(t, authorization.ActionOrganisationManage, data.Permission)
}

func TestDispatchNoOrgContextPushesUnauthorizedEnvelope(t *testing.T) {
	hub := push.NewHub()
	d := NewDispatcher(zaptest.NewLogger(t), hub)
	sess := testSession(t)

	d.Register("orphan", func(ctx context.Context, sess Session, data json.RawMessage) (*push.Envelope, error) {
		return nil, orgdomain.ErrNoContext
	})

	err := d.Dispatch(context.Background(), sess, Inbound{Name: "orphan"})
	require.NoError(t, err)

	envelope := receivedEnvelope(t, hub, sess.ConnectionID)
	assert.Equal(t, NameErrorUnauthorized, envelope.Name)
}

func TestDispatchValidationErrorCarriesFieldErrors(t *testing.T) {
	hub := push.NewHub()
	d := NewDispatcher(zaptest.NewLogger(t), hub)
	sess := testSession(t)

	d.Register("invalid", func(ctx context.Context, sess Session, data json.RawMessage) (*push.Envelope, error) {
		return nil, &cidomain.ValidationErrors{Errors: []cidomain.FieldError{
			{Field: "generic_email", Code: "invalid_email", Message: "enter a valid email address"},
		}}
	})

	err := d.Dispatch(context.Background(), sess, Inbound{Name: "invalid"})
	require.NoError(t, err)

	envelope := receivedEnvelope(t, hub, sess.ConnectionID)
	assert.Equal(t, NameErrorValidation, envelope.Name)
	data, ok := envelope.Data.(ValidationData)
	require.True(t, ok)
	require.Len(t, data.Errors, 1)
	assert.Equal(t, "generic_email", data.Errors[0].Field)
}

func TestDispatchInternalErrorPushesOpaqueEnvelope(t *testing.T) {
	hub := push.NewHub()
	d := NewDispatcher(zaptest.NewLogger(t), hub)
	sess := testSession(t)

	d.Register("broken", func(ctx context.Context, sess Session, data json.RawMessage) (*push.Envelope, error) {
		return nil, errors.New("db gone")
	})

	err := d.Dispatch(context.Background(), sess, Inbound{Name: "broken"})
	require.NoError(t, err)

	envelope := receivedEnvelope(t, hub, sess.ConnectionID)
	assert.Equal(t, NameErrorInternal, envelope.Name)
	assert.Nil(t, envelope.Data)
}
