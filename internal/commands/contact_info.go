package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/civicroom/memberdesk/internal/authorization"
	cidomain "github.com/civicroom/memberdesk/internal/contactinfo/domain"
	orgdomain "github.com/civicroom/memberdesk/internal/organization/domain"
	"github.com/civicroom/memberdesk/internal/push"
)

// ContactInfoHandlers serves the contact_info.get / contact_info.set pair.
// The context organisation is always the caller's own: a session can never
// address another organisation through this channel.
type ContactInfoHandlers struct {
	orgRepo orgdomain.Repository
	svc     cidomain.Service
	authz   authorization.Service
}

func NewContactInfoHandlers(orgRepo orgdomain.Repository, svc cidomain.Service, authz authorization.Service) *ContactInfoHandlers {
	return &ContactInfoHandlers{
		orgRepo: orgRepo,
		svc:     svc,
		authz:   authz,
	}
}

func RegisterContactInfo(d *Dispatcher, h *ContactInfoHandlers) {
	d.Register(NameContactInfoGet, h.Get)
	d.Register(NameContactInfoSet, h.Set)
}

func (h *ContactInfoHandlers) Get(ctx context.Context, sess Session, _ json.RawMessage) (*push.Envelope, error) {
	org, err := h.authorizedContext(ctx, sess)
	if err != nil {
		return nil, err
	}

	// Read-only: the response may be pushed without waiting on any commit.
	response, err := h.svc.Get(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	return &push.Envelope{Name: NameContactInfoGet, Data: response}, nil
}

func (h *ContactInfoHandlers) Set(ctx context.Context, sess Session, data json.RawMessage) (*push.Envelope, error) {
	org, err := h.authorizedContext(ctx, sess)
	if err != nil {
		return nil, err
	}

	var req cidomain.SetRequest
	if len(data) > 0 {
		// Unknown extra fields are tolerated; absent fields stay empty.
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, &cidomain.ValidationErrors{Errors: []cidomain.FieldError{{
				Field:   "data",
				Code:    "invalid_payload",
				Message: "payload must be a JSON object",
			}}}
		}
	}

	// Set commits before the envelope is built, so the caller never observes
	// a response ahead of the durable write.
	response, err := h.svc.Set(ctx, org.ID, req)
	if err != nil {
		return nil, err
	}
	return &push.Envelope{Name: NameContactInfoGet, Data: response}, nil
}

func (h *ContactInfoHandlers) authorizedContext(ctx context.Context, sess Session) (*orgdomain.Organization, error) {
	org, err := h.orgRepo.MemberOrg(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	actor := fmt.Sprintf("user:%s", sess.UserID.String())
	if err := h.authz.Authorize(ctx, actor, org.ID.String(), authorization.ObjectContactInfo, authorization.ActionOrganisationManage); err != nil {
		return nil, err
	}
	return org, nil
}
