package authorization

import (
	"context"
	"errors"

	"go.uber.org/fx"
)

// Capability objects and actions enforced against the organisation domain.
const (
	ObjectContactInfo = "contact_info"

	ActionOrganisationManage = "organisation.manage"
)

type Service interface {
	// Authorize checks that the actor holds the capability on the target
	// organisation. It is a pure function of (actor, organisation, object,
	// action); a denial returns ErrForbidden.
	Authorize(ctx context.Context, actor string, orgID string, object string, action string) error
}

var (
	ErrInvalidActor        = errors.New("invalid_actor")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidObject       = errors.New("invalid_object")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrForbidden           = errors.New("forbidden")
)

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
