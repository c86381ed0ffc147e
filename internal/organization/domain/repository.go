package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleManager = "MANAGER"
	RoleMember  = "MEMBER"
)

// Manager is a user holding the organisation-manager role, as needed by the
// notification flow.
type Manager struct {
	UserID    snowflake.ID
	FirstName string
	LastName  string
	Username  string
	Email     string
}

func (m Manager) FullName() string {
	name := m.FirstName
	if m.LastName != "" {
		if name != "" {
			name += " "
		}
		name += m.LastName
	}
	if name == "" {
		return m.Username
	}
	return name
}

type Repository interface {
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	// MemberOrg resolves the organisation context of a user. A user belongs
	// to at most one organisation on this platform.
	MemberOrg(ctx context.Context, userID snowflake.ID) (*Organization, error)
	RoleOf(ctx context.Context, orgID, userID snowflake.ID) (string, error)
	// ListManagers returns the users holding the manager role for an
	// organisation.
	ListManagers(ctx context.Context, orgID snowflake.ID) ([]Manager, error)
}

var (
	ErrNotFound  = errors.New("organization_not_found")
	ErrNoContext = errors.New("no_organization_context")
)
