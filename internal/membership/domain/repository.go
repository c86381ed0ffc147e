package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByOrgYear(ctx context.Context, orgID snowflake.ID, year int) (*Membership, error)
	Create(ctx context.Context, membership Membership) (*Membership, error)
	// ListOrgsMissingYear returns the ids of active organisations that have
	// no membership row for the given year.
	ListOrgsMissingYear(ctx context.Context, year int) ([]snowflake.ID, error)
}

// Service maintains the one-row-per-organisation-per-year invariant.
type Service interface {
	// EnsureYear creates missing membership rows for the given year and
	// returns how many were (or would be) created. With dryRun set, nothing
	// is written.
	EnsureYear(ctx context.Context, year int, dryRun bool) (int, error)
}

var ErrNotFound = errors.New("membership_not_found")
