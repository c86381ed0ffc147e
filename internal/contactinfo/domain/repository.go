package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// DueRecord is a flagged contact record joined with its organisation, as
// selected by the re-notification sweep.
type DueRecord struct {
	ID           snowflake.ID
	OrgID        snowflake.ID
	OrgTitle     string
	OrgHost      string
	GenericEmail string
	InvoiceEmail string
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, orgID snowflake.ID) (*ContactInfo, error)
	GetByID(ctx context.Context, id snowflake.ID) (*ContactInfo, error)
	// Upsert replaces the editable fields of the organisation's record,
	// creating it when absent. Modified and RequiresCheck are taken from the
	// passed value.
	Upsert(ctx context.Context, record ContactInfo) (*ContactInfo, error)
	// FlagStale marks unflagged records of active organisations whose data is
	// stale or incomplete. Returns the number of rows updated.
	FlagStale(ctx context.Context, modifiedBefore time.Time) (int64, error)
	// ListDue returns flagged records of active organisations last modified
	// before the cool-down cutoff.
	ListDue(ctx context.Context, modifiedBefore time.Time) ([]DueRecord, error)
}

var ErrNotFound = errors.New("contact_info_not_found")
