package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/civicroom/memberdesk/internal/membership/domain"
	"gorm.io/gorm"
)

type repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewRepository(db *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &repository{db: db, genID: genID}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx, genID: r.genID}
}

func (r *repository) GetByOrgYear(ctx context.Context, orgID snowflake.ID, year int) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.WithContext(ctx).First(&membership, "org_id = ? AND year = ?", orgID, year).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) Create(ctx context.Context, membership domain.Membership) (*domain.Membership, error) {
	if membership.ID == 0 {
		membership.ID = r.genID.Generate()
	}
	if err := r.db.WithContext(ctx).Create(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) ListOrgsMissingYear(ctx context.Context, year int) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).Raw(
		`SELECT o.id
		 FROM organizations o
		 WHERE o.active = ?
		   AND NOT EXISTS (
		       SELECT 1 FROM memberships m
		       WHERE m.org_id = o.id AND m.year = ?
		   )
		 ORDER BY o.id`,
		true,
		year,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
