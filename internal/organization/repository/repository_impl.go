package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/civicroom/memberdesk/internal/organization/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) MemberOrg(ctx context.Context, userID snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Raw(
		`SELECT o.*
		 FROM organizations o
		 JOIN organization_members m ON m.org_id = o.id
		 WHERE m.user_id = ?
		 ORDER BY m.created_at ASC
		 LIMIT 1`,
		userID,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, domain.ErrNoContext
	}
	return &org, nil
}

func (r *repository) RoleOf(ctx context.Context, orgID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM organization_members
		 WHERE org_id = ? AND user_id = ?
		 LIMIT 1`,
		orgID,
		userID,
	).Scan(&row).Error
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(row.Role), nil
}

func (r *repository) ListManagers(ctx context.Context, orgID snowflake.ID) ([]domain.Manager, error) {
	var managers []domain.Manager
	err := r.db.WithContext(ctx).Raw(
		`SELECT u.id AS user_id, u.first_name, u.last_name, u.username, u.email
		 FROM organization_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.org_id = ? AND m.role = ?
		 ORDER BY u.id`,
		orgID,
		domain.RoleManager,
	).Scan(&managers).Error
	if err != nil {
		return nil, err
	}
	return managers, nil
}
