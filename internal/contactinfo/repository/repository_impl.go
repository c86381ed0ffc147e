package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicroom/memberdesk/internal/contactinfo/domain"
	"github.com/civicroom/memberdesk/pkg/db"
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

func (r *repository) Get(ctx context.Context, orgID snowflake.ID) (*domain.ContactInfo, error) {
	var record domain.ContactInfo
	err := r.db.WithContext(ctx).First(&record, "org_id = ?", orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.ContactInfo, error) {
	var record domain.ContactInfo
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) Upsert(ctx context.Context, record domain.ContactInfo) (*domain.ContactInfo, error) {
	existing, err := r.Get(ctx, record.OrgID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		record.ID = r.genID.Generate()
		createErr := r.db.WithContext(ctx).Create(&record).Error
		if createErr == nil {
			return &record, nil
		}
		if !db.IsDuplicateKeyErr(createErr) {
			return nil, createErr
		}
		// A rival first-time write landed between the lookup and the
		// insert. The caller's fields still win: update the rival's row.
		existing, err = r.Get(ctx, record.OrgID)
		if err != nil {
			return nil, err
		}
	}

	err = r.db.WithContext(ctx).
		Model(&domain.ContactInfo{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"text":           record.Text,
			"generic_email":  record.GenericEmail,
			"invoice_email":  record.InvoiceEmail,
			"invoice_info":   record.InvoiceInfo,
			"modified":       record.Modified,
			"requires_check": record.RequiresCheck,
		}).Error
	if err != nil {
		return nil, err
	}
	record.ID = existing.ID
	return &record, nil
}

func (r *repository) FlagStale(ctx context.Context, modifiedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE contact_infos
		 SET requires_check = ?
		 WHERE requires_check = ?
		   AND org_id IN (SELECT id FROM organizations WHERE active = ?)
		   AND (modified < ? OR invoice_email = '' OR generic_email = '')`,
		true,
		false,
		true,
		modifiedBefore,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) ListDue(ctx context.Context, modifiedBefore time.Time) ([]domain.DueRecord, error) {
	var rows []domain.DueRecord
	err := r.db.WithContext(ctx).Raw(
		`SELECT c.id, c.org_id, o.title AS org_title, o.host AS org_host,
		        c.generic_email, c.invoice_email
		 FROM contact_infos c
		 JOIN organizations o ON o.id = c.org_id
		 WHERE c.requires_check = ? AND o.active = ? AND c.modified < ?
		 ORDER BY c.id`,
		true,
		true,
		modifiedBefore,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
