package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/civicroom/memberdesk/internal/clock"
	"github.com/civicroom/memberdesk/internal/contactinfo/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db       *gorm.DB
	repo     domain.Repository
	clock    clock.Clock
	validate *validator.Validate
	log      *zap.Logger
}

func NewService(db *gorm.DB, repo domain.Repository, clk clock.Clock, log *zap.Logger) domain.Service {
	return &service{
		db:       db,
		repo:     repo,
		clock:    clk,
		validate: validator.New(),
		log:      log.Named("contactinfo.service"),
	}
}

func (s *service) Get(ctx context.Context, orgID snowflake.ID) (*domain.Response, error) {
	record, err := s.repo.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Missing record is a representable state, not a fault.
			return domain.DefaultResponse(orgID), nil
		}
		return nil, err
	}
	return domain.NewResponse(record), nil
}

func (s *service) Set(ctx context.Context, orgID snowflake.ID, req domain.SetRequest) (*domain.Response, error) {
	normalized, err := req.Normalize(s.validate)
	if err != nil {
		return nil, err
	}

	record := domain.ContactInfo{
		OrgID:        orgID,
		Text:         normalized.Text,
		GenericEmail: normalized.GenericEmail,
		InvoiceEmail: normalized.InvoiceEmail,
		InvoiceInfo:  normalized.InvoiceInfo,
		Modified:     s.clock.Now(),
		// A manager confirming the data resolves the verification cycle even
		// when nothing changed.
		RequiresCheck: false,
	}

	var stored *domain.ContactInfo
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		stored, txErr = s.repo.WithTx(tx).Upsert(ctx, record)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("contact info updated",
		zap.String("org_id", orgID.String()),
		zap.String("contact_info_id", stored.ID.String()),
	)
	return domain.NewResponse(stored), nil
}
