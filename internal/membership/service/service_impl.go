package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/civicroom/memberdesk/internal/membership/domain"
)

type service struct {
	db   *gorm.DB
	repo domain.Repository
	log  *zap.Logger
}

func NewService(db *gorm.DB, repo domain.Repository, log *zap.Logger) domain.Service {
	return &service{
		db:   db,
		repo: repo,
		log:  log.Named("membership"),
	}
}

func (s *service) EnsureYear(ctx context.Context, year int, dryRun bool) (int, error) {
	missing, err := s.repo.ListOrgsMissingYear(ctx, year)
	if err != nil {
		return 0, err
	}
	if dryRun || len(missing) == 0 {
		s.log.Info("membership year check",
			zap.Int("year", year),
			zap.Int("missing", len(missing)),
			zap.Bool("dry_run", dryRun),
		)
		return len(missing), nil
	}

	created := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, orgID := range missing {
			if _, err := repo.Create(ctx, domain.Membership{OrgID: orgID, Year: year}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("membership rows created",
		zap.Int("year", year),
		zap.Int("created", created),
	)
	return created, nil
}
