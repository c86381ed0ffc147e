// Package seed bootstraps a demo organisation so a fresh development
// install is usable immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	identitydomain "github.com/civicroom/memberdesk/internal/identity/domain"
	identityrepo "github.com/civicroom/memberdesk/internal/identity/repository"
	orgdomain "github.com/civicroom/memberdesk/internal/organization/domain"
)

const (
	demoOrgTitle = "Demo Society"
	demoOrgHost  = "demo.localhost"

	demoManagerUsername = "demo-manager"
	demoManagerEmail    = "manager@demo.localhost"

	// DemoSessionToken authenticates the demo manager in development.
	DemoSessionToken = "dev-token"
)

// EnsureDemoOrg creates the demo organisation, its manager and a login
// session when absent. Safe to run on every startup.
func EnsureDemoOrg(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(9)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}
		user, err := ensureManagerTx(ctx, tx, node, org.ID)
		if err != nil {
			return err
		}
		return ensureSessionTx(ctx, tx, node, user.ID)
	})
}

func ensureOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := tx.WithContext(ctx).First(&org, "host = ?", demoOrgHost).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = orgdomain.Organization{
		ID:     node.Generate(),
		Title:  demoOrgTitle,
		Slug:   slug.Make(demoOrgTitle),
		Host:   demoOrgHost,
		Active: true,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureManagerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (*identitydomain.User, error) {
	var user identitydomain.User
	err := tx.WithContext(ctx).First(&user, "username = ?", demoManagerUsername).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = identitydomain.User{
			ID:        node.Generate(),
			Username:  demoManagerUsername,
			FirstName: "Demo",
			LastName:  "Manager",
			Email:     demoManagerEmail,
		}
		if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	}

	var member orgdomain.OrganizationMember
	err = tx.WithContext(ctx).First(&member, "org_id = ? AND user_id = ?", orgID, user.ID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member = orgdomain.OrganizationMember{
		ID:     node.Generate(),
		OrgID:  orgID,
		UserID: user.ID,
		Role:   orgdomain.RoleManager,
	}
	if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureSessionTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, userID snowflake.ID) error {
	hash := identityrepo.HashToken(DemoSessionToken)

	var session identitydomain.Session
	err := tx.WithContext(ctx).First(&session, "token_hash = ?", hash).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	session = identitydomain.Session{
		ID:        node.Generate(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(365 * 24 * time.Hour),
	}
	return tx.WithContext(ctx).Create(&session).Error
}
