package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/civicroom/memberdesk/internal/identity/domain"
)

func setupIdentity(t *testing.T) (domain.Repository, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewRepository(db), db, node
}

func seedSession(t *testing.T, db *gorm.DB, node *snowflake.Node, token string, expiresAt time.Time) domain.User {
	t.Helper()
	user := domain.User{
		ID:        node.Generate(),
		Username:  "alva" + node.Generate().String(),
		FirstName: "Alva",
		LastName:  "Berg",
		Email:     "alva@example.org",
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&domain.Session{
		ID:        node.Generate(),
		UserID:    user.ID,
		TokenHash: HashToken(token),
		ExpiresAt: expiresAt,
	}).Error)
	return user
}

func TestUserBySessionTokenResolvesUser(t *testing.T) {
	repo, db, node := setupIdentity(t)
	user := seedSession(t, db, node, "raw-token", time.Now().UTC().Add(time.Hour))

	got, err := repo.UserBySessionToken(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Alva Berg", got.FullName())
}

func TestUserBySessionTokenRejectsUnknownToken(t *testing.T) {
	repo, _, _ := setupIdentity(t)

	_, err := repo.UserBySessionToken(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestUserBySessionTokenRejectsExpired(t *testing.T) {
	repo, db, node := setupIdentity(t)
	seedSession(t, db, node, "old-token", time.Now().UTC().Add(-time.Hour))

	_, err := repo.UserBySessionToken(context.Background(), "old-token")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestUserBySessionTokenRejectsEmpty(t *testing.T) {
	repo, _, _ := setupIdentity(t)

	_, err := repo.UserBySessionToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}
