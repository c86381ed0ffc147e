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

	"github.com/civicroom/memberdesk/internal/contactinfo/domain"
)

func setupRepo(t *testing.T) (domain.Repository, *gorm.DB, *snowflake.Node) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.ContactInfo{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewRepository(gdb, node), gdb, node
}

// Two sessions racing the first-time write for the same organisation must
// both receive success: the slower writer's insert hits the unique
// constraint and falls back to updating the row that beat it.
func TestUpsertSurvivesConcurrentFirstWrite(t *testing.T) {
	repo, gdb, node := setupRepo(t)
	ctx := context.Background()

	orgID := node.Generate()
	rivalID := node.Generate()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Plant a rival row between the existence check and the insert.
	planted := false
	require.NoError(t, gdb.Callback().Create().Before("gorm:create").Register("plant_rival_row", func(tx *gorm.DB) {
		if planted || tx.Statement.Table != "contact_infos" {
			return
		}
		planted = true
		require.NoError(t, gdb.Exec(
			`INSERT INTO contact_infos (id, org_id, text, generic_email, invoice_email, invoice_info, modified, requires_check)
			 VALUES (?, ?, 'rival', '', '', '', ?, ?)`,
			rivalID.Int64(), orgID.Int64(), now, true,
		).Error)
	}))

	record, err := repo.Upsert(ctx, domain.ContactInfo{
		OrgID:        orgID,
		Text:         "from the slower writer",
		GenericEmail: "info@example.org",
		Modified:     now,
	})
	require.NoError(t, err)
	assert.True(t, planted)
	assert.Equal(t, rivalID, record.ID)

	var count int64
	require.NoError(t, gdb.Model(&domain.ContactInfo{}).Where("org_id = ?", orgID.Int64()).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, rivalID, stored.ID)
	assert.Equal(t, "from the slower writer", stored.Text)
	assert.Equal(t, "info@example.org", stored.GenericEmail)
	assert.False(t, stored.RequiresCheck)
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	repo, _, node := setupRepo(t)
	ctx := context.Background()

	orgID := node.Generate()
	created, err := repo.Upsert(ctx, domain.ContactInfo{
		OrgID:    orgID,
		Text:     "first",
		Modified: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	updated, err := repo.Upsert(ctx, domain.ContactInfo{
		OrgID:    orgID,
		Text:     "second",
		Modified: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	stored, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Text)
}
