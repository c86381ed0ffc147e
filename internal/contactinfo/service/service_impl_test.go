package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/civicroom/memberdesk/internal/clock"
	"github.com/civicroom/memberdesk/internal/contactinfo/domain"
	"github.com/civicroom/memberdesk/internal/contactinfo/repository"
)

func setupService(t *testing.T) (domain.Service, domain.Repository, *clock.FakeClock, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ContactInfo{}))
	require.NoError(t, db.Exec(`CREATE TABLE organizations (
		id INTEGER PRIMARY KEY,
		title TEXT,
		slug TEXT,
		host TEXT,
		active BOOLEAN,
		metadata TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	repo := repository.NewRepository(db, node)
	svc := NewService(db, repo, fake, zaptest.NewLogger(t))
	return svc, repo, fake, node
}

func TestGetReturnsDefaultsWhenMissing(t *testing.T) {
	svc, _, _, node := setupService(t)
	orgID := node.Generate()

	resp, err := svc.Get(context.Background(), orgID)
	require.NoError(t, err)
	assert.Empty(t, resp.PK)
	assert.Equal(t, orgID.String(), resp.Organisation)
	assert.Nil(t, resp.Modified)
	assert.True(t, resp.RequiresCheck)
	assert.Empty(t, resp.GenericEmail)
}

func TestSetCreatesRecordAndClearsCheckFlag(t *testing.T) {
	svc, repo, fake, node := setupService(t)
	orgID := node.Generate()

	resp, err := svc.Set(context.Background(), orgID, domain.SetRequest{
		Text:         "Reachable weekdays 9-17.",
		GenericEmail: "Info@Example.ORG",
		InvoiceEmail: "billing@example.org",
		InvoiceInfo:  "PO box 12",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.PK)
	assert.Equal(t, "info@example.org", resp.GenericEmail)
	assert.Equal(t, "billing@example.org", resp.InvoiceEmail)
	assert.False(t, resp.RequiresCheck)
	require.NotNil(t, resp.Modified)
	assert.Equal(t, fake.Now(), resp.Modified.UTC())

	stored, err := repo.Get(context.Background(), orgID)
	require.NoError(t, err)
	assert.False(t, stored.RequiresCheck)
}

func TestSetIsFullReplace(t *testing.T) {
	svc, repo, _, node := setupService(t)
	orgID := node.Generate()
	ctx := context.Background()

	_, err := svc.Set(ctx, orgID, domain.SetRequest{
		Text:         "original text",
		GenericEmail: "info@example.org",
		InvoiceEmail: "billing@example.org",
		InvoiceInfo:  "reference 42",
	})
	require.NoError(t, err)

	// Omitted fields reset to empty rather than keeping old values.
	resp, err := svc.Set(ctx, orgID, domain.SetRequest{
		GenericEmail: "info@example.org",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Text)
	assert.Empty(t, resp.InvoiceEmail)
	assert.Empty(t, resp.InvoiceInfo)

	stored, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	assert.Empty(t, stored.InvoiceEmail)
	assert.Equal(t, "info@example.org", stored.GenericEmail)
}

func TestSetClearsFlagAfterScan(t *testing.T) {
	svc, repo, fake, node := setupService(t)
	orgID := node.Generate()
	ctx := context.Background()

	_, err := svc.Set(ctx, orgID, domain.SetRequest{GenericEmail: "info@example.org"})
	require.NoError(t, err)

	// Simulate the staleness scan having flagged the record.
	stored, err := repo.Get(ctx, orgID)
	require.NoError(t, err)
	stored.RequiresCheck = true
	_, err = repo.Upsert(ctx, *stored)
	require.NoError(t, err)

	fake.Advance(24 * time.Hour)
	resp, err := svc.Set(ctx, orgID, domain.SetRequest{
		GenericEmail: "info@example.org",
		InvoiceEmail: "billing@example.org",
	})
	require.NoError(t, err)
	assert.False(t, resp.RequiresCheck)

	stored, err = repo.Get(ctx, orgID)
	require.NoError(t, err)
	assert.False(t, stored.RequiresCheck)
	assert.WithinDuration(t, fake.Now(), stored.Modified, time.Second)
}

func TestSetRejectsInvalidEmailsWithAllFieldErrors(t *testing.T) {
	svc, repo, _, node := setupService(t)
	orgID := node.Generate()

	_, err := svc.Set(context.Background(), orgID, domain.SetRequest{
		GenericEmail: "not-an-email",
		InvoiceEmail: "also bad",
	})
	require.Error(t, err)

	var vErr *domain.ValidationErrors
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Errors, 2)
	assert.Equal(t, "generic_email", vErr.Errors[0].Field)
	assert.Equal(t, "invoice_email", vErr.Errors[1].Field)

	// Nothing was written.
	_, err = repo.Get(context.Background(), orgID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetSanitizesRichText(t *testing.T) {
	svc, _, _, node := setupService(t)
	orgID := node.Generate()

	resp, err := svc.Set(context.Background(), orgID, domain.SetRequest{
		Text: `<p>hello</p><script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", resp.Text)
}
