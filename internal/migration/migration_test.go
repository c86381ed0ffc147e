package migration

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Contact records and membership rows hold their organisation in place: an
// organisation with either must not be deletable out from under them.
func TestOrganisationReferencesRestrictDeletion(t *testing.T) {
	schema, err := embeddedMigrations.ReadFile("sql/000001_core.up.sql")
	require.NoError(t, err)

	tables := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS (\w+) \((.*?)\);`)
	blocks := make(map[string]string)
	for _, m := range tables.FindAllStringSubmatch(string(schema), -1) {
		blocks[m[1]] = m[2]
	}

	for _, table := range []string{"contact_infos", "memberships"} {
		body, ok := blocks[table]
		require.True(t, ok, table)
		assert.Contains(t, body, "REFERENCES organizations (id) ON DELETE RESTRICT", table)
	}
}
