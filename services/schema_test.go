package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The schema must migrate on plain sqlite as well as postgres, so model
// tags cannot rely on postgres-only DDL such as DB-side uuid defaults.
func TestSchemaMigratesOnSqlite(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{
		"accounts",
		"pet_catalog_entries",
		"pets",
		"snacks",
		"roi_boosts",
		"auto_claim_subscriptions",
		"ledger_entries",
		"referral_rewards",
		"referral_stats",
		"game_settings",
	} {
		require.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
