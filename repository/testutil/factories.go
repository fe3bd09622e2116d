package testutil

import (
	"context"
	"testing"

	"harvest/database"
	"harvest/models"

	"github.com/stretchr/testify/require"
)

// CreateTestAccount builds an account value without touching the database
func CreateTestAccount(userID, wallet, bank int64) *models.Account {
	return &models.Account{
		UserID: userID,
		Wallet: wallet,
		Bank:   bank,
	}
}

// SeedAccount writes an economy row directly, bypassing the repositories
func SeedAccount(t *testing.T, db *database.DB, userID, wallet, bank int64) *models.Account {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO economy (user_id, wallet, bank)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET wallet = excluded.wallet, bank = excluded.bank
	`, userID, wallet, bank)
	require.NoError(t, err)

	return CreateTestAccount(userID, wallet, bank)
}

// SeedPrefixes writes a settings row directly
func SeedPrefixes(t *testing.T, db *database.DB, guildID int64, prefixes ...string) {
	t.Helper()
	if prefixes == nil {
		prefixes = []string{}
	}

	_, err := db.Exec(context.Background(), `
		INSERT INTO settings (guild_id, prefixes)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET prefixes = excluded.prefixes
	`, guildID, prefixes)
	require.NoError(t, err)
}
