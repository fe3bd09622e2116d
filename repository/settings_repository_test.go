package repository

import (
	"context"
	"testing"

	"harvest/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, int64(555), first.GuildID)
	assert.Empty(t, first.Prefixes)

	testutil.SeedPrefixes(t, testDB.DB, 555, "!")

	second, err := repo.GetOrCreate(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, []string{"!"}, second.Prefixes)
}

func TestSettingsRepository_Prefixes(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 777)
	require.NoError(t, err)

	t.Run("add appends", func(t *testing.T) {
		settings, err := repo.AddPrefix(ctx, 777, "!")
		require.NoError(t, err)
		require.NotNil(t, settings)

		settings, err = repo.AddPrefix(ctx, 777, "?")
		require.NoError(t, err)
		require.NotNil(t, settings)
		assert.Equal(t, []string{"!", "?"}, settings.Prefixes)
	})

	t.Run("add duplicate is rejected", func(t *testing.T) {
		settings, err := repo.AddPrefix(ctx, 777, "!")
		require.NoError(t, err)
		assert.Nil(t, settings)
	})

	t.Run("remove", func(t *testing.T) {
		settings, err := repo.RemovePrefix(ctx, 777, "!")
		require.NoError(t, err)
		require.NotNil(t, settings)
		assert.Equal(t, []string{"?"}, settings.Prefixes)
	})

	t.Run("remove unknown is rejected", func(t *testing.T) {
		settings, err := repo.RemovePrefix(ctx, 777, "$")
		require.NoError(t, err)
		assert.Nil(t, settings)
	})

	t.Run("set replaces and clears", func(t *testing.T) {
		settings, err := repo.SetPrefixes(ctx, 777, []string{">>"})
		require.NoError(t, err)
		assert.Equal(t, []string{">>"}, settings.Prefixes)

		settings, err = repo.SetPrefixes(ctx, 777, nil)
		require.NoError(t, err)
		assert.Empty(t, settings.Prefixes)
	})

	t.Run("set creates missing row", func(t *testing.T) {
		settings, err := repo.SetPrefixes(ctx, 778, []string{"h!"})
		require.NoError(t, err)
		assert.Equal(t, int64(778), settings.GuildID)
		assert.Equal(t, []string{"h!"}, settings.Prefixes)
	})
}
