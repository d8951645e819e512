package repository

import (
	"context"
	"testing"

	"luckydraw/models"
	"luckydraw/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawSettingsRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("defaults are created", func(t *testing.T) {
		settings, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)
		require.NotNil(t, settings)

		assert.False(t, settings.Closed)
		assert.Equal(t, models.DisplayModeBoth, settings.DisplayMode)
		assert.False(t, settings.UpdatedAt.IsZero())
	})

	t.Run("update persists", func(t *testing.T) {
		settings, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)

		settings.Closed = true
		settings.DisplayMode = models.DisplayModeRank
		require.NoError(t, repo.Update(ctx, settings))

		reloaded, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)
		assert.True(t, reloaded.Closed)
		assert.Equal(t, models.DisplayModeRank, reloaded.DisplayMode)
	})

	t.Run("invalid display mode rejected by schema", func(t *testing.T) {
		err := repo.Update(ctx, &models.DrawSettings{DisplayMode: "sparkles"})
		assert.Error(t, err)

		reloaded, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DisplayModeRank, reloaded.DisplayMode)
	})
}
