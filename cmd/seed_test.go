package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedCatalogueWritesSQLite(t *testing.T) {
	ctx := context.Background()
	config, err := models.LoadConfig(viper.New(), "")
	require.NoError(t, err)
	config.Database.Path = filepath.Join(t.TempDir(), "seed.db")

	repos, closeRepos, err := openCatalogue(ctx, &config.Database)
	require.NoError(t, err)
	defer closeRepos()

	require.NoError(t, seedCatalogue(ctx, config, repos, zap.NewNop()))
	// seeding twice replaces rather than duplicates
	require.NoError(t, seedCatalogue(ctx, config, repos, zap.NewNop()))

	junctions, err := repos.Junctions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, junctions)

	feeds, err := repos.Feeds.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, feeds)

	alerts, err := repos.Alerts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, alerts)
}

func TestOpenCatalogueRejectsUnknownDriver(t *testing.T) {
	_, _, err := openCatalogue(context.Background(), &models.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestEveryFlagIsBound(t *testing.T) {
	for flag := range flagKeys {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}
