package cmd

import (
	"context"
	"fmt"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories"
	"github.com/chrisdamba/trafficsim/internal/repositories/postgres"
	"github.com/chrisdamba/trafficsim/internal/repositories/sqlite"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the junction catalogue, feeds and seed alerts to the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, closeRepos, err := openCatalogue(cmd.Context(), &cfg.Database)
		if err != nil {
			return err
		}
		defer closeRepos()
		return seedCatalogue(cmd.Context(), cfg, repos, logger)
	},
}

func openCatalogue(ctx context.Context, db *models.DatabaseConfig) (repositories.Catalogue, func(), error) {
	switch db.Driver {
	case models.DriverPostgres:
		pool, err := postgres.Connect(ctx, db)
		if err != nil {
			return repositories.Catalogue{}, nil, err
		}
		return postgres.NewCatalogue(pool), pool.Close, nil
	case models.DriverSQLite:
		conn, err := sqlite.Open(db.Path)
		if err != nil {
			return repositories.Catalogue{}, nil, err
		}
		return sqlite.NewCatalogue(conn), func() { conn.Close() }, nil
	default:
		return repositories.Catalogue{}, nil, fmt.Errorf("unsupported database driver: %q", db.Driver)
	}
}

func seedCatalogue(ctx context.Context, config *models.Config, repos repositories.Catalogue, logger *zap.Logger) error {
	sim := simulator.NewSimulator(config, logger)
	sim.Initialize()

	junctions := pointers(sim.JunctionList())
	feeds := pointers(sim.FeedList())
	alerts := pointers(sim.AlertList(models.AlertFilter{}))

	if err := repos.Replace(ctx, junctions, feeds, alerts); err != nil {
		return fmt.Errorf("failed to seed catalogue: %w", err)
	}

	logger.Info("catalogue seeded",
		zap.String("driver", config.Database.Driver),
		zap.Int("junctions", len(junctions)),
		zap.Int("feeds", len(feeds)),
		zap.Int("alerts", len(alerts)))
	return nil
}

func pointers[T any](in []T) []*T {
	out := make([]*T, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}
