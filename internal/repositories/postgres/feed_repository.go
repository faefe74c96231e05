package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jackc/pgx/v5"
)

type FeedRepository struct {
	db DBTX
}

func NewFeedRepository(db DBTX) *FeedRepository {
	return &FeedRepository{db: db}
}

var feedColumns = []string{
	"id", "label", "junction_id", "edge_node", "online",
	"cars", "buses", "bikes", "last_tick",
}

// BulkCreate streams the feeds in with COPY.
func (r *FeedRepository) BulkCreate(ctx context.Context, feeds []*models.Feed) error {
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"feeds"},
		feedColumns,
		pgx.CopyFromSlice(len(feeds), func(i int) ([]any, error) {
			f := feeds[i]
			var lastTick any
			if !f.LastTick.IsZero() {
				lastTick = f.LastTick
			}
			return []any{
				f.ID, f.Label, f.JunctionID, f.EdgeNode, f.Online,
				f.Counts.Cars, f.Counts.Buses, f.Counts.Bikes, lastTick,
			}, nil
		}),
	)
	return err
}

func (r *FeedRepository) GetAll(ctx context.Context) ([]*models.Feed, error) {
	return r.query(ctx, `
        SELECT id, label, junction_id, edge_node, online, cars, buses, bikes, last_tick
        FROM feeds
        ORDER BY label
    `)
}

func (r *FeedRepository) GetByJunctionID(ctx context.Context, junctionID string) ([]*models.Feed, error) {
	return r.query(ctx, `
        SELECT id, label, junction_id, edge_node, online, cars, buses, bikes, last_tick
        FROM feeds
        WHERE junction_id = $1
        ORDER BY label
    `, junctionID)
}

func (r *FeedRepository) query(ctx context.Context, query string, args ...any) ([]*models.Feed, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Feed, error) {
		var f models.Feed
		var lastTick *time.Time
		err := row.Scan(
			&f.ID, &f.Label, &f.JunctionID, &f.EdgeNode, &f.Online,
			&f.Counts.Cars, &f.Counts.Buses, &f.Counts.Bikes, &lastTick,
		)
		if lastTick != nil {
			f.LastTick = *lastTick
		}
		return &f, err
	})
}

func (r *FeedRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM feeds").Scan(&count)
	return count, err
}

func (r *FeedRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "DELETE FROM feeds")
	return err
}
