package sqlite

import (
	"context"
	"database/sql"

	"github.com/chrisdamba/trafficsim/internal/models"
)

type FeedRepository struct {
	db DBTX
}

func NewFeedRepository(db DBTX) *FeedRepository {
	return &FeedRepository{db: db}
}

func (r *FeedRepository) BulkCreate(ctx context.Context, feeds []*models.Feed) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		stmt, err := tx.PrepareContext(ctx, `
	        INSERT INTO feeds (
	            id, label, junction_id, edge_node, online, cars, buses, bikes, last_tick
	        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	    `)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range feeds {
			var lastTick sql.NullTime
			if !f.LastTick.IsZero() {
				lastTick = sql.NullTime{Time: f.LastTick.UTC(), Valid: true}
			}
			_, err = stmt.ExecContext(ctx,
				f.ID, f.Label, f.JunctionID, f.EdgeNode, f.Online,
				f.Counts.Cars, f.Counts.Buses, f.Counts.Bikes, lastTick,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
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
        WHERE junction_id = ?
        ORDER BY label
    `, junctionID)
}

func (r *FeedRepository) query(ctx context.Context, query string, args ...any) ([]*models.Feed, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeds []*models.Feed
	for rows.Next() {
		var f models.Feed
		var lastTick sql.NullTime
		err := rows.Scan(
			&f.ID, &f.Label, &f.JunctionID, &f.EdgeNode, &f.Online,
			&f.Counts.Cars, &f.Counts.Buses, &f.Counts.Bikes, &lastTick,
		)
		if err != nil {
			return nil, err
		}
		if lastTick.Valid {
			f.LastTick = lastTick.Time
		}
		feeds = append(feeds, &f)
	}

	return feeds, rows.Err()
}

func (r *FeedRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feeds").Scan(&count)
	return count, err
}

func (r *FeedRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM feeds")
	return err
}
