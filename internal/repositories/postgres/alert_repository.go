package postgres

import (
	"context"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jackc/pgx/v5"
)

type AlertRepository struct {
	db DBTX
}

func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) BulkCreate(ctx context.Context, alerts []*models.Alert) error {
	query := `
        INSERT INTO alerts (
            id, category, kind, junction_id, location, message,
            created_at, resolved, assignee, lat, lon
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	batch := &pgx.Batch{}
	for _, a := range alerts {
		var lat, lon *float64
		if a.Coordinates != nil {
			lat, lon = &a.Coordinates.Lat, &a.Coordinates.Lon
		}
		batch.Queue(query,
			a.ID,
			a.Category,
			a.Kind,
			nullableString(a.JunctionID),
			a.Location,
			a.Message,
			a.CreatedAt,
			a.Resolved,
			nullableString(a.Assignee),
			lat,
			lon,
		)
	}

	return r.db.SendBatch(ctx, batch).Close()
}

func (r *AlertRepository) GetAll(ctx context.Context) ([]*models.Alert, error) {
	query := `
        SELECT id, category, kind, junction_id, location, message,
               created_at, resolved, assignee, lat, lon
        FROM alerts
        ORDER BY created_at DESC
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		var junctionID, assignee *string
		var lat, lon *float64
		err := rows.Scan(
			&a.ID,
			&a.Category,
			&a.Kind,
			&junctionID,
			&a.Location,
			&a.Message,
			&a.CreatedAt,
			&a.Resolved,
			&assignee,
			&lat,
			&lon,
		)
		if err != nil {
			return nil, err
		}
		if junctionID != nil {
			a.JunctionID = *junctionID
		}
		if assignee != nil {
			a.Assignee = *assignee
		}
		if lat != nil && lon != nil {
			a.Coordinates = &models.Location{Lat: *lat, Lon: *lon}
		}
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

func (r *AlertRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM alerts").Scan(&count)
	return count, err
}

func (r *AlertRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "DELETE FROM alerts")
	return err
}
