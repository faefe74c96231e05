package sqlite

import (
	"context"
	"database/sql"

	"github.com/chrisdamba/trafficsim/internal/models"
)

type AlertRepository struct {
	db DBTX
}

func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) BulkCreate(ctx context.Context, alerts []*models.Alert) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		stmt, err := tx.PrepareContext(ctx, `
	        INSERT INTO alerts (
	            id, category, kind, junction_id, location, message,
	            created_at, resolved, assignee, lat, lon
	        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	    `)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range alerts {
			var lat, lon sql.NullFloat64
			if a.Coordinates != nil {
				lat = sql.NullFloat64{Float64: a.Coordinates.Lat, Valid: true}
				lon = sql.NullFloat64{Float64: a.Coordinates.Lon, Valid: true}
			}
			_, err = stmt.ExecContext(ctx,
				a.ID, a.Category, a.Kind, nullableString(a.JunctionID), a.Location, a.Message,
				a.CreatedAt.UTC(), a.Resolved, nullableString(a.Assignee), lat, lon,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *AlertRepository) GetAll(ctx context.Context) ([]*models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, category, kind, junction_id, location, message,
               created_at, resolved, assignee, lat, lon
        FROM alerts
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		var junctionID, assignee sql.NullString
		var lat, lon sql.NullFloat64
		err := rows.Scan(
			&a.ID, &a.Category, &a.Kind, &junctionID, &a.Location, &a.Message,
			&a.CreatedAt, &a.Resolved, &assignee, &lat, &lon,
		)
		if err != nil {
			return nil, err
		}
		a.JunctionID = junctionID.String
		a.Assignee = assignee.String
		if lat.Valid && lon.Valid {
			a.Coordinates = &models.Location{Lat: lat.Float64, Lon: lon.Float64}
		}
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

func (r *AlertRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts").Scan(&count)
	return count, err
}

func (r *AlertRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM alerts")
	return err
}
