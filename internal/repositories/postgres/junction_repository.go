package postgres

import (
	"context"

	"github.com/chrisdamba/trafficsim/internal/models"
)

type JunctionRepository struct {
	db DBTX
}

func NewJunctionRepository(db DBTX) *JunctionRepository {
	return &JunctionRepository{db: db}
}

func (r *JunctionRepository) BulkCreate(ctx context.Context, junctions []*models.Junction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO junctions (
            id, name, lat, lon, status, congestion, cameras,
            vehicle_count, avg_speed, incidents, last_updated
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	for _, j := range junctions {
		incidents := j.Incidents
		if incidents == nil {
			incidents = []string{}
		}
		_, err = tx.Exec(ctx, query,
			j.ID,
			j.Name,
			j.Location.Lat,
			j.Location.Lon,
			j.Status,
			j.Congestion,
			j.Cameras,
			j.VehicleCount,
			j.AvgSpeed,
			incidents,
			j.LastUpdated,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *JunctionRepository) GetAll(ctx context.Context) ([]*models.Junction, error) {
	query := `
        SELECT id, name, lat, lon, status, congestion, cameras,
               vehicle_count, avg_speed, incidents, last_updated
        FROM junctions
        ORDER BY id
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var junctions []*models.Junction
	for rows.Next() {
		var j models.Junction
		err := rows.Scan(
			&j.ID,
			&j.Name,
			&j.Location.Lat,
			&j.Location.Lon,
			&j.Status,
			&j.Congestion,
			&j.Cameras,
			&j.VehicleCount,
			&j.AvgSpeed,
			&j.Incidents,
			&j.LastUpdated,
		)
		if err != nil {
			return nil, err
		}
		junctions = append(junctions, &j)
	}

	return junctions, rows.Err()
}

func (r *JunctionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM junctions").Scan(&count)
	return count, err
}

func (r *JunctionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "DELETE FROM junctions")
	return err
}
