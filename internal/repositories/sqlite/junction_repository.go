package sqlite

import (
	"context"
	"encoding/json"

	"github.com/chrisdamba/trafficsim/internal/models"
)

type JunctionRepository struct {
	db DBTX
}

func NewJunctionRepository(db DBTX) *JunctionRepository {
	return &JunctionRepository{db: db}
}

func (r *JunctionRepository) BulkCreate(ctx context.Context, junctions []*models.Junction) error {
	return withTx(ctx, r.db, func(tx DBTX) error {
		stmt, err := tx.PrepareContext(ctx, `
	        INSERT INTO junctions (
	            id, name, lat, lon, status, congestion, cameras,
	            vehicle_count, avg_speed, incidents, last_updated
	        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	    `)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, j := range junctions {
			incidents := j.Incidents
			if incidents == nil {
				incidents = []string{}
			}
			encoded, err := json.Marshal(incidents)
			if err != nil {
				return err
			}
			_, err = stmt.ExecContext(ctx,
				j.ID, j.Name, j.Location.Lat, j.Location.Lon, j.Status, j.Congestion,
				j.Cameras, j.VehicleCount, j.AvgSpeed, string(encoded), j.LastUpdated.UTC(),
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *JunctionRepository) GetAll(ctx context.Context) ([]*models.Junction, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, lat, lon, status, congestion, cameras,
               vehicle_count, avg_speed, incidents, last_updated
        FROM junctions
        ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var junctions []*models.Junction
	for rows.Next() {
		var j models.Junction
		var incidents string
		err := rows.Scan(
			&j.ID, &j.Name, &j.Location.Lat, &j.Location.Lon, &j.Status, &j.Congestion,
			&j.Cameras, &j.VehicleCount, &j.AvgSpeed, &incidents, &j.LastUpdated,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(incidents), &j.Incidents); err != nil {
			return nil, err
		}
		junctions = append(junctions, &j)
	}

	return junctions, rows.Err()
}

func (r *JunctionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM junctions").Scan(&count)
	return count, err
}

func (r *JunctionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM junctions")
	return err
}
