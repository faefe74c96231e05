package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresOutput appends every event as a jsonb row in a per-topic fact table.
type PostgresOutput struct {
	ctx  context.Context
	db   execer
	pool *pgxpool.Pool
}

func NewPostgresOutput(ctx context.Context, config *models.DatabaseConfig) (*PostgresOutput, error) {
	pool, err := pgxpool.New(ctx, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	p := &PostgresOutput{ctx: ctx, db: pool, pool: pool}
	if err := p.EnsureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// EnsureTables creates the fact tables for every known topic.
func (p *PostgresOutput) EnsureTables(ctx context.Context) error {
	for _, table := range tables() {
		query := fmt.Sprintf(`
            CREATE TABLE IF NOT EXISTS %s (
                id BIGSERIAL PRIMARY KEY,
                event_time TIMESTAMPTZ NOT NULL,
                event_type TEXT NOT NULL,
                payload JSONB NOT NULL
            )`, table)
		if _, err := p.db.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
	}
	return nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var head struct {
		Timestamp int64  `json:"timestamp"`
		EventType string `json:"eventType"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return err
	}
	if head.Timestamp == 0 {
		return fmt.Errorf("invalid timestamp")
	}

	table := topicToTable(topic)
	query := fmt.Sprintf("INSERT INTO %s (event_time, event_type, payload) VALUES ($1, $2, $3)", table)
	if _, err := p.db.Exec(p.ctx, query, time.Unix(head.Timestamp, 0).UTC(), head.EventType, string(msg)); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

var tableMap = map[string]string{
	"vehicle_count_events":   "fact_vehicle_count",
	"feed_status_events":     "fact_feed_status",
	"junction_status_events": "fact_junction_status",
	"alert_events":           "fact_alert",
	"kpi_snapshot_events":    "fact_kpi_snapshot",
}

func topicToTable(topic string) string {
	if table, ok := tableMap[topic]; ok {
		return table
	}
	// unknown topics land in fact_<topic without _events>
	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, strings.ToLower(strings.TrimSuffix(topic, "_events")))
	return "fact_" + name
}

func tables() []string {
	return []string{
		"fact_vehicle_count",
		"fact_feed_status",
		"fact_junction_status",
		"fact_alert",
		"fact_kpi_snapshot",
	}
}
