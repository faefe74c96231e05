package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 2*time.Second, cfg.TickMinPeriod)
	assert.Equal(t, 3*time.Second, cfg.TickMaxPeriod)
	assert.Equal(t, time.Hour, cfg.EndDate.Sub(cfg.StartDate))
	assert.Equal(t, "Bhubaneswar", cfg.CityName)
	assert.Equal(t, OutputFormatConsole, cfg.OutputFormat)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/trafficsim.db", cfg.Database.DSN())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trafficsim.yaml")
	content := `
seed: 7
start_date: "2024-06-10T08:00:00Z"
end_date: "2024-06-10T09:30:00Z"
tick_min_period: 500ms
tick_max_period: 1500ms
incident_probability: 0.2
output_format: parquet
output_destination: s3
cloud_storage:
  bucket_name: traffic-events
database:
  driver: postgres
  host: db
  port: "5433"
  user: sim
  password: secret
  dbname: traffic
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), cfg.StartDate.UTC())
	assert.Equal(t, 500*time.Millisecond, cfg.TickMinPeriod)
	assert.InDelta(t, 0.2, cfg.IncidentProbability, 1e-9)
	assert.Equal(t, "traffic-events", cfg.CloudStorage.BucketName)
	assert.Equal(t, "ap-south-1", cfg.CloudStorage.Region)
	assert.Equal(t, "host=db port=5433 user=sim password=secret dbname=traffic sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TRAFFICSIM_SEED", "99")
	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validConfig() *Config {
	start := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	return &Config{
		StartDate:            start,
		EndDate:              start.Add(time.Hour),
		StepDuration:         time.Second,
		StepInterval:         time.Second,
		TickMinPeriod:        2 * time.Second,
		TickMaxPeriod:        3 * time.Second,
		JunctionUpdatePeriod: 10 * time.Second,
		KPISnapshotPeriod:    time.Minute,
		OutputFormat:         OutputFormatConsole,
		OutputDestination:    OutputDestinationLocal,
		Database:             DatabaseConfig{Driver: DriverSQLite},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "tick range inverted", mutate: func(c *Config) { c.TickMaxPeriod = time.Second }, wantErr: "tick_max_period"},
		{name: "zero step", mutate: func(c *Config) { c.StepDuration = 0 }, wantErr: "step_duration"},
		{name: "probability above one", mutate: func(c *Config) { c.OfflineProbability = 1.5 }, wantErr: "offline_probability"},
		{name: "empty window", mutate: func(c *Config) { c.EndDate = c.StartDate }, wantErr: "end_date"},
		{name: "continuous ignores window", mutate: func(c *Config) { c.EndDate = c.StartDate; c.Continuous = true }},
		{name: "bad cron", mutate: func(c *Config) { c.SnapshotSchedule = "every tuesday" }, wantErr: "snapshot_schedule"},
		{name: "good cron", mutate: func(c *Config) { c.SnapshotSchedule = "*/5 * * * *" }},
		{name: "unknown format", mutate: func(c *Config) { c.OutputFormat = "xml" }, wantErr: "output format"},
		{name: "unknown destination", mutate: func(c *Config) { c.OutputDestination = "gcs" }, wantErr: "output destination"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
