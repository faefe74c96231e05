package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres or sqlite
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite file
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type Config struct {
	Seed       int64     `mapstructure:"seed"`
	StartDate  time.Time `mapstructure:"start_date"`
	EndDate    time.Time `mapstructure:"end_date"`
	Continuous bool      `mapstructure:"continuous"`

	// StepDuration is how far the simulation clock moves per step,
	// StepInterval is the wall-clock pause between steps.
	StepDuration time.Duration `mapstructure:"step_duration"`
	StepInterval time.Duration `mapstructure:"step_interval"`

	TickMinPeriod        time.Duration `mapstructure:"tick_min_period"`
	TickMaxPeriod        time.Duration `mapstructure:"tick_max_period"`
	JunctionUpdatePeriod time.Duration `mapstructure:"junction_update_period"`
	KPISnapshotPeriod    time.Duration `mapstructure:"kpi_snapshot_period"`
	SnapshotSchedule     string        `mapstructure:"snapshot_schedule"` // cron spec, continuous mode only

	OfflineProbability  float64 `mapstructure:"offline_probability"`
	RecoveryProbability float64 `mapstructure:"recovery_probability"`
	IncidentProbability float64 `mapstructure:"incident_probability"`

	CityName         string  `mapstructure:"city_name"`
	CityLat          float64 `mapstructure:"city_latitude"`
	CityLon          float64 `mapstructure:"city_longitude"`
	UrbanRadius      float64 `mapstructure:"urban_radius"`
	InitialJunctions int     `mapstructure:"initial_junctions"` // generated on top of the built-in catalogue

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`

	OutputFormat      string             `mapstructure:"output_format"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"` // local or s3
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
	Database          DatabaseConfig     `mapstructure:"database"`

	LogLevel string `mapstructure:"log_level"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	now := time.Now().UTC().Truncate(time.Second)

	v.SetDefault("seed", 42)
	v.SetDefault("start_date", now.Format(time.RFC3339))
	v.SetDefault("end_date", now.Add(time.Hour).Format(time.RFC3339))
	v.SetDefault("continuous", false)
	v.SetDefault("step_duration", "1s")
	v.SetDefault("step_interval", "1s")
	v.SetDefault("tick_min_period", "2s")
	v.SetDefault("tick_max_period", "3s")
	v.SetDefault("junction_update_period", "10s")
	v.SetDefault("kpi_snapshot_period", "1m")
	v.SetDefault("snapshot_schedule", "")
	v.SetDefault("offline_probability", 0.002)
	v.SetDefault("recovery_probability", 0.05)
	v.SetDefault("incident_probability", 0.01)
	v.SetDefault("city_name", "Bhubaneswar")
	v.SetDefault("city_latitude", 20.2961)
	v.SetDefault("city_longitude", 85.8245)
	v.SetDefault("urban_radius", 8.0)
	v.SetDefault("initial_junctions", 0)
	v.SetDefault("kafka_enabled", false)
	v.SetDefault("kafka_broker_list", "localhost:9092")
	v.SetDefault("session_timeout_ms", 45000)
	v.SetDefault("output_format", OutputFormatConsole)
	v.SetDefault("output_path", "")
	v.SetDefault("output_folder", "trafficsim")
	v.SetDefault("output_destination", OutputDestinationLocal)
	v.SetDefault("cloud_storage.provider", "s3")
	v.SetDefault("cloud_storage.region", "ap-south-1")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "data/trafficsim.db")
	v.SetDefault("log_level", "info")
}

// LoadConfig reads cfgFile (when set) into v on top of the defaults and
// decodes the result.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TRAFFICSIM")
	v.AutomaticEnv()

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Validate checks the settings the simulation loop relies on.
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.StepDuration <= 0 {
		errs = append(errs, errors.New("step_duration must be positive"))
	}
	if cfg.StepInterval <= 0 {
		errs = append(errs, errors.New("step_interval must be positive"))
	}
	if cfg.TickMinPeriod <= 0 {
		errs = append(errs, errors.New("tick_min_period must be positive"))
	}
	if cfg.TickMaxPeriod < cfg.TickMinPeriod {
		errs = append(errs, errors.New("tick_max_period must not be below tick_min_period"))
	}
	if cfg.JunctionUpdatePeriod <= 0 {
		errs = append(errs, errors.New("junction_update_period must be positive"))
	}
	if cfg.KPISnapshotPeriod <= 0 {
		errs = append(errs, errors.New("kpi_snapshot_period must be positive"))
	}
	for name, p := range map[string]float64{
		"offline_probability":  cfg.OfflineProbability,
		"recovery_probability": cfg.RecoveryProbability,
		"incident_probability": cfg.IncidentProbability,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, p))
		}
	}
	if !cfg.Continuous && !cfg.EndDate.After(cfg.StartDate) {
		errs = append(errs, errors.New("end_date must be after start_date"))
	}
	if cfg.SnapshotSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SnapshotSchedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid snapshot_schedule: %w", err))
		}
	}
	if cfg.InitialJunctions < 0 {
		errs = append(errs, errors.New("initial_junctions must not be negative"))
	}
	switch cfg.OutputFormat {
	case OutputFormatConsole, OutputFormatJSON, OutputFormatCSV, OutputFormatParquet, OutputFormatPostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported output format: %q", cfg.OutputFormat))
	}
	switch cfg.OutputDestination {
	case OutputDestinationLocal, OutputDestinationS3:
	default:
		errs = append(errs, fmt.Errorf("unsupported output destination: %q", cfg.OutputDestination))
	}
	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver))
	}

	return errors.Join(errs...)
}
