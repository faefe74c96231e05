package models

const (
	JunctionStatusNormal  = "normal"
	JunctionStatusWarning = "warning"
	JunctionStatusAlert   = "alert"

	CongestionLow    = "low"
	CongestionMedium = "medium"
	CongestionHigh   = "high"

	AlertCategoryAlert   = "alert"
	AlertCategoryWarning = "warning"
	AlertCategoryInfo    = "info"

	AlertKindAccident   = "accident"
	AlertKindSignal     = "signal"
	AlertKindRoadWork   = "roadwork"
	AlertKindPothole    = "pothole"
	AlertKindViolation  = "violation"
	AlertKindWeather    = "weather"
	AlertKindCongestion = "congestion"

	OutputFormatConsole  = "console"
	OutputFormatJSON     = "json"
	OutputFormatCSV      = "csv"
	OutputFormatParquet  = "parquet"
	OutputFormatPostgres = "postgres"

	OutputDestinationLocal = "local"
	OutputDestinationS3    = "s3"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Vehicle-count bands of the map legend ("0-40", "40-80", "80+").
const (
	MediumCongestionThreshold = 40
	HighCongestionThreshold   = 80
)
