package simulator

import (
	"fmt"
	"reflect"

	"github.com/xitongsys/parquet-go/schema"
)

const (
	TopicVehicleCounts  = "vehicle_count_events"
	TopicFeedStatus     = "feed_status_events"
	TopicJunctionStatus = "junction_status_events"
	TopicAlerts         = "alert_events"
	TopicKPISnapshots   = "kpi_snapshot_events"
)

// VehicleCountEvent is one feed tick.
type VehicleCountEvent struct {
	Timestamp  int64  `json:"timestamp" parquet:"name=timestamp, type=INT64"`
	EventType  string `json:"eventType" parquet:"name=eventType, type=BYTE_ARRAY, convertedtype=UTF8"`
	FeedID     string `json:"feedId" parquet:"name=feedId, type=BYTE_ARRAY, convertedtype=UTF8"`
	FeedLabel  string `json:"feedLabel" parquet:"name=feedLabel, type=BYTE_ARRAY, convertedtype=UTF8"`
	JunctionID string `json:"junctionId" parquet:"name=junctionId, type=BYTE_ARRAY, convertedtype=UTF8"`
	Online     bool   `json:"online" parquet:"name=online, type=BOOLEAN"`
	Cars       int64  `json:"cars" parquet:"name=cars, type=INT64"`
	Buses      int64  `json:"buses" parquet:"name=buses, type=INT64"`
	Bikes      int64  `json:"bikes" parquet:"name=bikes, type=INT64"`
	Total      int64  `json:"total" parquet:"name=total, type=INT64"`
}

// FeedStatusEvent records a feed going online or offline.
type FeedStatusEvent struct {
	Timestamp  int64  `json:"timestamp" parquet:"name=timestamp, type=INT64"`
	EventType  string `json:"eventType" parquet:"name=eventType, type=BYTE_ARRAY, convertedtype=UTF8"`
	FeedID     string `json:"feedId" parquet:"name=feedId, type=BYTE_ARRAY, convertedtype=UTF8"`
	FeedLabel  string `json:"feedLabel" parquet:"name=feedLabel, type=BYTE_ARRAY, convertedtype=UTF8"`
	JunctionID string `json:"junctionId" parquet:"name=junctionId, type=BYTE_ARRAY, convertedtype=UTF8"`
	EdgeNode   string `json:"edgeNode" parquet:"name=edgeNode, type=BYTE_ARRAY, convertedtype=UTF8"`
	Online     bool   `json:"online" parquet:"name=online, type=BOOLEAN"`
}

// JunctionStatusEvent is a junction roll-up.
type JunctionStatusEvent struct {
	Timestamp    int64    `json:"timestamp" parquet:"name=timestamp, type=INT64"`
	EventType    string   `json:"eventType" parquet:"name=eventType, type=BYTE_ARRAY, convertedtype=UTF8"`
	JunctionID   string   `json:"junctionId" parquet:"name=junctionId, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name         string   `json:"name" parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status       string   `json:"status" parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	Congestion   string   `json:"congestion" parquet:"name=congestion, type=BYTE_ARRAY, convertedtype=UTF8"`
	VehicleCount int64    `json:"vehicleCount" parquet:"name=vehicleCount, type=INT64"`
	AvgSpeed     float64  `json:"avgSpeed" parquet:"name=avgSpeed, type=DOUBLE"`
	Lat          float64  `json:"lat" parquet:"name=lat, type=DOUBLE"`
	Lon          float64  `json:"lon" parquet:"name=lon, type=DOUBLE"`
	Incidents    []string `json:"incidents" parquet:"name=incidents, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REPEATED"`
}

// AlertEvent records an alert being raised, resolved, dismissed or assigned.
type AlertEvent struct {
	Timestamp  int64   `json:"timestamp" parquet:"name=timestamp, type=INT64"`
	EventType  string  `json:"eventType" parquet:"name=eventType, type=BYTE_ARRAY, convertedtype=UTF8"`
	Action     string  `json:"action" parquet:"name=action, type=BYTE_ARRAY, convertedtype=UTF8"`
	AlertID    string  `json:"alertId" parquet:"name=alertId, type=BYTE_ARRAY, convertedtype=UTF8"`
	JunctionID string  `json:"junctionId" parquet:"name=junctionId, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category   string  `json:"category" parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind       string  `json:"kind" parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	Location   string  `json:"location" parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8"`
	Message    string  `json:"message" parquet:"name=message, type=BYTE_ARRAY, convertedtype=UTF8"`
	Resolved   bool    `json:"resolved" parquet:"name=resolved, type=BOOLEAN"`
	Assignee   string  `json:"assignee" parquet:"name=assignee, type=BYTE_ARRAY, convertedtype=UTF8"`
	CreatedAt  int64   `json:"createdAt" parquet:"name=createdAt, type=INT64"`
	Lat        float64 `json:"lat" parquet:"name=lat, type=DOUBLE"`
	Lon        float64 `json:"lon" parquet:"name=lon, type=DOUBLE"`
}

// KPISnapshotEvent carries the KPI ribbon values and the environment readings.
type KPISnapshotEvent struct {
	Timestamp        int64   `json:"timestamp" parquet:"name=timestamp, type=INT64"`
	EventType        string  `json:"eventType" parquet:"name=eventType, type=BYTE_ARRAY, convertedtype=UTF8"`
	ActiveAlerts     int64   `json:"activeAlerts" parquet:"name=activeAlerts, type=INT64"`
	ResolvedAlerts   int64   `json:"resolvedAlerts" parquet:"name=resolvedAlerts, type=INT64"`
	OnlineFeeds      int64   `json:"onlineFeeds" parquet:"name=onlineFeeds, type=INT64"`
	OfflineFeeds     int64   `json:"offlineFeeds" parquet:"name=offlineFeeds, type=INT64"`
	TotalVehicles    int64   `json:"totalVehicles" parquet:"name=totalVehicles, type=INT64"`
	AvgSpeed         float64 `json:"avgSpeed" parquet:"name=avgSpeed, type=DOUBLE"`
	CongestionIndex  float64 `json:"congestionIndex" parquet:"name=congestionIndex, type=DOUBLE"`
	Weather          string  `json:"weather" parquet:"name=weather, type=BYTE_ARRAY, convertedtype=UTF8"`
	TemperatureC     float64 `json:"temperatureC" parquet:"name=temperatureC, type=DOUBLE"`
	AQI              int64   `json:"aqi" parquet:"name=aqi, type=INT64"`
	AQICategory      string  `json:"aqiCategory" parquet:"name=aqiCategory, type=BYTE_ARRAY, convertedtype=UTF8"`
	CycleAdjustPct   int64   `json:"cycleAdjustPct" parquet:"name=cycleAdjustPct, type=INT64"`
	PotholeAlerts    int64   `json:"potholeAlerts" parquet:"name=potholeAlerts, type=INT64"`
	BatteryPct       int64   `json:"batteryPct" parquet:"name=batteryPct, type=INT64"`
	ConnectedDevices int64   `json:"connectedDevices" parquet:"name=connectedDevices, type=INT64"`
}

var topicRecords = map[string]reflect.Type{
	TopicVehicleCounts:  reflect.TypeOf(VehicleCountEvent{}),
	TopicFeedStatus:     reflect.TypeOf(FeedStatusEvent{}),
	TopicJunctionStatus: reflect.TypeOf(JunctionStatusEvent{}),
	TopicAlerts:         reflect.TypeOf(AlertEvent{}),
	TopicKPISnapshots:   reflect.TypeOf(KPISnapshotEvent{}),
}

// NewRecord returns a pointer to an empty record of the topic's type.
func NewRecord(topic string) (interface{}, error) {
	t, ok := topicRecords[topic]
	if !ok {
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
	return reflect.New(t).Interface(), nil
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	rec, err := NewRecord(topic)
	if err != nil {
		return nil, err
	}
	sh, err := schema.NewSchemaHandlerFromStruct(rec)
	if err != nil {
		return nil, fmt.Errorf("error creating schema for %s: %w", topic, err)
	}
	return sh, nil
}
