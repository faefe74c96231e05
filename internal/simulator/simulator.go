package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrFeedNotFound     = errors.New("feed not found")
	ErrJunctionNotFound = errors.New("junction not found")
	ErrUnknownKind      = errors.New("unknown incident kind")
)

const (
	AlertActionRaised    = "raised"
	AlertActionResolved  = "resolved"
	AlertActionDismissed = "dismissed"
	AlertActionAssigned  = "assigned"
)

type feedStatusChange struct {
	FeedID string
	Online bool
}

type alertChange struct {
	Alert  models.Alert
	Action string
}

type snapshotRequest struct {
	reschedule bool
}

type Option func(*Simulator)

// WithOutput replaces the destination chosen from the config.
func WithOutput(output OutputDestination) Option {
	return func(s *Simulator) { s.output = output }
}

// WithProgressWriter sets where the progress bar of bounded runs is drawn.
func WithProgressWriter(w io.Writer) Option {
	return func(s *Simulator) { s.progressOut = w }
}

type Simulator struct {
	Config            *models.Config
	Junctions         map[string]*models.Junction
	Feeds             map[string]*models.Feed
	Alerts            *AlertFeed
	TrafficConditions []models.TrafficCondition
	CurrentTime       time.Time
	Rng               *rand.Rand
	EventQueue        *models.EventQueue

	junctionIDs     []string
	feedIDs         []string
	feedsByJunction map[string][]*models.Feed
	alertFactory    *factories.AlertFactory
	environment     models.Environment
	envRng          *rand.Rand // kept apart so the count walk ignores snapshot cadence

	mu          sync.RWMutex
	logger      *zap.Logger
	output      OutputDestination
	progressOut io.Writer

	eventsCount int
	writeErrors int
	initialized bool
}

func NewSimulator(config *models.Config, logger *zap.Logger, opts ...Option) *Simulator {
	sim := &Simulator{
		Config:          config,
		CurrentTime:     config.StartDate,
		Junctions:       make(map[string]*models.Junction),
		Feeds:           make(map[string]*models.Feed),
		feedsByJunction: make(map[string][]*models.Feed),
		Rng:             rand.New(rand.NewSource(config.Seed)),
		EventQueue:      models.NewEventQueue(),
		Alerts:          NewAlertFeed(nil),
		environment:     initialEnvironment(),
		envRng:          rand.New(rand.NewSource(config.Seed + 1)),
		logger:          logger,
		progressOut:     os.Stderr,
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

// Initialize builds the catalogue and schedules the first round of events.
// Run calls it; it is exported for callers that drive Step themselves.
func (s *Simulator) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	s.initializeData()
	s.scheduleInitialEvents()
	s.initialized = true
}

func (s *Simulator) initializeData() {
	fake := factories.NewFaker(s.Config.Seed)
	junctionFactory := factories.NewJunctionFactory(fake)
	feedFactory := factories.NewFeedFactory(fake)
	s.alertFactory = factories.NewAlertFactory(fake)

	now := s.CurrentTime
	s.initializeTrafficConditions()

	for _, j := range junctionFactory.CatalogueJunctions(now) {
		s.addJunction(j, feedFactory.CreateFeeds(j, true, now))
		j.AvgSpeed = speedFor(j.VehicleCount, now)
	}
	for i := 0; i < s.Config.InitialJunctions; i++ {
		j := junctionFactory.CreateJunction(s.Config, now)
		s.addJunction(j, feedFactory.CreateFeeds(j, false, now))
		s.rollUpJunction(j, now)
	}

	junctions := make([]*models.Junction, 0, len(s.junctionIDs))
	for _, id := range s.junctionIDs {
		junctions = append(junctions, s.Junctions[id])
	}
	seed := s.alertFactory.SeedAlerts(junctions, now)
	for _, a := range seed {
		addIncident(s.Junctions[a.JunctionID], a.Kind)
	}
	s.Alerts = NewAlertFeed(seed)

	s.logger.Info("catalogue initialised",
		zap.String("city", s.Config.CityName),
		zap.Int("junctions", len(s.Junctions)),
		zap.Int("feeds", len(s.Feeds)),
		zap.Int("alerts", s.Alerts.Len()))
}

func (s *Simulator) addJunction(j *models.Junction, feeds []*models.Feed) {
	s.Junctions[j.ID] = j
	s.junctionIDs = append(s.junctionIDs, j.ID)
	for _, f := range feeds {
		s.Feeds[f.ID] = f
		s.feedIDs = append(s.feedIDs, f.ID)
		s.feedsByJunction[j.ID] = append(s.feedsByJunction[j.ID], f)
	}
}

func (s *Simulator) scheduleInitialEvents() {
	now := s.CurrentTime
	for _, id := range s.feedIDs {
		s.EventQueue.Enqueue(&models.Event{
			Time: now.Add(nextTickDelay(s.Rng, s.Config.TickMinPeriod, s.Config.TickMaxPeriod)),
			Type: models.EventFeedTick,
			Data: id,
		})
	}
	for _, id := range s.junctionIDs {
		s.EventQueue.Enqueue(&models.Event{
			Time: now.Add(s.Config.JunctionUpdatePeriod),
			Type: models.EventJunctionUpdate,
			Data: id,
		})
	}
	s.EventQueue.Enqueue(&models.Event{
		Time: now,
		Type: models.EventKPISnapshot,
		Data: snapshotRequest{reschedule: true},
	})
}

// Run drives the simulation until EndDate (or forever in continuous mode)
// or until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	if s.output == nil {
		output, err := s.determineOutputDestination(ctx)
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		s.output = output
	}
	defer func() {
		if err := s.output.Close(); err != nil {
			s.logger.Warn("failed to close output", zap.Error(err))
		}
	}()

	s.Initialize()
	s.logger.Info("simulation starting",
		zap.Time("start", s.CurrentTime),
		zap.Time("end", s.Config.EndDate),
		zap.Bool("continuous", s.Config.Continuous))

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoop := context.WithCancel(gctx)
	defer stopLoop()

	if s.Config.Continuous && s.Config.SnapshotSchedule != "" {
		g.Go(func() error {
			return s.runSnapshotSchedule(loopCtx)
		})
	}
	g.Go(func() error {
		defer stopLoop()
		return s.loop(loopCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("simulation completed",
		zap.Time("simTime", s.Now()),
		zap.Int("events", s.eventsCount),
		zap.Int("writeErrors", s.writeErrors))
	return nil
}

func (s *Simulator) loop(ctx context.Context) error {
	ticker := time.NewTicker(s.Config.StepInterval)
	defer ticker.Stop()

	bar := s.newProgressBar()
	if bar != nil {
		defer bar.Finish()
	}

	for s.Config.Continuous || s.Now().Before(s.Config.EndDate) {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Step()
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}
	return nil
}

// Step processes every event due at the current simulation time, writes
// the resulting messages and advances the clock by one StepDuration.
func (s *Simulator) Step() {
	now := s.Now()
	for _, event := range s.EventQueue.DequeueDue(now) {
		s.mu.Lock()
		topic, record, err := s.processEvent(event)
		s.mu.Unlock()
		if err != nil {
			s.logger.Warn("event skipped", zap.String("type", event.Type), zap.Error(err))
			continue
		}
		s.eventsCount++

		msg, err := json.Marshal(record)
		if err != nil {
			s.logger.Error("error serializing event", zap.String("type", event.Type), zap.Error(err))
			continue
		}
		if err := s.output.WriteMessage(topic, msg); err != nil {
			s.writeErrors++
			s.logger.Warn("failed to write message", zap.String("topic", topic), zap.Error(err))
		}
		s.showProgress()
	}

	s.mu.Lock()
	s.CurrentTime = s.CurrentTime.Add(s.Config.StepDuration)
	s.mu.Unlock()
}

func (s *Simulator) processEvent(event *models.Event) (string, interface{}, error) {
	switch event.Type {
	case models.EventFeedTick:
		return s.handleFeedTick(event)
	case models.EventFeedStatus:
		return s.handleFeedStatus(event)
	case models.EventJunctionUpdate:
		return s.handleJunctionUpdate(event)
	case models.EventRaiseAlert:
		return s.handleRaiseAlert(event)
	case models.EventAlertUpdate:
		change := event.Data.(alertChange)
		return TopicAlerts, newAlertEvent(event, change.Alert, change.Action), nil
	case models.EventKPISnapshot:
		return s.handleKPISnapshot(event)
	default:
		return "", nil, fmt.Errorf("unknown event type: %v", event.Type)
	}
}

func (s *Simulator) handleFeedTick(event *models.Event) (string, interface{}, error) {
	feed, ok := s.Feeds[event.Data.(string)]
	if !ok {
		return "", nil, ErrFeedNotFound
	}

	// edge devices drop out and come back on their own
	if feed.Online && s.Rng.Float64() < s.Config.OfflineProbability {
		s.setFeedOnline(feed, false, event.Time)
	} else if !feed.Online && s.Rng.Float64() < s.Config.RecoveryProbability {
		s.setFeedOnline(feed, true, event.Time)
	}

	feed.Counts = NextCounts(s.Rng, feed.Counts, feed.Online)
	feed.LastTick = event.Time

	s.EventQueue.Enqueue(&models.Event{
		Time: event.Time.Add(nextTickDelay(s.Rng, s.Config.TickMinPeriod, s.Config.TickMaxPeriod)),
		Type: models.EventFeedTick,
		Data: feed.ID,
	})

	return TopicVehicleCounts, VehicleCountEvent{
		Timestamp:  event.Time.Unix(),
		EventType:  event.Type,
		FeedID:     feed.ID,
		FeedLabel:  feed.Label,
		JunctionID: feed.JunctionID,
		Online:     feed.Online,
		Cars:       int64(feed.Counts.Cars),
		Buses:      int64(feed.Counts.Buses),
		Bikes:      int64(feed.Counts.Bikes),
		Total:      int64(feed.Counts.Total()),
	}, nil
}

func (s *Simulator) handleFeedStatus(event *models.Event) (string, interface{}, error) {
	change := event.Data.(feedStatusChange)
	feed, ok := s.Feeds[change.FeedID]
	if !ok {
		return "", nil, ErrFeedNotFound
	}
	return TopicFeedStatus, FeedStatusEvent{
		Timestamp:  event.Time.Unix(),
		EventType:  event.Type,
		FeedID:     feed.ID,
		FeedLabel:  feed.Label,
		JunctionID: feed.JunctionID,
		EdgeNode:   feed.EdgeNode,
		Online:     change.Online,
	}, nil
}

func (s *Simulator) handleJunctionUpdate(event *models.Event) (string, interface{}, error) {
	j, ok := s.Junctions[event.Data.(string)]
	if !ok {
		return "", nil, ErrJunctionNotFound
	}
	s.rollUpJunction(j, event.Time)

	if s.Rng.Float64() < s.incidentProbability(j, event.Time) {
		s.EventQueue.Enqueue(&models.Event{
			Time: event.Time,
			Type: models.EventRaiseAlert,
			Data: s.alertFactory.CreateIncident(j, event.Time),
		})
	}

	s.EventQueue.Enqueue(&models.Event{
		Time: event.Time.Add(s.Config.JunctionUpdatePeriod),
		Type: models.EventJunctionUpdate,
		Data: j.ID,
	})

	return TopicJunctionStatus, JunctionStatusEvent{
		Timestamp:    event.Time.Unix(),
		EventType:    event.Type,
		JunctionID:   j.ID,
		Name:         j.Name,
		Status:       j.Status,
		Congestion:   j.Congestion,
		VehicleCount: int64(j.VehicleCount),
		AvgSpeed:     j.AvgSpeed,
		Lat:          j.Location.Lat,
		Lon:          j.Location.Lon,
		Incidents:    append([]string{}, j.Incidents...),
	}, nil
}

func (s *Simulator) handleRaiseAlert(event *models.Event) (string, interface{}, error) {
	alert := event.Data.(*models.Alert)
	s.Alerts.Add(alert)
	if j, ok := s.Junctions[alert.JunctionID]; ok {
		addIncident(j, alert.Kind)
	}
	s.logger.Debug("alert raised",
		zap.String("alert", alert.ID),
		zap.String("kind", alert.Kind),
		zap.String("location", alert.Location))
	return TopicAlerts, newAlertEvent(event, *alert, AlertActionRaised), nil
}

func (s *Simulator) handleKPISnapshot(event *models.Event) (string, interface{}, error) {
	snap := s.snapshotLocked(event.Time)
	env := snap.Environment
	if req, ok := event.Data.(snapshotRequest); ok && req.reschedule {
		s.EventQueue.Enqueue(&models.Event{
			Time: event.Time.Add(s.Config.KPISnapshotPeriod),
			Type: models.EventKPISnapshot,
			Data: snapshotRequest{reschedule: true},
		})
		// readings move once per periodic snapshot
		stepEnvironment(&s.environment, s.envRng)
	}
	return TopicKPISnapshots, KPISnapshotEvent{
		Timestamp:        event.Time.Unix(),
		EventType:        event.Type,
		ActiveAlerts:     int64(snap.ActiveAlerts),
		ResolvedAlerts:   int64(snap.ResolvedAlerts),
		OnlineFeeds:      int64(snap.OnlineFeeds),
		OfflineFeeds:     int64(snap.OfflineFeeds),
		TotalVehicles:    int64(snap.TotalVehicles),
		AvgSpeed:         snap.AvgSpeed,
		CongestionIndex:  snap.CongestionIndex,
		Weather:          env.Weather,
		TemperatureC:     env.TemperatureC,
		AQI:              int64(env.AQI),
		AQICategory:      models.AQICategory(env.AQI),
		CycleAdjustPct:   int64(env.CycleAdjustPct),
		PotholeAlerts:    int64(env.PotholeAlerts),
		BatteryPct:       int64(env.BatteryPct),
		ConnectedDevices: int64(env.ConnectedDevices),
	}, nil
}

func newAlertEvent(event *models.Event, alert models.Alert, action string) AlertEvent {
	rec := AlertEvent{
		Timestamp:  event.Time.Unix(),
		EventType:  event.Type,
		Action:     action,
		AlertID:    alert.ID,
		JunctionID: alert.JunctionID,
		Category:   alert.Category,
		Kind:       alert.Kind,
		Location:   alert.Location,
		Message:    alert.Message,
		Resolved:   alert.Resolved,
		Assignee:   alert.Assignee,
		CreatedAt:  alert.CreatedAt.Unix(),
	}
	if alert.Coordinates != nil {
		rec.Lat = alert.Coordinates.Lat
		rec.Lon = alert.Coordinates.Lon
	}
	return rec
}

// setFeedOnline flips a feed and queues the status record. Callers hold s.mu.
func (s *Simulator) setFeedOnline(feed *models.Feed, online bool, at time.Time) {
	feed.Online = online
	s.EventQueue.Enqueue(&models.Event{
		Time: at,
		Type: models.EventFeedStatus,
		Data: feedStatusChange{FeedID: feed.ID, Online: online},
	})
	s.logger.Debug("feed status changed", zap.String("feed", feed.Label), zap.Bool("online", online))
}

// SetFeedOnline is the operator toggle for a camera feed. The counts reset
// on the feed's next tick while it is offline.
func (s *Simulator) SetFeedOnline(feedID string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.Feeds[feedID]
	if !ok {
		return ErrFeedNotFound
	}
	if feed.Online == online {
		return nil
	}
	s.setFeedOnline(feed, online, s.CurrentTime)
	return nil
}

func (s *Simulator) ResolveAlert(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, err := s.Alerts.Resolve(id)
	if err != nil {
		return err
	}
	s.clearIncident(alert)
	s.queueAlertChange(alert, AlertActionResolved)
	return nil
}

func (s *Simulator) DismissAlert(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, err := s.Alerts.Dismiss(id)
	if err != nil {
		return err
	}
	if !alert.Resolved {
		s.clearIncident(alert)
	}
	s.queueAlertChange(alert, AlertActionDismissed)
	return nil
}

func (s *Simulator) AssignAlert(id, assignee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, err := s.Alerts.Assign(id, assignee)
	if err != nil {
		return err
	}
	s.queueAlertChange(alert, AlertActionAssigned)
	return nil
}

// ReportIncident raises an alert of kind at the junction nearest to loc.
func (s *Simulator) ReportIncident(kind string, loc models.Location) (models.Alert, error) {
	if _, ok := factories.IncidentLabel[kind]; !ok {
		return models.Alert{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.nearestJunction(loc)
	if j == nil {
		return models.Alert{}, ErrJunctionNotFound
	}
	alert := s.alertFactory.CreateIncidentOfKind(kind, j, s.CurrentTime)
	s.EventQueue.Enqueue(&models.Event{
		Time: s.CurrentTime,
		Type: models.EventRaiseAlert,
		Data: alert,
	})
	return *alert, nil
}

func (s *Simulator) queueAlertChange(alert *models.Alert, action string) {
	s.EventQueue.Enqueue(&models.Event{
		Time: s.CurrentTime,
		Type: models.EventAlertUpdate,
		Data: alertChange{Alert: *alert, Action: action},
	})
}

// clearIncident drops the junction incident backing alert unless another
// open alert of the same kind still reports it.
func (s *Simulator) clearIncident(alert *models.Alert) {
	j, ok := s.Junctions[alert.JunctionID]
	if !ok {
		return
	}
	for _, other := range s.Alerts.Active() {
		if other.ID != alert.ID && other.JunctionID == alert.JunctionID && other.Kind == alert.Kind {
			return
		}
	}
	removeIncident(j, alert.Kind)
}

// Snapshot computes the KPI values at the current simulation time.
func (s *Simulator) Snapshot() models.KPISnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(s.CurrentTime)
}

func (s *Simulator) snapshotLocked(at time.Time) models.KPISnapshot {
	snap := models.KPISnapshot{Timestamp: at, Environment: s.environment}
	snap.ActiveAlerts, snap.ResolvedAlerts = s.Alerts.Counts()
	for _, f := range s.Feeds {
		if f.Online {
			snap.OnlineFeeds++
		} else {
			snap.OfflineFeeds++
		}
	}
	snap.Environment.ConnectedDevices = snap.OnlineFeeds
	for _, a := range s.Alerts.Active() {
		if a.Kind == models.AlertKindPothole {
			snap.Environment.PotholeAlerts++
		}
	}
	if len(s.Junctions) == 0 {
		return snap
	}
	var speed, congestion float64
	for _, j := range s.Junctions {
		snap.TotalVehicles += j.VehicleCount
		speed += j.AvgSpeed
		congestion += models.CongestionScore(j.Congestion)
	}
	n := float64(len(s.Junctions))
	snap.AvgSpeed = speed / n
	snap.CongestionIndex = congestion / n
	return snap
}

// Now returns the simulation clock.
func (s *Simulator) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentTime
}

// JunctionList returns copies of all junctions ordered by ID.
func (s *Simulator) JunctionList() []models.Junction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Junction, 0, len(s.junctionIDs))
	for _, id := range s.junctionIDs {
		j := *s.Junctions[id]
		j.Incidents = append([]string{}, j.Incidents...)
		out = append(out, j)
	}
	return out
}

// FeedList returns copies of all feeds ordered by label.
func (s *Simulator) FeedList() []models.Feed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Feed, 0, len(s.Feeds))
	for _, f := range s.Feeds {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (s *Simulator) AlertList(filter models.AlertFilter) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Alerts.List(filter)
}

func (s *Simulator) newProgressBar() *progressbar.ProgressBar {
	if s.Config.Continuous {
		return nil
	}
	steps := int64(s.Config.EndDate.Sub(s.Now()) / s.Config.StepDuration)
	return progressbar.NewOptions64(steps,
		progressbar.OptionSetWriter(s.progressOut),
		progressbar.OptionSetDescription("simulating"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

func (s *Simulator) showProgress() {
	if s.eventsCount%1000 == 0 {
		s.logger.Info("progress",
			zap.Time("simTime", s.Now()),
			zap.Int("events", s.eventsCount))
	}
}
