package simulator

import (
	"errors"
	"sort"
	"strings"

	"github.com/chrisdamba/trafficsim/internal/models"
)

var (
	ErrAlertNotFound   = errors.New("alert not found")
	ErrAlertResolved   = errors.New("alert already resolved")
	ErrInvalidAssignee = errors.New("assignee must not be empty")
)

// AlertFeed is the events-and-alerts list, newest first. It is not safe for
// concurrent use; the Simulator guards it with its own lock.
type AlertFeed struct {
	alerts []*models.Alert
}

func NewAlertFeed(seed []*models.Alert) *AlertFeed {
	alerts := append([]*models.Alert(nil), seed...)
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return &AlertFeed{alerts: alerts}
}

func (f *AlertFeed) Add(alert *models.Alert) {
	f.alerts = append([]*models.Alert{alert}, f.alerts...)
}

func (f *AlertFeed) Get(id string) (*models.Alert, error) {
	i := f.indexOf(id)
	if i < 0 {
		return nil, ErrAlertNotFound
	}
	return f.alerts[i], nil
}

func (f *AlertFeed) Resolve(id string) (*models.Alert, error) {
	alert, err := f.Get(id)
	if err != nil {
		return nil, err
	}
	if alert.Resolved {
		return nil, ErrAlertResolved
	}
	alert.Resolved = true
	return alert, nil
}

// Dismiss removes the alert from the feed and returns it.
func (f *AlertFeed) Dismiss(id string) (*models.Alert, error) {
	i := f.indexOf(id)
	if i < 0 {
		return nil, ErrAlertNotFound
	}
	alert := f.alerts[i]
	f.alerts = append(f.alerts[:i], f.alerts[i+1:]...)
	return alert, nil
}

func (f *AlertFeed) Assign(id, assignee string) (*models.Alert, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, ErrInvalidAssignee
	}
	alert, err := f.Get(id)
	if err != nil {
		return nil, err
	}
	if alert.Resolved {
		return nil, ErrAlertResolved
	}
	alert.Assignee = assignee
	return alert, nil
}

// List returns copies of the alerts matching filter, newest first.
func (f *AlertFeed) List(filter models.AlertFilter) []models.Alert {
	out := make([]models.Alert, 0, len(f.alerts))
	for _, a := range f.alerts {
		if filter.Match(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (f *AlertFeed) Active() []models.Alert {
	unresolved := false
	return f.List(models.AlertFilter{Resolved: &unresolved})
}

// Counts returns the number of unresolved and resolved alerts.
func (f *AlertFeed) Counts() (active, resolved int) {
	for _, a := range f.alerts {
		if a.Resolved {
			resolved++
		} else {
			active++
		}
	}
	return active, resolved
}

func (f *AlertFeed) Len() int {
	return len(f.alerts)
}

func (f *AlertFeed) indexOf(id string) int {
	for i, a := range f.alerts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
