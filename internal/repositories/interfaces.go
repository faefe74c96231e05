package repositories

import (
	"context"

	"github.com/chrisdamba/trafficsim/internal/models"
)

type JunctionRepository interface {
	BulkCreate(ctx context.Context, junctions []*models.Junction) error
	GetAll(ctx context.Context) ([]*models.Junction, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type FeedRepository interface {
	BulkCreate(ctx context.Context, feeds []*models.Feed) error
	GetAll(ctx context.Context) ([]*models.Feed, error)
	GetByJunctionID(ctx context.Context, junctionID string) ([]*models.Feed, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type AlertRepository interface {
	BulkCreate(ctx context.Context, alerts []*models.Alert) error
	GetAll(ctx context.Context) ([]*models.Alert, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// Catalogue groups the repositories the seed command writes to.
type Catalogue struct {
	Junctions JunctionRepository
	Feeds     FeedRepository
	Alerts    AlertRepository

	// InTx runs fn with repositories bound to a single transaction. When nil,
	// Replace is best-effort and a failure can leave a partial catalogue.
	InTx func(ctx context.Context, fn func(Catalogue) error) error
}

// Replace clears the stored catalogue and writes the given one in its place.
func (c Catalogue) Replace(ctx context.Context, junctions []*models.Junction, feeds []*models.Feed, alerts []*models.Alert) error {
	if c.InTx == nil {
		return c.replace(ctx, junctions, feeds, alerts)
	}
	return c.InTx(ctx, func(tx Catalogue) error {
		return tx.replace(ctx, junctions, feeds, alerts)
	})
}

// Feeds and alerts reference junctions, so they are deleted first and
// inserted last.
func (c Catalogue) replace(ctx context.Context, junctions []*models.Junction, feeds []*models.Feed, alerts []*models.Alert) error {
	if err := c.Alerts.DeleteAll(ctx); err != nil {
		return err
	}
	if err := c.Feeds.DeleteAll(ctx); err != nil {
		return err
	}
	if err := c.Junctions.DeleteAll(ctx); err != nil {
		return err
	}
	if err := c.Junctions.BulkCreate(ctx, junctions); err != nil {
		return err
	}
	if err := c.Feeds.BulkCreate(ctx, feeds); err != nil {
		return err
	}
	return c.Alerts.BulkCreate(ctx, alerts)
}
