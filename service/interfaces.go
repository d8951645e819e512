package service

import (
	"context"

	"luckydraw/events"
	"luckydraw/models"
)

// PrizeRepository defines the interface for prize inventory data access
type PrizeRepository interface {
	// GetAll returns every prize ordered by rank
	GetAll(ctx context.Context) ([]*models.Prize, error)

	// GetByRank retrieves a prize by its rank, nil if it does not exist
	GetByRank(ctx context.Context, rank int) (*models.Prize, error)

	// Upsert creates the prize or replaces its name, remaining count and shipping flag
	Upsert(ctx context.Context, prize *models.Prize) error

	// UpdateRemaining sets the remaining count for a rank
	UpdateRemaining(ctx context.Context, rank int, remaining int) error
}

// DrawSettingsRepository defines the interface for draw settings data access
type DrawSettingsRepository interface {
	// GetOrCreate returns the settings row, creating the default one if missing
	GetOrCreate(ctx context.Context) (*models.DrawSettings, error)

	// Update stores the closed flag and display mode
	Update(ctx context.Context, settings *models.DrawSettings) error
}

// EventPublisher receives events raised by services
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repository calls into one transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PrizeRepository() PrizeRepository
	DrawSettingsRepository() DrawSettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// PersistenceGateway loads and saves prize inventory snapshots
type PersistenceGateway interface {
	// Load returns the current snapshot. Failures yield an empty pool, never an error.
	Load(ctx context.Context) []*models.Prize

	// Save stores the remaining counts of the snapshot
	Save(ctx context.Context, prizes []*models.Prize) error
}

// AuthorizationGate decides whether an actor may run a draw
type AuthorizationGate interface {
	CanDraw(ctx context.Context, actorID int64) bool
}

// DrawService runs draws against the session inventory
type DrawService interface {
	// Start loads the inventory snapshot and draw settings
	Start(ctx context.Context) error

	// Status returns the current inventory and availability
	Status(ctx context.Context) (*models.DrawStatus, error)

	// Draw draws count prizes for the actor; count is clamped to 1-100
	Draw(ctx context.Context, actorID int64, count int) (*models.DrawOutcome, error)

	// SetClosed opens or closes the draw
	SetClosed(ctx context.Context, actorID int64, closed bool) error

	// SetDisplayMode changes how prizes are labelled
	SetDisplayMode(ctx context.Context, actorID int64, mode models.DisplayMode) error

	// Close waits for pending inventory saves
	Close()
}
