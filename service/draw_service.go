package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"luckydraw/config"
	"luckydraw/events"
	"luckydraw/metrics"
	"luckydraw/models"

	log "github.com/sirupsen/logrus"
)

// DrawServiceConfig holds the draw settings the service needs from config
type DrawServiceConfig struct {
	DefaultDisplayMode models.DisplayMode
	LowStockThreshold  int
}

type drawService struct {
	uowFactory UnitOfWorkFactory
	gateway    PersistenceGateway
	gate       AuthorizationGate
	engine     *DrawEngine
	publisher  EventPublisher
	cfg        DrawServiceConfig
	writer     *persistenceWriter

	// mu serialises draws against the session snapshot
	mu       sync.Mutex
	prizes   []*models.Prize
	settings models.DrawSettings
	closed   bool
}

// NewDrawService creates a draw service. Inventory saves run asynchronously
// and report failures to publisher.
func NewDrawService(uowFactory UnitOfWorkFactory, gateway PersistenceGateway, gate AuthorizationGate, engine *DrawEngine, publisher EventPublisher, cfg DrawServiceConfig) DrawService {
	if cfg.DefaultDisplayMode == "" {
		cfg.DefaultDisplayMode = models.DisplayModeBoth
	}
	if engine == nil {
		engine = NewDrawEngine(nil)
	}
	return &drawService{
		uowFactory: uowFactory,
		gateway:    gateway,
		gate:       gate,
		engine:     engine,
		publisher:  publisher,
		cfg:        cfg,
		writer:     newPersistenceWriter(gateway, publisher),
		settings:   models.DrawSettings{DisplayMode: cfg.DefaultDisplayMode},
	}
}

func (s *drawService) Start(ctx context.Context) error {
	prizes := s.gateway.Load(ctx)

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load draw settings: %w", err)
	}

	s.mu.Lock()
	s.prizes = prizes
	s.settings = *settings
	total := TotalRemaining(prizes)
	s.mu.Unlock()

	metrics.SetInventoryRemaining(total)
	log.WithFields(log.Fields{
		"prizeCount":     len(prizes),
		"totalRemaining": total,
		"closed":         settings.Closed,
	}).Info("Draw session loaded")
	return nil
}

func (s *drawService) loadSettings(ctx context.Context) (*models.DrawSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.DrawSettingsRepository().GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw settings: %w", err)
	}
	if settings.DisplayMode == "" {
		settings.DisplayMode = s.cfg.DefaultDisplayMode
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return settings, nil
}

func (s *drawService) Status(ctx context.Context) (*models.DrawStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := TotalRemaining(s.prizes)
	return &models.DrawStatus{
		Prizes:         models.ClonePrizes(s.prizes),
		TotalRemaining: total,
		Closed:         s.settings.Closed,
		DisplayMode:    s.settings.DisplayMode,
		LowStock:       total > 0 && total <= s.cfg.LowStockThreshold,
	}, nil
}

func (s *drawService) Draw(ctx context.Context, actorID int64, count int) (*models.DrawOutcome, error) {
	if !s.gate.CanDraw(ctx, actorID) {
		metrics.RecordDraw("denied")
		return nil, ErrNotAuthorized
	}

	count = config.ClampDrawCount(count)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("draw service is shut down: %w", ErrDrawClosed)
	}
	if s.settings.Closed || TotalRemaining(s.prizes) == 0 {
		s.mu.Unlock()
		metrics.RecordDraw("closed")
		return nil, ErrDrawClosed
	}

	results, err := s.engine.Draw(s.prizes, count)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, ErrInsufficientInventory) {
			metrics.RecordDraw("insufficient")
		} else {
			metrics.RecordDraw("error")
		}
		return nil, err
	}

	// Handing off under mu keeps the writer's slot on the newest snapshot
	snapshot := models.ClonePrizes(s.prizes)
	s.writer.Enqueue(models.ClonePrizes(snapshot))
	s.mu.Unlock()

	total := TotalRemaining(snapshot)
	recordDrawMetrics(results, total)

	log.WithFields(log.Fields{
		"actorID":        actorID,
		"count":          count,
		"totalRemaining": total,
	}).Info("Prizes drawn")

	if s.publisher != nil {
		s.publisher.Publish(events.PrizeDrawnEvent{
			ActorID:        actorID,
			Results:        results,
			TotalRemaining: total,
		})
	}

	return &models.DrawOutcome{
		Results:        results,
		Prizes:         snapshot,
		TotalRemaining: total,
	}, nil
}

func recordDrawMetrics(results []models.DrawnResult, total int) {
	metrics.RecordDraw("success")
	perRank := make(map[int]int)
	for _, r := range results {
		perRank[r.Rank]++
	}
	for rank, n := range perRank {
		metrics.RecordUnitsDrawn(rank, n)
	}
	metrics.SetInventoryRemaining(total)
}

func (s *drawService) SetClosed(ctx context.Context, actorID int64, closed bool) error {
	return s.updateSettings(ctx, actorID, func(settings *models.DrawSettings) {
		settings.Closed = closed
	})
}

func (s *drawService) SetDisplayMode(ctx context.Context, actorID int64, mode models.DisplayMode) error {
	if _, err := models.ParseDisplayMode(string(mode)); err != nil {
		return err
	}
	return s.updateSettings(ctx, actorID, func(settings *models.DrawSettings) {
		settings.DisplayMode = mode
	})
}

func (s *drawService) updateSettings(ctx context.Context, actorID int64, apply func(*models.DrawSettings)) error {
	if !s.gate.CanDraw(ctx, actorID) {
		return ErrNotAuthorized
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.DrawSettingsRepository().GetOrCreate(ctx)
	if err != nil {
		return fmt.Errorf("failed to get draw settings: %w", err)
	}
	apply(settings)

	if err := uow.DrawSettingsRepository().Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update draw settings: %w", err)
	}

	uow.EventBus().Publish(events.DrawSettingsChangeEvent{ActorID: actorID, Settings: *settings})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	s.settings = *settings
	s.mu.Unlock()
	return nil
}

func (s *drawService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.writer.Close()
}
