package service

import (
	"context"
	"errors"
	"fmt"

	"luckydraw/events"
	"luckydraw/models"

	log "github.com/sirupsen/logrus"
)

type prizeStore struct {
	uowFactory UnitOfWorkFactory
}

// NewPrizeStore creates the database-backed persistence gateway
func NewPrizeStore(uowFactory UnitOfWorkFactory) PersistenceGateway {
	return &prizeStore{uowFactory: uowFactory}
}

func (s *prizeStore) Load(ctx context.Context) []*models.Prize {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Warnf("Failed to begin transaction for prize load, using empty pool: %v", err)
		return []*models.Prize{}
	}
	defer uow.Rollback()

	prizes, err := uow.PrizeRepository().GetAll(ctx)
	if err != nil {
		log.Warnf("Failed to load prizes, using empty pool: %v", err)
		return []*models.Prize{}
	}
	if prizes == nil {
		return []*models.Prize{}
	}
	return prizes
}

func (s *prizeStore) Save(ctx context.Context, prizes []*models.Prize) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrPersistenceWrite, err)
	}
	defer uow.Rollback() // No-op if already committed

	saved := 0
	for _, p := range prizes {
		err := uow.PrizeRepository().UpdateRemaining(ctx, p.Rank, p.Remaining)
		if errors.Is(err, ErrUnknownRank) {
			// Rank was removed from the store since the session loaded
			log.WithFields(log.Fields{
				"rank":      p.Rank,
				"remaining": p.Remaining,
			}).Warn("Skipping unknown rank while saving inventory")
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: failed to update rank %d: %v", ErrPersistenceWrite, p.Rank, err)
		}
		saved += p.Remaining
	}

	uow.EventBus().Publish(events.InventorySavedEvent{TotalRemaining: saved})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", ErrPersistenceWrite, err)
	}
	return nil
}
