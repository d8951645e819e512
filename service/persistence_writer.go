package service

import (
	"context"
	"sync"
	"time"

	"luckydraw/events"
	"luckydraw/metrics"
	"luckydraw/models"

	log "github.com/sirupsen/logrus"
)

const saveTimeout = 10 * time.Second

// persistenceWriter saves inventory snapshots on a single goroutine. Each
// snapshot is the complete inventory, so a newer one replaces any snapshot
// still waiting and a slow database never holds up a draw. Failures are
// reported, never retried.
type persistenceWriter struct {
	gateway   PersistenceGateway
	publisher EventPublisher

	mu      sync.Mutex
	pending []*models.Prize
	closed  bool

	wake      chan struct{}
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newPersistenceWriter(gateway PersistenceGateway, publisher EventPublisher) *persistenceWriter {
	w := &persistenceWriter{
		gateway:   gateway,
		publisher: publisher,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue replaces the waiting snapshot and wakes the writer. It never blocks on a save.
func (w *persistenceWriter) Enqueue(snapshot []*models.Prize) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		log.WithField("totalRemaining", TotalRemaining(snapshot)).Warn("Inventory snapshot dropped after writer closed")
		return
	}
	w.pending = snapshot
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting snapshots and waits for the last one to be saved
func (w *persistenceWriter) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.stop)
	})
	w.wg.Wait()
}

func (w *persistenceWriter) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.wake:
			w.saveLatest()
		case <-w.stop:
			w.saveLatest()
			return
		}
	}
}

func (w *persistenceWriter) take() []*models.Prize {
	w.mu.Lock()
	defer w.mu.Unlock()
	snapshot := w.pending
	w.pending = nil
	return snapshot
}

func (w *persistenceWriter) saveLatest() {
	snapshot := w.take()
	if snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	err := w.gateway.Save(ctx, snapshot)
	cancel()

	if err == nil {
		return
	}

	total := TotalRemaining(snapshot)
	metrics.RecordPersistenceFailure()
	log.WithFields(log.Fields{
		"totalRemaining": total,
		"error":          err,
	}).Error("Failed to persist inventory after draw")

	if w.publisher != nil {
		w.publisher.Publish(events.PersistenceFailedEvent{TotalRemaining: total, Err: err})
	}
}
