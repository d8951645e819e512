package events

import (
	"context"
	"sync"

	"luckydraw/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePrizeDrawn         EventType = "prize_drawn"
	EventTypePersistenceFailed  EventType = "persistence_failed"
	EventTypeInventorySaved     EventType = "inventory_saved"
	EventTypeDrawSettingsChange EventType = "draw_settings_change"
	EventTypeItemRevealed       EventType = "item_revealed"
	EventTypeCelebrationChanged EventType = "celebration_changed"
	EventTypeRevealPhaseChange  EventType = "reveal_phase_change"
	EventTypeRevealCompleted    EventType = "reveal_completed"
	EventTypeShippingRequested  EventType = "shipping_requested"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PrizeDrawnEvent is emitted after a draw has mutated the in-memory inventory
type PrizeDrawnEvent struct {
	ActorID        int64
	Results        []models.DrawnResult
	TotalRemaining int
}

func (e PrizeDrawnEvent) Type() EventType {
	return EventTypePrizeDrawn
}

// PersistenceFailedEvent reports that saving the inventory after a draw failed.
// The draw itself stands.
type PersistenceFailedEvent struct {
	TotalRemaining int
	Err            error
}

func (e PersistenceFailedEvent) Type() EventType {
	return EventTypePersistenceFailed
}

// InventorySavedEvent is emitted inside the unit of work that saved the inventory
type InventorySavedEvent struct {
	TotalRemaining int
}

func (e InventorySavedEvent) Type() EventType {
	return EventTypeInventorySaved
}

// DrawSettingsChangeEvent is emitted when the closed flag or display mode changes
type DrawSettingsChangeEvent struct {
	ActorID  int64
	Settings models.DrawSettings
}

func (e DrawSettingsChangeEvent) Type() EventType {
	return EventTypeDrawSettingsChange
}

// ItemRevealedEvent marks an item of a reveal session as shown to the viewer
type ItemRevealedEvent struct {
	SessionID string
	Index     int
	Result    models.DrawnResult
}

func (e ItemRevealedEvent) Type() EventType {
	return EventTypeItemRevealed
}

// CelebrationChangedEvent toggles the celebratory effect in the presentation layer.
// Handlers may observe events of one session out of order; the highest Seq wins.
type CelebrationChangedEvent struct {
	SessionID string
	On        bool
	Seq       uint64
}

func (e CelebrationChangedEvent) Type() EventType {
	return EventTypeCelebrationChanged
}

// RevealPhaseChangeEvent represents a reveal session phase transition
type RevealPhaseChangeEvent struct {
	SessionID string
	OldPhase  string
	NewPhase  string
	Seq       uint64
}

func (e RevealPhaseChangeEvent) Type() EventType {
	return EventTypeRevealPhaseChange
}

// RevealCompletedEvent signals that a draw/reveal episode is complete
type RevealCompletedEvent struct {
	SessionID string
	Summary   []models.SummaryEntry
}

func (e RevealCompletedEvent) Type() EventType {
	return EventTypeRevealCompleted
}

// ShippingRequestedEvent is emitted when the viewer submits the shipping hand-off.
// Details holds the submitted form fields; they are forwarded, never stored.
type ShippingRequestedEvent struct {
	SessionID string
	ActorID   int64
	Entries   []models.SummaryEntry
	Details   map[string]string
}

func (e ShippingRequestedEvent) Type() EventType {
	return EventTypeShippingRequested
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines; a panicking handler is logged and dropped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits the event with a background context
func (b *Bus) Publish(event Event) {
	b.Emit(context.Background(), event)
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus")

	// Handlers outlive the transaction, so they get a detached context
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
