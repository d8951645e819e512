package service

import (
	"sync"
	"time"

	"luckydraw/config"
	"luckydraw/events"
	"luckydraw/metrics"
	"luckydraw/models"

	log "github.com/sirupsen/logrus"
)

// RevealPhase is the batch-level state of a reveal session
type RevealPhase string

const (
	RevealPhaseRevealing   RevealPhase = "revealing"
	RevealPhaseSummarizing RevealPhase = "summarizing"
	RevealPhaseShipping    RevealPhase = "shipping"
	RevealPhaseDone        RevealPhase = "done"
)

// ItemState is the per-item reveal state
type ItemState int

const (
	ItemPending ItemState = iota
	ItemRevealed
)

func (s ItemState) String() string {
	if s == ItemRevealed {
		return "revealed"
	}
	return "pending"
}

// Timer is a scheduled task that can be cancelled
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RevealItem is one drawn result and its reveal state
type RevealItem struct {
	Result    models.DrawnResult
	State     ItemState
	Triggered bool // a high-rank item was tapped and is waiting out the suspense delay
}

// RevealSnapshot is a point-in-time copy of a sequencer's state
type RevealSnapshot struct {
	SessionID     string
	Phase         RevealPhase
	Items         []RevealItem
	Celebrating   bool
	Summary       []models.SummaryEntry
	NeedsShipping bool
}

// RevealOptions configures a RevealSequencer
type RevealOptions struct {
	SuspenseDelay time.Duration // defaults to config.DefaultSuspenseDelay
	Scheduler     Scheduler     // defaults to time.AfterFunc
}

// RevealSequencer drives the ordered disclosure of one draw batch.
// Normal-rank items reveal on Start; high-rank items (rank 1 or 2) reveal only
// after Trigger plus the suspense delay. Signals go out as events.
type RevealSequencer struct {
	mu sync.Mutex

	id          string
	items       []RevealItem
	summary     []models.SummaryEntry
	shipping    bool
	phase       RevealPhase
	celebrating bool
	seq         uint64 // orders state events across concurrent callers
	started     bool
	closed      bool

	delay     time.Duration
	scheduler Scheduler
	publisher EventPublisher
	timers    map[int]Timer
	done      chan struct{}
}

// NewRevealSequencer creates a sequencer over a copy of results
func NewRevealSequencer(sessionID string, results []models.DrawnResult, publisher EventPublisher, opts RevealOptions) *RevealSequencer {
	if opts.SuspenseDelay <= 0 {
		opts.SuspenseDelay = config.DefaultSuspenseDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timeScheduler{}
	}

	items := make([]RevealItem, len(results))
	for i, r := range results {
		if r.Rank < 1 {
			log.WithFields(log.Fields{
				"sessionID": sessionID,
				"index":     i,
				"rank":      r.Rank,
			}).Warn("Reveal item has an invalid rank, treating it as a normal prize")
		}
		items[i] = RevealItem{Result: r}
	}

	summary := SummarizeBatch(results)

	return &RevealSequencer{
		id:        sessionID,
		items:     items,
		summary:   summary,
		shipping:  NeedsShipping(summary),
		phase:     RevealPhaseRevealing,
		delay:     opts.SuspenseDelay,
		scheduler: opts.Scheduler,
		publisher: publisher,
		timers:    make(map[int]Timer),
		done:      make(chan struct{}),
	}
}

// ID returns the session ID
func (s *RevealSequencer) ID() string {
	return s.id
}

// Done is closed when the sequence reaches the done phase
func (s *RevealSequencer) Done() <-chan struct{} {
	return s.done
}

// Start reveals every normal-rank item in draw order. High-rank items stay pending.
func (s *RevealSequencer) Start() {
	s.mu.Lock()
	if s.started || s.closed || s.phase == RevealPhaseDone {
		s.mu.Unlock()
		return
	}
	s.started = true

	var pending []events.Event
	for i := range s.items {
		if s.items[i].Result.IsHighRank() {
			continue
		}
		pending = append(pending, s.revealLocked(i)...)
	}
	s.mu.Unlock()

	s.publish(pending)
}

// Trigger handles a viewer tap on a high-rank item. The celebration signal turns
// on immediately; the item is revealed after the suspense delay.
// Taps on normal-rank or already triggered items are ignored.
func (s *RevealSequencer) Trigger(index int) error {
	s.mu.Lock()
	if s.closed || s.phase != RevealPhaseRevealing {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		log.WithFields(log.Fields{
			"sessionID": s.id,
			"index":     index,
		}).Warn("Ignoring reveal trigger for unknown item")
		return ErrRevealIndex
	}

	item := &s.items[index]
	if !item.Result.IsHighRank() || item.Triggered || item.State == ItemRevealed {
		s.mu.Unlock()
		return nil
	}
	item.Triggered = true

	var pending []events.Event
	if !s.celebrating {
		s.celebrating = true
		pending = append(pending, s.celebrationEventLocked(true))
		metrics.RecordCelebration(item.Result.Rank)
	}

	s.timers[index] = s.scheduler.AfterFunc(s.delay, func() {
		s.completeReveal(index)
	})
	s.mu.Unlock()

	s.publish(pending)
	return nil
}

// completeReveal runs when a suspense delay elapses
func (s *RevealSequencer) completeReveal(index int) {
	s.mu.Lock()
	delete(s.timers, index)
	if s.closed || s.phase == RevealPhaseDone {
		s.mu.Unlock()
		return
	}
	pending := s.revealLocked(index)
	s.mu.Unlock()

	s.publish(pending)
}

// Summarize moves to the summary phase. Pending items stay pending; the summary
// always covers the whole batch. Calling it again returns the same summary.
func (s *RevealSequencer) Summarize() ([]models.SummaryEntry, bool, error) {
	s.mu.Lock()
	if s.closed || s.phase == RevealPhaseDone {
		s.mu.Unlock()
		return nil, false, ErrInvalidTransition
	}

	var pending []events.Event
	if s.phase == RevealPhaseRevealing {
		pending = append(pending, s.setPhaseLocked(RevealPhaseSummarizing))
	}
	summary := s.summaryCopy()
	shipping := s.shipping
	s.mu.Unlock()

	s.publish(pending)
	return summary, shipping, nil
}

// OpenShipping enters the shipping hand-off. Only valid from the summary phase
// and only when some entry requires shipping.
func (s *RevealSequencer) OpenShipping() ([]models.SummaryEntry, error) {
	s.mu.Lock()
	if s.closed || s.phase != RevealPhaseSummarizing || !s.shipping {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	pending := []events.Event{s.setPhaseLocked(RevealPhaseShipping)}
	summary := s.summaryCopy()
	s.mu.Unlock()

	s.publish(pending)
	return summary, nil
}

// CloseShipping returns from the shipping hand-off to the summary phase
func (s *RevealSequencer) CloseShipping() error {
	s.mu.Lock()
	if s.closed || s.phase != RevealPhaseShipping {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	pending := []events.Event{s.setPhaseLocked(RevealPhaseSummarizing)}
	s.mu.Unlock()

	s.publish(pending)
	return nil
}

// Finish ends the episode. The celebration signal is forced off before the
// done phase is entered. An open shipping hand-off is abandoned.
func (s *RevealSequencer) Finish() error {
	s.mu.Lock()
	if s.closed || (s.phase != RevealPhaseSummarizing && s.phase != RevealPhaseShipping) {
		s.mu.Unlock()
		return ErrInvalidTransition
	}

	pending := s.celebrationOffLocked()
	s.stopTimersLocked()
	pending = append(pending,
		s.setPhaseLocked(RevealPhaseDone),
		events.RevealCompletedEvent{SessionID: s.id, Summary: s.summaryCopy()},
	)
	close(s.done)
	s.mu.Unlock()

	metrics.RecordRevealFinished()
	s.publish(pending)
	return nil
}

// Close tears the sequencer down. The celebration signal is forced off and
// pending reveals are cancelled. Inventory is never touched. Safe to call twice.
func (s *RevealSequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.celebrationOffLocked()
	s.stopTimersLocked()
	s.mu.Unlock()

	s.publish(pending)
}

// Phase returns the current phase
func (s *RevealSequencer) Phase() RevealPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Celebrating reports whether the celebration signal is on
func (s *RevealSequencer) Celebrating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.celebrating
}

// Snapshot returns a copy of the current state
func (s *RevealSequencer) Snapshot() RevealSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]RevealItem, len(s.items))
	copy(items, s.items)

	return RevealSnapshot{
		SessionID:     s.id,
		Phase:         s.phase,
		Items:         items,
		Celebrating:   s.celebrating,
		Summary:       s.summaryCopy(),
		NeedsShipping: s.shipping,
	}
}

func (s *RevealSequencer) revealLocked(index int) []events.Event {
	item := &s.items[index]
	if item.State == ItemRevealed {
		return nil
	}
	item.State = ItemRevealed
	return []events.Event{events.ItemRevealedEvent{
		SessionID: s.id,
		Index:     index,
		Result:    item.Result,
	}}
}

func (s *RevealSequencer) setPhaseLocked(phase RevealPhase) events.Event {
	old := s.phase
	s.phase = phase
	s.seq++
	return events.RevealPhaseChangeEvent{
		SessionID: s.id,
		OldPhase:  string(old),
		NewPhase:  string(phase),
		Seq:       s.seq,
	}
}

func (s *RevealSequencer) celebrationOffLocked() []events.Event {
	if !s.celebrating {
		return nil
	}
	s.celebrating = false
	return []events.Event{s.celebrationEventLocked(false)}
}

func (s *RevealSequencer) celebrationEventLocked(on bool) events.Event {
	s.seq++
	return events.CelebrationChangedEvent{SessionID: s.id, On: on, Seq: s.seq}
}

func (s *RevealSequencer) stopTimersLocked() {
	for index, t := range s.timers {
		t.Stop()
		delete(s.timers, index)
	}
}

func (s *RevealSequencer) summaryCopy() []models.SummaryEntry {
	summary := make([]models.SummaryEntry, len(s.summary))
	copy(summary, s.summary)
	return summary
}

// publish runs outside the lock so publishers may call back into the sequencer
func (s *RevealSequencer) publish(pending []events.Event) {
	if s.publisher == nil {
		return
	}
	for _, e := range pending {
		s.publisher.Publish(e)
	}
}
