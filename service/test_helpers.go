package service

import (
	"sync"
	"testing"
	"time"

	"luckydraw/events"
	"luckydraw/models"

	"github.com/stretchr/testify/mock"
)

// Test IDs
const (
	TestAdminID  = 111111
	TestViewerID = 222222
)

// TestMocks holds all mocks for easy access
type TestMocks struct {
	Factory        *MockUnitOfWorkFactory
	UoW            *MockUnitOfWork
	PrizeRepo      *MockPrizeRepository
	SettingsRepo   *MockDrawSettingsRepository
	EventPublisher *MockEventPublisher
}

// NewTestMocks creates a new set of mocks with the unit of work wired to the factory
func NewTestMocks() *TestMocks {
	m := &TestMocks{
		Factory:        new(MockUnitOfWorkFactory),
		UoW:            new(MockUnitOfWork),
		PrizeRepo:      new(MockPrizeRepository),
		SettingsRepo:   new(MockDrawSettingsRepository),
		EventPublisher: new(MockEventPublisher),
	}
	m.UoW.SetRepositories(m.PrizeRepo, m.SettingsRepo, m.EventPublisher)
	return m
}

// ExpectTransaction sets up a unit of work that begins and rolls back,
// committing when commit is true
func (m *TestMocks) ExpectTransaction(commit bool) {
	m.Factory.On("Create").Return(m.UoW)
	m.UoW.On("Begin", mock.Anything).Return(nil)
	if commit {
		m.UoW.On("Commit").Return(nil)
	}
	m.UoW.On("Rollback").Return(nil)
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.Factory.AssertExpectations(t)
	m.UoW.AssertExpectations(t)
	m.PrizeRepo.AssertExpectations(t)
	m.SettingsRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// TestPrizes returns a fresh inventory of 100 units across three ranks
func TestPrizes() []*models.Prize {
	return []*models.Prize{
		{Rank: 1, Name: "Grand Prize", Remaining: 2, RequiresShipping: true},
		{Rank: 2, Name: "Tablet", Remaining: 3, RequiresShipping: true},
		{Rank: 3, Name: "Sticker", Remaining: 95},
	}
}

// SequenceRand returns the queued values in order (each reduced mod n), then 0
type SequenceRand struct {
	values []int
}

// NewSequenceRand creates a deterministic random source
func NewSequenceRand(values ...int) *SequenceRand {
	return &SequenceRand{values: values}
}

func (r *SequenceRand) Intn(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

// RecordingPublisher records published events in order
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// OfType returns the recorded events with the given type
func (p *RecordingPublisher) OfType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range p.Events() {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// ManualScheduler records scheduled tasks; tests fire them explicitly
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{delay: d, fn: f}
	s.tasks = append(s.tasks, task)
	return task
}

// Pending returns the number of scheduled tasks neither fired nor stopped
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Delays returns the delay of every scheduled task
func (s *ManualScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.delay
	}
	return out
}

// FireAll runs every pending task. Stopped tasks are skipped.
func (s *ManualScheduler) FireAll() {
	s.mu.Lock()
	var due []*manualTask
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// FireStale runs every task, including stopped ones, to simulate a timer
// that fired while it was being cancelled
func (s *ManualScheduler) FireStale() {
	s.mu.Lock()
	due := append([]*manualTask(nil), s.tasks...)
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}
