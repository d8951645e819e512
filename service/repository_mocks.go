package service

import (
	"context"

	"luckydraw/events"
	"luckydraw/models"

	"github.com/stretchr/testify/mock"
)

// MockPrizeRepository is a mock implementation of PrizeRepository
type MockPrizeRepository struct {
	mock.Mock
}

func (m *MockPrizeRepository) GetAll(ctx context.Context) ([]*models.Prize, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) GetByRank(ctx context.Context, rank int) (*models.Prize, error) {
	args := m.Called(ctx, rank)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) Upsert(ctx context.Context, prize *models.Prize) error {
	args := m.Called(ctx, prize)
	return args.Error(0)
}

func (m *MockPrizeRepository) UpdateRemaining(ctx context.Context, rank int, remaining int) error {
	args := m.Called(ctx, rank, remaining)
	return args.Error(0)
}

// MockDrawSettingsRepository is a mock implementation of DrawSettingsRepository
type MockDrawSettingsRepository struct {
	mock.Mock
}

func (m *MockDrawSettingsRepository) GetOrCreate(ctx context.Context) (*models.DrawSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrawSettings), args.Error(1)
}

func (m *MockDrawSettingsRepository) Update(ctx context.Context, settings *models.DrawSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	prizeRepo    PrizeRepository
	settingsRepo DrawSettingsRepository
	eventBus     EventPublisher
}

// SetRepositories wires the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(prizeRepo PrizeRepository, settingsRepo DrawSettingsRepository, eventBus EventPublisher) {
	m.prizeRepo = prizeRepo
	m.settingsRepo = settingsRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PrizeRepository() PrizeRepository {
	return m.prizeRepo
}

func (m *MockUnitOfWork) DrawSettingsRepository() DrawSettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockPersistenceGateway is a mock implementation of PersistenceGateway
type MockPersistenceGateway struct {
	mock.Mock
}

func (m *MockPersistenceGateway) Load(ctx context.Context) []*models.Prize {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.Prize)
}

func (m *MockPersistenceGateway) Save(ctx context.Context, prizes []*models.Prize) error {
	args := m.Called(ctx, prizes)
	return args.Error(0)
}

// MockAuthorizationGate is a mock implementation of AuthorizationGate
type MockAuthorizationGate struct {
	mock.Mock
}

func (m *MockAuthorizationGate) CanDraw(ctx context.Context, actorID int64) bool {
	args := m.Called(ctx, actorID)
	return args.Bool(0)
}
