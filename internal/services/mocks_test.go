package services

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/notify"
	"github.com/medideal/records-api/internal/query"
	"github.com/medideal/records-api/internal/repository"
)

// Compile-time checks that the mocks satisfy the service contracts
var (
	_ repository.EntityStore[models.Doctor] = (*MockStore[models.Doctor])(nil)
	_ DoctorFinder                          = (*MockStore[models.Doctor])(nil)
	_ PatientFinder                         = (*MockStore[models.Patient])(nil)
	_ RecordRepo                            = (*MockRecordRepo)(nil)
	_ notify.Notifier                       = (*MockNotifier)(nil)
)

// MockStore is a function-field mock of EntityStore
type MockStore[T any] struct {
	FindByIDFunc   func(ctx context.Context, id uuid.UUID) (*T, error)
	FindOneFunc    func(ctx context.Context, filter map[string]interface{}) (*T, error)
	FindFunc       func(ctx context.Context, opts query.Options) ([]T, error)
	CreateFunc     func(ctx context.Context, entity *T) error
	UpdateByIDFunc func(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*T, error)
	DeleteByIDFunc func(ctx context.Context, id uuid.UUID) error

	CreateCallCount int32
}

func (m *MockStore[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockStore[T]) FindOne(ctx context.Context, filter map[string]interface{}) (*T, error) {
	if m.FindOneFunc != nil {
		return m.FindOneFunc(ctx, filter)
	}
	return nil, errors.New("FindOneFunc not implemented in mock")
}

func (m *MockStore[T]) Find(ctx context.Context, opts query.Options) ([]T, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, opts)
	}
	return nil, errors.New("FindFunc not implemented in mock")
}

func (m *MockStore[T]) Create(ctx context.Context, entity *T) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity)
	}
	return nil
}

func (m *MockStore[T]) UpdateByID(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*T, error) {
	if m.UpdateByIDFunc != nil {
		return m.UpdateByIDFunc(ctx, id, updates)
	}
	return nil, errors.New("UpdateByIDFunc not implemented in mock")
}

func (m *MockStore[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, id)
	}
	return errors.New("DeleteByIDFunc not implemented in mock")
}

// MockRecordRepo is a function-field mock of RecordRepo
type MockRecordRepo struct {
	ListOwnedFunc          func(ctx context.Context, doctorID uuid.UUID, opts query.Options) ([]models.Record, error)
	FindPairFunc           func(ctx context.Context, doctorID, patientID uuid.UUID) (*models.Record, error)
	CreateFunc             func(ctx context.Context, record *models.Record) error
	UpdatePairFunc         func(ctx context.Context, doctorID, patientID uuid.UUID, updates map[string]interface{}) (*models.Record, error)
	AppendMessageFunc      func(ctx context.Context, doctorID, patientID uuid.UUID, msg models.Message) (*models.Record, error)
	AppendMessageToAllFunc func(ctx context.Context, doctorID uuid.UUID, msg models.Message) ([]models.Record, error)
}

func (m *MockRecordRepo) ListOwned(ctx context.Context, doctorID uuid.UUID, opts query.Options) ([]models.Record, error) {
	if m.ListOwnedFunc != nil {
		return m.ListOwnedFunc(ctx, doctorID, opts)
	}
	return nil, errors.New("ListOwnedFunc not implemented in mock")
}

func (m *MockRecordRepo) FindPair(ctx context.Context, doctorID, patientID uuid.UUID) (*models.Record, error) {
	if m.FindPairFunc != nil {
		return m.FindPairFunc(ctx, doctorID, patientID)
	}
	return nil, errors.New("FindPairFunc not implemented in mock")
}

func (m *MockRecordRepo) Create(ctx context.Context, record *models.Record) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *MockRecordRepo) UpdatePair(ctx context.Context, doctorID, patientID uuid.UUID, updates map[string]interface{}) (*models.Record, error) {
	if m.UpdatePairFunc != nil {
		return m.UpdatePairFunc(ctx, doctorID, patientID, updates)
	}
	return nil, errors.New("UpdatePairFunc not implemented in mock")
}

func (m *MockRecordRepo) AppendMessage(ctx context.Context, doctorID, patientID uuid.UUID, msg models.Message) (*models.Record, error) {
	if m.AppendMessageFunc != nil {
		return m.AppendMessageFunc(ctx, doctorID, patientID, msg)
	}
	return nil, errors.New("AppendMessageFunc not implemented in mock")
}

func (m *MockRecordRepo) AppendMessageToAll(ctx context.Context, doctorID uuid.UUID, msg models.Message) ([]models.Record, error) {
	if m.AppendMessageToAllFunc != nil {
		return m.AppendMessageToAllFunc(ctx, doctorID, msg)
	}
	return nil, errors.New("AppendMessageToAllFunc not implemented in mock")
}

// MockNotifier records deliveries on a channel so tests can wait for
// the asynchronous fan-out.
type MockNotifier struct {
	SendFunc func(ctx context.Context, n notify.Notification) error
	Sent     chan notify.Notification
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Sent: make(chan notify.Notification, 16)}
}

func (m *MockNotifier) Send(ctx context.Context, n notify.Notification) error {
	if m.Sent != nil {
		m.Sent <- n
	}
	if m.SendFunc != nil {
		return m.SendFunc(ctx, n)
	}
	return nil
}
