package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/notify"
	"github.com/medideal/records-api/internal/query"
	"github.com/medideal/records-api/internal/repository"
	"github.com/medideal/records-api/internal/services"
	"github.com/stretchr/testify/require"
)

// Compile-time checks that the stubs satisfy the handler dependencies
var (
	_ repository.EntityStore[models.Doctor] = (*stubStore[models.Doctor])(nil)
	_ services.RecordRepo                   = (*stubRecordRepo)(nil)
	_ notify.Notifier                       = (*stubNotifier)(nil)
)

// stubStore is a function-field stand-in for the gorm-backed store
type stubStore[T any] struct {
	FindByIDFunc   func(ctx context.Context, id uuid.UUID) (*T, error)
	FindOneFunc    func(ctx context.Context, filter map[string]interface{}) (*T, error)
	FindFunc       func(ctx context.Context, opts query.Options) ([]T, error)
	CreateFunc     func(ctx context.Context, entity *T) error
	UpdateByIDFunc func(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*T, error)
	DeleteByIDFunc func(ctx context.Context, id uuid.UUID) error
}

func (s *stubStore[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	if s.FindByIDFunc != nil {
		return s.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

func (s *stubStore[T]) FindOne(ctx context.Context, filter map[string]interface{}) (*T, error) {
	if s.FindOneFunc != nil {
		return s.FindOneFunc(ctx, filter)
	}
	return nil, errors.New("FindOneFunc not set")
}

func (s *stubStore[T]) Find(ctx context.Context, opts query.Options) ([]T, error) {
	if s.FindFunc != nil {
		return s.FindFunc(ctx, opts)
	}
	return nil, errors.New("FindFunc not set")
}

func (s *stubStore[T]) Create(ctx context.Context, entity *T) error {
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, entity)
	}
	return nil
}

func (s *stubStore[T]) UpdateByID(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*T, error) {
	if s.UpdateByIDFunc != nil {
		return s.UpdateByIDFunc(ctx, id, updates)
	}
	return nil, errors.New("UpdateByIDFunc not set")
}

func (s *stubStore[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if s.DeleteByIDFunc != nil {
		return s.DeleteByIDFunc(ctx, id)
	}
	return errors.New("DeleteByIDFunc not set")
}

// stubRecordRepo is a function-field stand-in for the record repository
type stubRecordRepo struct {
	ListOwnedFunc          func(ctx context.Context, doctorID uuid.UUID, opts query.Options) ([]models.Record, error)
	FindPairFunc           func(ctx context.Context, doctorID, patientID uuid.UUID) (*models.Record, error)
	CreateFunc             func(ctx context.Context, record *models.Record) error
	UpdatePairFunc         func(ctx context.Context, doctorID, patientID uuid.UUID, updates map[string]interface{}) (*models.Record, error)
	AppendMessageFunc      func(ctx context.Context, doctorID, patientID uuid.UUID, msg models.Message) (*models.Record, error)
	AppendMessageToAllFunc func(ctx context.Context, doctorID uuid.UUID, msg models.Message) ([]models.Record, error)
}

func (s *stubRecordRepo) ListOwned(ctx context.Context, doctorID uuid.UUID, opts query.Options) ([]models.Record, error) {
	return s.ListOwnedFunc(ctx, doctorID, opts)
}

func (s *stubRecordRepo) FindPair(ctx context.Context, doctorID, patientID uuid.UUID) (*models.Record, error) {
	return s.FindPairFunc(ctx, doctorID, patientID)
}

func (s *stubRecordRepo) Create(ctx context.Context, record *models.Record) error {
	return s.CreateFunc(ctx, record)
}

func (s *stubRecordRepo) UpdatePair(ctx context.Context, doctorID, patientID uuid.UUID, updates map[string]interface{}) (*models.Record, error) {
	return s.UpdatePairFunc(ctx, doctorID, patientID, updates)
}

func (s *stubRecordRepo) AppendMessage(ctx context.Context, doctorID, patientID uuid.UUID, msg models.Message) (*models.Record, error) {
	return s.AppendMessageFunc(ctx, doctorID, patientID, msg)
}

func (s *stubRecordRepo) AppendMessageToAll(ctx context.Context, doctorID uuid.UUID, msg models.Message) ([]models.Record, error) {
	return s.AppendMessageToAllFunc(ctx, doctorID, msg)
}

type stubNotifier struct{}

func (stubNotifier) Send(ctx context.Context, n notify.Notification) error { return nil }

// doRequest runs one request through a handler mounted on a router
func doRequest(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
