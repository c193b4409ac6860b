package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/database"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository handles record database operations beyond the
// generic store: pair lookups and message appends.
type RecordRepository struct {
	*Store[models.Record]
}

// NewRecordRepository creates a record repository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{Store: NewStore[models.Record]()}
}

// ListOwned retrieves the records owned by one doctor, with the fetch
// plan from opts applied and patient references preloaded.
func (r *RecordRepository) ListOwned(ctx context.Context, doctorID uuid.UUID, opts query.Options) ([]models.Record, error) {
	var records []models.Record
	tx := database.DB.WithContext(ctx).
		Model(&models.Record{}).
		Where("doctor_id = ?", doctorID)
	tx, err := opts.Apply(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Preload("Patient").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list owned records: %w", err)
	}
	return records, nil
}

// FindPair retrieves the record between one doctor and one patient
func (r *RecordRepository) FindPair(ctx context.Context, doctorID, patientID uuid.UUID) (*models.Record, error) {
	var record models.Record
	err := database.DB.WithContext(ctx).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Preload("Patient").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdatePair applies a partial update to the pair's record and returns
// the fresh row.
func (r *RecordRepository) UpdatePair(ctx context.Context, doctorID, patientID uuid.UUID, updates map[string]interface{}) (*models.Record, error) {
	var record models.Record
	tx := database.DB.WithContext(ctx).
		Model(&record).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindPair(ctx, doctorID, patientID)
}

// AppendMessage appends one message to the pair's thread in a single
// atomic update.
func (r *RecordRepository) AppendMessage(ctx context.Context, doctorID, patientID uuid.UUID, msg models.Message) (*models.Record, error) {
	payload, err := json.Marshal(models.Messages{msg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	var record models.Record
	tx := database.DB.WithContext(ctx).
		Model(&record).
		Clauses(clause.Returning{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Update("messages", gorm.Expr("messages || ?::jsonb", string(payload)))
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

// AppendMessageToAll appends the same message to every record owned by
// the doctor in one batch statement and returns the affected rows, so
// notification fan-out needs no second read.
func (r *RecordRepository) AppendMessageToAll(ctx context.Context, doctorID uuid.UUID, msg models.Message) ([]models.Record, error) {
	payload, err := json.Marshal(models.Messages{msg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	var records []models.Record
	tx := database.DB.WithContext(ctx).
		Model(&records).
		Clauses(clause.Returning{}).
		Where("doctor_id = ?", doctorID).
		Update("messages", gorm.Expr("messages || ?::jsonb", string(payload)))
	if tx.Error != nil {
		return nil, tx.Error
	}
	return records, nil
}
