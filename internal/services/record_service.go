package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/notify"
	"github.com/medideal/records-api/internal/query"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const msgNoPair = "There is no record between this doctor and this patient"

const notifyTimeout = 15 * time.Second

// DoctorFinder resolves doctors by id
type DoctorFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error)
}

// PatientFinder resolves patients by id
type PatientFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
}

// RecordRepo is the record storage surface the service depends on
type RecordRepo interface {
	ListOwned(ctx context.Context, doctorID uuid.UUID, opts query.Options) ([]models.Record, error)
	FindPair(ctx context.Context, doctorID, patientID uuid.UUID) (*models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	UpdatePair(ctx context.Context, doctorID, patientID uuid.UUID, updates map[string]interface{}) (*models.Record, error)
	AppendMessage(ctx context.Context, doctorID, patientID uuid.UUID, msg models.Message) (*models.Record, error)
	AppendMessageToAll(ctx context.Context, doctorID uuid.UUID, msg models.Message) ([]models.Record, error)
}

// RecordService is the ownership engine: every record-targeting
// operation is scoped by the owning doctor's id, so a non-owning doctor
// observes NotFound rather than existence.
type RecordService struct {
	records  RecordRepo
	doctors  DoctorFinder
	patients PatientFinder
	notifier notify.Notifier
	from     string
	log      zerolog.Logger
}

// NewRecordService creates a record service
func NewRecordService(
	records RecordRepo,
	doctors DoctorFinder,
	patients PatientFinder,
	notifier notify.Notifier,
	from string,
	log zerolog.Logger,
) *RecordService {
	return &RecordService{
		records:  records,
		doctors:  doctors,
		patients: patients,
		notifier: notifier,
		from:     from,
		log:      log,
	}
}

// CreateRecordInput carries the clinical fields of a new record
type CreateRecordInput struct {
	DoctorID    uuid.UUID
	PatientID   uuid.UUID
	Notes       string
	SessionDate time.Time
	Treatment   string
}

// ListOwned lists the records owned by one doctor with their patient
// references expanded.
func (s *RecordService) ListOwned(ctx context.Context, doctorID uuid.UUID, opts query.Options) ([]models.OwnedRecord, error) {
	records, err := s.records.ListOwned(ctx, doctorID, opts)
	if err != nil {
		return nil, err
	}

	owned := make([]models.OwnedRecord, 0, len(records))
	for _, record := range records {
		owned = append(owned, expand(record))
	}
	return owned, nil
}

// GetOwned retrieves the record between the doctor and one patient
func (s *RecordService) GetOwned(ctx context.Context, doctorID, patientID uuid.UUID) (*models.OwnedRecord, error) {
	record, err := s.records.FindPair(ctx, doctorID, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNoPair)
		}
		return nil, err
	}
	expanded := expand(*record)
	return &expanded, nil
}

// Create creates the record between a doctor and a patient. Both
// referenced accounts must exist; pair uniqueness is enforced by the
// storage layer so concurrent creates race safely. The patient is
// notified asynchronously.
func (s *RecordService) Create(ctx context.Context, in CreateRecordInput) (*models.Record, error) {
	doctor, err := s.doctors.FindByID(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Doctor not found")
		}
		return nil, err
	}

	patient, err := s.patients.FindByID(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Patient not found")
		}
		return nil, err
	}

	record := &models.Record{
		DoctorID:    in.DoctorID,
		PatientID:   in.PatientID,
		Notes:       in.Notes,
		SessionDate: in.SessionDate,
		Treatment:   in.Treatment,
		Messages:    models.Messages{},
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.notifyAsync(patient, doctor,
		"New medical record",
		fmt.Sprintf("Doctor %s created a new medical record for you.", doctor.Name),
	)
	return record, nil
}

// UpdateOwned applies a partial update restricted to clinical fields
// and notifies the patient which fields changed.
func (s *RecordService) UpdateOwned(ctx context.Context, doctorID, patientID uuid.UUID, updates map[string]interface{}, changedFields []string) (*models.Record, error) {
	record, err := s.records.UpdatePair(ctx, doctorID, patientID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNoPair)
		}
		return nil, err
	}

	s.notifyPairAsync(ctx, record,
		"Your medical record was updated",
		fmt.Sprintf("Your doctor updated the following fields of your medical record: %s.", strings.Join(changedFields, ", ")),
	)
	return record, nil
}

// SendMessage appends one message to the pair's thread and notifies
// the patient.
func (s *RecordService) SendMessage(ctx context.Context, doctorID, patientID uuid.UUID, text string) (*models.Record, error) {
	msg := models.Message{Text: text, Date: time.Now()}
	record, err := s.records.AppendMessage(ctx, doctorID, patientID, msg)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNoPair)
		}
		return nil, err
	}

	s.notifyPairAsync(ctx, record, "New message from your doctor", text)
	return record, nil
}

// Broadcast appends the same message to every record owned by the
// doctor in one atomic batch, then notifies every affected patient
// concurrently. The response never waits on deliveries.
func (s *RecordService) Broadcast(ctx context.Context, doctorID uuid.UUID, text string) error {
	msg := models.Message{Text: text, Date: time.Now()}
	records, err := s.records.AppendMessageToAll(ctx, doctorID, msg)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return apperror.NotFound("This doctor has no patients to message")
	}

	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		s.log.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("Skipping broadcast notifications")
		return nil
	}

	for _, record := range records {
		patientID := record.PatientID
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()

			patient, err := s.patients.FindByID(nctx, patientID)
			if err != nil {
				s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("Failed to resolve notification addressee")
				return
			}
			s.send(nctx, patient, doctor, "New message from your doctor", text)
		}()
	}
	return nil
}

// notifyPairAsync resolves both sides of a pair record and notifies the
// patient without blocking the caller.
func (s *RecordService) notifyPairAsync(ctx context.Context, record *models.Record, subject, message string) {
	doctorID, patientID := record.DoctorID, record.PatientID
	patient := record.Patient

	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		doctor, err := s.doctors.FindByID(nctx, doctorID)
		if err != nil {
			s.log.Warn().Err(err).Str("doctor_id", doctorID.String()).Msg("Failed to resolve notification sender")
			return
		}
		if patient == nil {
			patient, err = s.patients.FindByID(nctx, patientID)
			if err != nil {
				s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("Failed to resolve notification addressee")
				return
			}
		}
		s.send(nctx, patient, doctor, subject, message)
	}()
}

func (s *RecordService) notifyAsync(patient *models.Patient, doctor *models.Doctor, subject, message string) {
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.send(nctx, patient, doctor, subject, message)
	}()
}

// send delivers one notification; failures are logged, never propagated
func (s *RecordService) send(ctx context.Context, patient *models.Patient, doctor *models.Doctor, subject, message string) {
	err := s.notifier.Send(ctx, notify.Notification{
		To:          patient.Email,
		Subject:     subject,
		Message:     message,
		PatientName: patient.Name,
		DoctorName:  doctor.Name,
		From:        s.from,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("to", patient.Email).Msg("Failed to send notification")
	}
}

func expand(record models.Record) models.OwnedRecord {
	owned := models.OwnedRecord{Record: record}
	if record.Patient != nil {
		owned.PatientRef = &models.PatientRef{
			Name:        record.Patient.Name,
			Email:       record.Patient.Email,
			Gender:      record.Patient.Gender,
			DateOfBirth: record.Patient.DateOfBirth,
		}
		owned.Patient = nil
	}
	return owned
}
