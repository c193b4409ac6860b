package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is an immutable entry in a record's message thread
type Message struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Messages is the append-only message thread, stored as a jsonb array
type Messages []Message

// Record is the ownership edge between one doctor and one patient.
// At most one record may exist per (doctorId, patientId) pair.
type Record struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_records_doctor_patient" json:"doctorId"`
	PatientID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_records_doctor_patient" json:"patientId"`
	Notes       string    `gorm:"type:text;not null" json:"notes"`
	SessionDate time.Time `gorm:"not null" json:"sessionDate"`
	Treatment   string    `gorm:"type:text;not null" json:"treatment"`
	Messages    Messages  `gorm:"serializer:json;type:jsonb;not null;default:'[]'" json:"messages"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Record) TableName() string {
	return "records"
}

// ModelName is the kind name used in responses and error messages
func (Record) ModelName() string {
	return "Record"
}

// BeforeCreate hook
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Messages == nil {
		r.Messages = Messages{}
	}
	return nil
}

// PatientRef is the projection of a patient embedded in owned-record responses
type PatientRef struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Gender      Gender    `json:"gender"`
	DateOfBirth time.Time `json:"dateOfBirth"`
}

// OwnedRecord is a record with its patient reference expanded
type OwnedRecord struct {
	Record
	PatientRef *PatientRef `json:"patient,omitempty"`
}
