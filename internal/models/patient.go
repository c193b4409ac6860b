package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender is a patient's registered gender
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Patient represents a patient account
type Patient struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	Email             string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_patients_email" json:"email"`
	DateOfBirth       time.Time `gorm:"not null" json:"dateOfBirth"`
	Gender            Gender    `gorm:"type:varchar(10);not null" json:"gender"`
	Password          string    `gorm:"type:text;not null" json:"-"`
	PasswordChangedAt time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Patient) TableName() string {
	return "patients"
}

// ModelName is the kind name used in responses and error messages
func (Patient) ModelName() string {
	return "Patient"
}

// AccountID implements Account
func (p *Patient) AccountID() uuid.UUID {
	return p.ID
}

// AccountEmail implements Account
func (p *Patient) AccountEmail() string {
	return p.Email
}

// AccountName implements Account
func (p *Patient) AccountName() string {
	return p.Name
}

// PasswordHash implements Account
func (p *Patient) PasswordHash() string {
	return p.Password
}

// SecretChangedAt implements Account
func (p *Patient) SecretChangedAt() time.Time {
	return p.PasswordChangedAt
}

// SetPassword stores a new password hash. The change timestamp is
// backdated one second so tokens issued in the same second are stale.
func (p *Patient) SetPassword(hash string) {
	p.Password = hash
	p.PasswordChangedAt = time.Now().Add(-time.Second)
}

// BeforeCreate hook
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
