package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Doctor represents a doctor account
type Doctor struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	Email             string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_doctors_email" json:"email"`
	Phone             string    `gorm:"type:varchar(50);not null" json:"phone"`
	Specialty         string    `gorm:"type:varchar(100);not null" json:"specialty"`
	Password          string    `gorm:"type:text;not null" json:"-"`
	PasswordChangedAt time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Doctor) TableName() string {
	return "doctors"
}

// ModelName is the kind name used in responses and error messages
func (Doctor) ModelName() string {
	return "Doctor"
}

// AccountID implements Account
func (d *Doctor) AccountID() uuid.UUID {
	return d.ID
}

// AccountEmail implements Account
func (d *Doctor) AccountEmail() string {
	return d.Email
}

// AccountName implements Account
func (d *Doctor) AccountName() string {
	return d.Name
}

// PasswordHash implements Account
func (d *Doctor) PasswordHash() string {
	return d.Password
}

// SecretChangedAt implements Account
func (d *Doctor) SecretChangedAt() time.Time {
	return d.PasswordChangedAt
}

// SetPassword stores a new password hash. The change timestamp is
// backdated one second so tokens issued in the same second are stale.
func (d *Doctor) SetPassword(hash string) {
	d.Password = hash
	d.PasswordChangedAt = time.Now().Add(-time.Second)
}

// BeforeCreate hook
func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
