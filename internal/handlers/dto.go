package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/models"
)

var validate = validator.New()

// decodeBody decodes and validates a JSON request body
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// PatchRequest is a partial-update body producing column updates
type PatchRequest interface {
	Updates() map[string]interface{}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type SignupDoctorRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone" validate:"required"`
	Specialty string `json:"specialty" validate:"required"`
}

type SignupPatientRequest struct {
	Name        string    `json:"name" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required,min=8"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required"`
	Gender      string    `json:"gender" validate:"required,oneof=male female"`
}

type UpdateDoctorRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Specialty *string `json:"specialty,omitempty"`
}

func (r *UpdateDoctorRequest) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Name != nil {
		updates["name"] = *r.Name
	}
	if r.Email != nil {
		updates["email"] = *r.Email
	}
	if r.Phone != nil {
		updates["phone"] = *r.Phone
	}
	if r.Specialty != nil {
		updates["specialty"] = *r.Specialty
	}
	return updates
}

type UpdatePatientRequest struct {
	Name        *string    `json:"name,omitempty"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      *string    `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
}

func (r *UpdatePatientRequest) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Name != nil {
		updates["name"] = *r.Name
	}
	if r.Email != nil {
		updates["email"] = *r.Email
	}
	if r.DateOfBirth != nil {
		updates["date_of_birth"] = *r.DateOfBirth
	}
	if r.Gender != nil {
		updates["gender"] = models.Gender(*r.Gender)
	}
	return updates
}

type CreateRecordRequest struct {
	DoctorID    uuid.UUID `json:"doctorId" validate:"required"`
	PatientID   uuid.UUID `json:"patientId" validate:"required"`
	Notes       string    `json:"notes" validate:"required"`
	SessionDate time.Time `json:"sessionDate" validate:"required"`
	Treatment   string    `json:"treatment" validate:"required"`
}

type UpdateRecordRequest struct {
	Notes       *string    `json:"notes,omitempty"`
	SessionDate *time.Time `json:"sessionDate,omitempty"`
	Treatment   *string    `json:"treatment,omitempty"`
}

func (r *UpdateRecordRequest) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Notes != nil {
		updates["notes"] = *r.Notes
	}
	if r.SessionDate != nil {
		updates["session_date"] = *r.SessionDate
	}
	if r.Treatment != nil {
		updates["treatment"] = *r.Treatment
	}
	return updates
}

// ChangedFields lists the clinical field names touched by the patch,
// in request terms, for the notification body.
func (r *UpdateRecordRequest) ChangedFields() []string {
	fields := make([]string, 0, 3)
	if r.Notes != nil {
		fields = append(fields, "notes")
	}
	if r.SessionDate != nil {
		fields = append(fields, "sessionDate")
	}
	if r.Treatment != nil {
		fields = append(fields, "treatment")
	}
	return fields
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}
