package handlers

import (
	"net/http"

	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/middleware"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/response"
	"github.com/medideal/records-api/internal/services"
)

// AccountHandler serves signup, login and password change for one
// account kind.
type AccountHandler[T any, PT services.AccountEntity[T]] struct {
	svc          *services.AccountService[T, PT]
	decodeSignup func(r *http.Request) (PT, string, error)
}

// NewAccountHandler creates the auth handler set for one account kind
func NewAccountHandler[T any, PT services.AccountEntity[T]](
	svc *services.AccountService[T, PT],
	decodeSignup func(r *http.Request) (PT, string, error),
) *AccountHandler[T, PT] {
	return &AccountHandler[T, PT]{svc: svc, decodeSignup: decodeSignup}
}

// Signup registers an account and returns it with a fresh token
func (h *AccountHandler[T, PT]) Signup(w http.ResponseWriter, r *http.Request) {
	account, plainPassword, err := h.decodeSignup(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	account, token, err := h.svc.Signup(r.Context(), account, plainPassword)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessWithToken(w, http.StatusOK, account, token)
}

// Login verifies credentials and returns the account with a fresh token
func (h *AccountHandler[T, PT]) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	account, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessWithToken(w, http.StatusOK, account, token)
}

// ChangePassword rotates the caller's password; previously issued
// tokens become stale.
func (h *AccountHandler[T, PT]) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Error(w, apperror.Unauthorized("Access denied, No token provided"))
		return
	}

	var req ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	account, err := h.svc.UpdatePassword(r.Context(), principal.AccountID(), req.OldPassword, req.NewPassword)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, account)
}

// DecodeDoctorSignup builds a Doctor from a signup body
func DecodeDoctorSignup(r *http.Request) (*models.Doctor, string, error) {
	var req SignupDoctorRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, "", err
	}
	doctor := &models.Doctor{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Specialty: req.Specialty,
	}
	return doctor, req.Password, nil
}

// DecodePatientSignup builds a Patient from a signup body
func DecodePatientSignup(r *http.Request) (*models.Patient, string, error) {
	var req SignupPatientRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, "", err
	}
	patient := &models.Patient{
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Gender:      models.Gender(req.Gender),
	}
	return patient, req.Password, nil
}
