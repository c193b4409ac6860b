package handlers

import (
	"net/http"

	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/query"
	"github.com/medideal/records-api/internal/response"
	"github.com/medideal/records-api/internal/services"
)

// RecordHandler serves the record ownership surface. The owning
// doctor's id arrives through the "id" URL param, bound from the
// authenticated principal.
type RecordHandler struct {
	svc *services.RecordService
}

// NewRecordHandler creates a record handler
func NewRecordHandler(svc *services.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// Create creates a record between a doctor and a patient
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	record, err := h.svc.Create(r.Context(), services.CreateRecordInput{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		Notes:       req.Notes,
		SessionDate: req.SessionDate,
		Treatment:   req.Treatment,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusCreated, record)
}

// ListOwned lists the caller's records with patient references expanded
func (h *RecordHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	doctorID, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	opts := query.Parse(r.URL.Query())
	records, err := h.svc.ListOwned(r.Context(), doctorID, opts)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, records)
}

// GetOwned retrieves the record between the caller and one patient
func (h *RecordHandler) GetOwned(w http.ResponseWriter, r *http.Request) {
	doctorID, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	patientID, err := urlParamID(r, "patientId")
	if err != nil {
		response.Error(w, err)
		return
	}

	record, err := h.svc.GetOwned(r.Context(), doctorID, patientID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, record)
}

// UpdateOwned applies a clinical-fields patch to one owned record
func (h *RecordHandler) UpdateOwned(w http.ResponseWriter, r *http.Request) {
	doctorID, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	patientID, err := urlParamID(r, "patientId")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req UpdateRecordRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	updates := req.Updates()
	if len(updates) == 0 {
		response.Error(w, apperror.BadRequest("Invalid request body"))
		return
	}

	record, err := h.svc.UpdateOwned(r.Context(), doctorID, patientID, updates, req.ChangedFields())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, record)
}

// SendMessageToOne appends a message to one owned record's thread
func (h *RecordHandler) SendMessageToOne(w http.ResponseWriter, r *http.Request) {
	doctorID, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	patientID, err := urlParamID(r, "patientId")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req SendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	if _, err := h.svc.SendMessage(r.Context(), doctorID, patientID, req.Message); err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusNoContent, nil)
}

// SendMessageToAll appends the same message to every owned record
func (h *RecordHandler) SendMessageToAll(w http.ResponseWriter, r *http.Request) {
	doctorID, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	var req SendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.svc.Broadcast(r.Context(), doctorID, req.Message); err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusNoContent, nil)
}
