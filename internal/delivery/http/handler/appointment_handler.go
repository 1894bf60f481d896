package handler

import (
	"encoding/json"
	"net/http"

	"serenecare/internal/delivery/dto"
	"serenecare/internal/delivery/http/middleware"
	"serenecare/internal/usecase"
	"serenecare/pkg/response"
	"serenecare/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	schedulingUsecase usecase.SchedulingUsecase
	validator         *validator.CustomValidator
}

func NewAppointmentHandler(schedulingUsecase usecase.SchedulingUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		schedulingUsecase: schedulingUsecase,
		validator:         validator,
	}
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.schedulingUsecase.RequestAppointment(r.Context(), patientID, &req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to request appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment requested successfully", appointment)
}

// GetMyAppointments lists the caller's appointments, newest first.
func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	appointments, err := h.schedulingUsecase.ListAppointments(r.Context(), caller)
	if err != nil {
		writeSchedulingError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	var req dto.UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.schedulingUsecase.RespondToAppointment(r.Context(), doctorID, appointmentID, &req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}
