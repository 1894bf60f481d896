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

type AvailabilityHandler struct {
	schedulingUsecase usecase.SchedulingUsecase
	validator         *validator.CustomValidator
}

func NewAvailabilityHandler(schedulingUsecase usecase.SchedulingUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		schedulingUsecase: schedulingUsecase,
		validator:         validator,
	}
}

// ListAvailability returns the doctor's own records, or upcoming records for
// everyone else. Query: ?date=YYYY-MM-DD&doctor_id=<uuid>
func (h *AvailabilityHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	query := dto.ListAvailabilityQuery{
		Date:     r.URL.Query().Get("date"),
		DoctorID: r.URL.Query().Get("doctor_id"),
	}

	availabilities, err := h.schedulingUsecase.ListAvailability(r.Context(), caller, query)
	if err != nil {
		writeSchedulingError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availabilities)
}

func (h *AvailabilityHandler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.schedulingUsecase.AddAvailability(r.Context(), doctorID, &req)
	if err != nil {
		writeSchedulingError(w, err, "Failed to create availability")
		return
	}

	response.Success(w, http.StatusCreated, "Availability created successfully", availability)
}

func (h *AvailabilityHandler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	availabilityID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid availability ID", nil)
		return
	}

	if err := h.schedulingUsecase.RemoveAvailability(r.Context(), doctorID, availabilityID); err != nil {
		writeSchedulingError(w, err, "Failed to delete availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability deleted successfully", nil)
}
