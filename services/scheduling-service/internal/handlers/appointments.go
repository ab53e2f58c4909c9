package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clinicops/medagenda/services/scheduling-service/internal/scheduling"
)

type AppointmentHandler struct {
	svc    *scheduling.Service
	logger *slog.Logger
}

func NewAppointmentHandler(svc *scheduling.Service, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, logger: logger}
}

type appointmentRequest struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Patient   string `json:"patient"`
	Physician string `json:"physician"`
}

type appointmentItem struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Patient   string `json:"patient"`
	Physician string `json:"physician"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collection serves the appointment collection: POST books, GET lists.
func (h *AppointmentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item serves a single appointment by path id: DELETE cancels, PUT updates.
func (h *AppointmentHandler) Item(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/appointments/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		h.cancel(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AppointmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req = trimmed(req)
	if fieldErrs := validate(req); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}

	id, err := h.svc.Create(r.Context(), req.Date, req.Time, req.Patient, req.Physician)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := appointmentItem{
			ID:        appt.ID,
			Date:      appt.Date,
			Time:      appt.Time,
			Patient:   appt.Patient,
			Physician: appt.Physician,
			Status:    appt.Status,
		}
		if !appt.CreatedAt.IsZero() {
			item.CreatedAt = appt.CreatedAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AppointmentHandler) cancel(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Cancel(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment cancelled"})
}

func (h *AppointmentHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req = trimmed(req)
	if fieldErrs := validate(req); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}

	if err := h.svc.Update(r.Context(), id, req.Date, req.Time, req.Patient, req.Physician); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment updated"})
}

func (h *AppointmentHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scheduling.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, scheduling.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("storage failure", "err", err, "method", r.Method, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func trimmed(req appointmentRequest) appointmentRequest {
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Patient = strings.TrimSpace(req.Patient)
	req.Physician = strings.TrimSpace(req.Physician)
	return req
}

func validate(req appointmentRequest) []fieldError {
	var errs []fieldError
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errs = append(errs, fieldError{Field: "date", Message: "must be a calendar date (YYYY-MM-DD)"})
	}
	if len(req.Time) != 5 {
		errs = append(errs, fieldError{Field: "time", Message: "must be exactly 5 characters (HH:MM)"})
	} else if _, err := time.Parse("15:04", req.Time); err != nil {
		errs = append(errs, fieldError{Field: "time", Message: "must be a clock time (HH:MM)"})
	}
	if utf8.RuneCountInString(req.Patient) < 3 {
		errs = append(errs, fieldError{Field: "patient", Message: "must be at least 3 characters"})
	}
	if utf8.RuneCountInString(req.Physician) < 3 {
		errs = append(errs, fieldError{Field: "physician", Message: "must be at least 3 characters"})
	}
	return errs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
