package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
	"github.com/workpulse/attendance-backend-go/internal/pkg/cron"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

type SchedulerHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Trigger(w http.ResponseWriter, r *http.Request)
	Enable(w http.ResponseWriter, r *http.Request)
	Disable(w http.ResponseWriter, r *http.Request)
	UpdateSchedule(w http.ResponseWriter, r *http.Request)
}

type schedulerHandlerImpl struct {
	scheduler *cron.Scheduler
}

func NewSchedulerHandler(scheduler *cron.Scheduler) SchedulerHandler {
	return &schedulerHandlerImpl{scheduler: scheduler}
}

// List implements SchedulerHandler.
func (h *schedulerHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.scheduler.List())
}

// Get implements SchedulerHandler.
func (h *schedulerHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.scheduler.Status(chi.URLParam(r, "name"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

// Trigger implements SchedulerHandler. The run is synchronous: the caller
// gets the job's outcome, not an acknowledgement.
func (h *schedulerHandlerImpl) Trigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.scheduler.Trigger(r.Context(), name); err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.scheduler.Status(name)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Job executed", status)
}

// Enable implements SchedulerHandler.
func (h *schedulerHandlerImpl) Enable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.scheduler.Enable(name); err != nil {
		response.HandleError(w, err)
		return
	}

	status, _ := h.scheduler.Status(name)
	response.SuccessWithMessage(w, "Job enabled", status)
}

// Disable implements SchedulerHandler.
func (h *schedulerHandlerImpl) Disable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.scheduler.Disable(name); err != nil {
		response.HandleError(w, err)
		return
	}

	status, _ := h.scheduler.Status(name)
	response.SuccessWithMessage(w, "Job disabled", status)
}

type updateScheduleRequest struct {
	Schedule string `json:"schedule"`
}

// UpdateSchedule implements SchedulerHandler.
func (h *schedulerHandlerImpl) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if validator.IsEmpty(req.Schedule) {
		response.ValidationError(w, map[string]string{"schedule": "schedule is required"})
		return
	}

	if err := h.scheduler.UpdateSchedule(name, req.Schedule); err != nil {
		if errors.Is(err, cron.ErrJobNotFound) {
			response.HandleError(w, err)
			return
		}
		response.ValidationError(w, map[string]string{"schedule": err.Error()})
		return
	}

	status, _ := h.scheduler.Status(name)
	response.SuccessWithMessage(w, "Job schedule updated", status)
}
