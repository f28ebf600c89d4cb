package http

import (
	"net/http"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/monitoring"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
)

type MonitoringHandler interface {
	Summary(w http.ResponseWriter, r *http.Request)
}

type monitoringHandlerImpl struct {
	monitorService monitoring.Service
	timezone       *time.Location
}

func NewMonitoringHandler(monitorService monitoring.Service, timezone *time.Location) MonitoringHandler {
	return &monitoringHandlerImpl{
		monitorService: monitorService,
		timezone:       timezone,
	}
}

// Summary implements MonitoringHandler. Defaults to today when no date is
// given.
func (h *monitoringHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().In(h.timezone).Format("2006-01-02")
	}

	summary, err := h.monitorService.Summary(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if summary == nil {
		response.Success(w, &monitoring.SummaryResponse{Date: date})
		return
	}
	response.Success(w, summary)
}
