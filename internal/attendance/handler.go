package attendance

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/core/common/validation"
	"github.com/frahmantamala/attendance-tracker/internal/i18n"
	"github.com/frahmantamala/attendance-tracker/internal/transport"
)

type ServiceAPI interface {
	CheckIn(ctx context.Context, userID int64) (*Record, error)
	CheckOut(ctx context.Context, userID int64) (*Record, error)
	GetToday(ctx context.Context, userID int64) (*Record, error)
	GetHistory(ctx context.Context, userID int64, rng calendar.Range) ([]*Record, error)
	Today() calendar.Date
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	record, err := h.Service.CheckIn(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CheckResponse{
		Message:    i18n.T(r.Context(), "attendance.checked_in"),
		Attendance: record,
	})
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	record, err := h.Service.CheckOut(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CheckResponse{
		Message:    i18n.T(r.Context(), "attendance.checked_out"),
		Attendance: record,
	})
}

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	record, err := h.Service.GetToday(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := TodayResponse{Date: h.Service.Today(), Status: StatusAbsent, Attendance: record}
	if record != nil {
		resp.Status = record.Status
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	rng, appErr := validation.ParseDateRange(q.Get("start_date"), q.Get("end_date"), h.Service.Today())
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	records, err := h.Service.GetHistory(r.Context(), user.ID, rng)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []*Record{}
	}

	h.WriteJSON(w, http.StatusOK, HistoryResponse{
		StartDate: rng.From,
		EndDate:   rng.To,
		Records:   records,
	})
}
