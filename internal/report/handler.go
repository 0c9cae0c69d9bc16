package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	"github.com/frahmantamala/attendance-tracker/internal/core/common/validation"
	"github.com/frahmantamala/attendance-tracker/internal/transport"
)

type ServiceAPI interface {
	Today() calendar.Date
	GetSummary(ctx context.Context, userID *int64, rng calendar.Range) (*Summary, error)
	GetTeamSummary(ctx context.Context, rng calendar.Range) (*TeamSummary, error)
	GetTodayStatus(ctx context.Context) (*TodayStatus, error)
	GetAll(ctx context.Context, filter Filter) ([]*Row, error)
	Employee(ctx context.Context, id int64) (*Employee, error)
	Export(ctx context.Context, w io.Writer, format string, filter Filter) (int, error)
	Exporter() *Exporter

	EmployeeMonthly(ctx context.Context, userID int64) ([]MonthlyPoint, error)
	WeeklyCheckIn(ctx context.Context, userID int64) ([]CheckInPoint, error)
	GetTrendScore(ctx context.Context, userID int64) (*TrendScore, error)
	DepartmentPie(ctx context.Context) ([]DepartmentCount, error)
	WeeklyDepartmentHours(ctx context.Context) ([]DepartmentHours, error)
	LateArrivals(ctx context.Context) ([]LateArrival, error)
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

func (h *Handler) GetMySummary(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	rng, appErr := h.dateRange(r)
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	summary, err := h.Service.GetSummary(r.Context(), &user.ID, rng)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SummaryResponse{StartDate: rng.From, EndDate: rng.To, Summary: summary})
}

// GetSummary tallies every employee's persisted statuses over the range.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rng, appErr := h.dateRange(r)
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	summary, err := h.Service.GetSummary(r.Context(), nil, rng)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SummaryResponse{StartDate: rng.From, EndDate: rng.To, Summary: summary})
}

func (h *Handler) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	rng, appErr := h.dateRange(r)
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	ts, err := h.Service.GetTeamSummary(r.Context(), rng)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TeamSummaryResponse{StartDate: rng.From, EndDate: rng.To, TeamSummary: ts})
}

func (h *Handler) GetTodayStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.GetTodayStatus(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	filter, appErr := h.filter(r)
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}
	h.writeRows(w, r, filter)
}

func (h *Handler) GetEmployeeHistory(w http.ResponseWriter, r *http.Request) {
	userID, appErr := validation.ParseUserID(chi.URLParam(r, "id"))
	if appErr == nil && userID == nil {
		appErr = internal.NewValidationFieldError("id", "id is required", internal.ErrCodeInvalidUserID)
	}
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	rng, appErr := h.dateRange(r)
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	if _, err := h.Service.Employee(r.Context(), *userID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.writeRows(w, r, Filter{Range: rng, UserID: userID})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, FormatCSV)
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, FormatXLSX)
}

func (h *Handler) EmployeeMonthly(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	points, err := h.Service.EmployeeMonthly(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DataResponse{Data: points})
}

func (h *Handler) WeeklyCheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	points, err := h.Service.WeeklyCheckIn(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DataResponse{Data: points})
}

func (h *Handler) TrendScore(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	score, err := h.Service.GetTrendScore(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, score)
}

func (h *Handler) DepartmentPie(w http.ResponseWriter, r *http.Request) {
	pie, err := h.Service.DepartmentPie(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DataResponse{Data: pie})
}

func (h *Handler) WeeklyDepartment(w http.ResponseWriter, r *http.Request) {
	hours, err := h.Service.WeeklyDepartmentHours(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DataResponse{Data: hours})
}

func (h *Handler) LateArrivals(w http.ResponseWriter, r *http.Request) {
	arrivals, err := h.Service.LateArrivals(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DataResponse{Data: arrivals})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, format string) {
	filter, appErr := h.filter(r)
	if appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	// Buffer so a failed export still gets a JSON error instead of a truncated file.
	var buf bytes.Buffer
	if _, err := h.Service.Export(r.Context(), &buf, format, filter); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_to_%s.%s", filter.Range.From, filter.Range.To, format)
	w.Header().Set("Content-Type", h.Service.Exporter().ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("failed to write export", "error", err, "format", format)
	}
}

func (h *Handler) writeRows(w http.ResponseWriter, r *http.Request, filter Filter) {
	rows, err := h.Service.GetAll(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*Row{}
	}
	h.WriteJSON(w, http.StatusOK, RowsResponse{
		StartDate: filter.Range.From,
		EndDate:   filter.Range.To,
		Count:     len(rows),
		Records:   rows,
	})
}

func (h *Handler) dateRange(r *http.Request) (calendar.Range, *internal.AppError) {
	q := r.URL.Query()
	return validation.ParseDateRange(q.Get("start_date"), q.Get("end_date"), h.Service.Today())
}

// filter reads start_date, end_date, user_id and status.
func (h *Handler) filter(r *http.Request) (Filter, *internal.AppError) {
	q := r.URL.Query()
	return ParseFilter(q.Get("start_date"), q.Get("end_date"), q.Get("user_id"), q.Get("status"), h.Service.Today())
}

// ParseFilter validates raw filter values. Empty dates fall back to the month of today.
func ParseFilter(startRaw, endRaw, userIDRaw, statusRaw string, today calendar.Date) (Filter, *internal.AppError) {
	rng, appErr := validation.ParseDateRange(startRaw, endRaw, today)
	if appErr != nil {
		return Filter{}, appErr
	}

	userID, appErr := validation.ParseUserID(userIDRaw)
	if appErr != nil {
		return Filter{}, appErr
	}

	allowed := make([]string, 0, len(attendance.AllStatuses))
	for _, st := range attendance.AllStatuses {
		allowed = append(allowed, string(st))
	}
	raw, appErr := validation.ParseStatusFilter(statusRaw, allowed)
	if appErr != nil {
		return Filter{}, appErr
	}

	filter := Filter{Range: rng, UserID: userID}
	if raw != nil {
		st := attendance.Status(*raw)
		filter.Status = &st
	}
	return filter, nil
}
