package dashboard

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance-tracker/internal/transport"
)

type ServiceAPI interface {
	Employee(ctx context.Context, userID int64) (*EmployeeView, error)
	Manager(ctx context.Context) (*ManagerView, error)
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

func (h *Handler) Employee(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	view, err := h.Service.Employee(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Manager(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Manager(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}
