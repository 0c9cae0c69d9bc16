package user

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	SetNotifications(ctx context.Context, id int64, enabled bool) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// UpdateNotifications handles PATCH /users/me/notifications
func (h *Handler) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	authUser, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto NotificationPreferencesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, r, internal.NewValidationError("Invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.HandleServiceError(w, r, appErr)
		return
	}

	u, err := h.Service.SetNotifications(r.Context(), authUser.ID, *dto.Enabled)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("notification preference updated", "user_id", u.ID, "enabled", u.NotificationsEnabled)
	h.WriteJSON(w, http.StatusOK, u)
}
