package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tskinner/inkwell/internal/auth"
	"github.com/tskinner/inkwell/internal/blog"
	"github.com/tskinner/inkwell/internal/model"
	"github.com/tskinner/inkwell/internal/notify"
	"github.com/tskinner/inkwell/internal/push"
	"github.com/tskinner/inkwell/internal/store"
)

type PushHandler struct {
	pushStore  *store.PushStore
	userStore  *store.UserStore
	service    *push.Service
	dispatcher blog.Notifier
	logger     *slog.Logger
}

func NewPushHandler(ps *store.PushStore, us *store.UserStore, svc *push.Service, dispatcher blog.Notifier, logger *slog.Logger) *PushHandler {
	return &PushHandler{
		pushStore:  ps,
		userStore:  us,
		service:    svc,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// subscribeRequest matches the browser PushSubscription JSON shape.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe handles POST /push/subscribe.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint, p256dh, and auth are required"})
		return
	}

	if _, err := h.pushStore.Save(userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		h.logger.Error("save push subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save subscription"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Unsubscribe handles DELETE /push/subscribe.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := h.pushStore.DeleteByUser(userID); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete subscription"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetVAPIDKey handles GET /push/vapid-key.
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// TestNotification handles POST /push/test, sending a test push to the
// requesting user's own subscription.
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.userStore.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("test push user lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up user"})
		return
	}

	outcomes := h.dispatcher.Dispatch([]model.User{*user}, notify.TestMessage())

	sent := 0
	for _, o := range outcomes {
		if o.Delivered {
			sent++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
