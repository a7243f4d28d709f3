package handler

import (
	"net/http"

	"github.com/xela07ax/cyberinvest-pro/internal/notify"
)

type NotificationHandler struct {
	feed *notify.Feed
}

func NewNotificationHandler(feed *notify.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// Recent GET /api/v1/notifications
func (h *NotificationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.Recent())
}
