package handler

import (
	"net/http"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

type NotificationHandler struct {
	feed *store.NotificationLog
}

func NewNotificationHandler(feed *store.NotificationLog) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List returns the notification feed, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.feed.List()
	if entries == nil {
		entries = []model.NotificationLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.feed.Clear()
	w.WriteHeader(http.StatusNoContent)
}
