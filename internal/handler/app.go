package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

// Sweeper runs one recovery sweep pass on demand.
type Sweeper interface {
	RunOnce()
}

// AppHandler covers app-lifecycle endpoints: share payloads, deep links
// from notifications, resume catch-up, and the install flag.
type AppHandler struct {
	events      *store.EventStore
	app         *store.AppStore
	sweeper     Sweeper
	logger      *slog.Logger
	currentUser string
	baseURL     string
}

func NewAppHandler(es *store.EventStore, as *store.AppStore, sweeper Sweeper, logger *slog.Logger, currentUser, baseURL string) *AppHandler {
	return &AppHandler{
		events:      es,
		app:         as,
		sweeper:     sweeper,
		logger:      logger,
		currentUser: currentUser,
		baseURL:     baseURL,
	}
}

// Share builds a Web Share payload for an event.
func (h *AppHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	ev, ok := h.events.Get(id)
	if !ok {
		writeErrorMsg(w, http.StatusNotFound, "event not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"title": ev.Title,
		"text":  fmt.Sprintf("%s on %s at %s with %s", ev.Title, ev.Date, ev.Time, ev.GroupName),
		"url":   fmt.Sprintf("%s/?event=%d", h.baseURL, ev.ID),
	})
}

// DeepLink consumes a notification deep link. A join action confirms
// attendance immediately; the response carries the URL with the consumed
// parameters stripped so the client can replace its history entry.
func (h *AppHandler) DeepLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eventStr := q.Get("event")
	if eventStr == "" {
		writeErrorMsg(w, http.StatusBadRequest, "event parameter is required")
		return
	}
	id, err := strconv.ParseInt(eventStr, 10, 64)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid event parameter")
		return
	}

	ev, ok := h.events.Get(id)
	if !ok {
		writeErrorMsg(w, http.StatusNotFound, "event not found")
		return
	}

	action := q.Get("action")
	if action == "join" {
		ev, err = h.events.Join(id, h.currentUser)
		if err != nil {
			writeError(w, err)
			return
		}
		h.logger.Info("deep link join", "event_id", id, "user", h.currentUser)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":  ev,
		"action": action,
		"url":    h.baseURL + "/",
	})
}

// Resume runs a recovery sweep pass so reminders missed while the app was
// suspended fire immediately.
func (h *AppHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.sweeper.RunOnce()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AppHandler) Installed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"installed": h.app.Installed()})
}

func (h *AppHandler) MarkInstalled(w http.ResponseWriter, r *http.Request) {
	h.app.MarkInstalled()
	writeJSON(w, http.StatusOK, map[string]bool{"installed": true})
}
