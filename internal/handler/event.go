package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/ics"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

// Scheduler arms and re-arms reminder timers for events.
type Scheduler interface {
	Schedule(ev model.Event) error
	Snooze(eventID int64) error
}

type EventHandler struct {
	events      *store.EventStore
	groups      *store.GroupStore
	settings    *store.SettingsStore
	feed        *store.NotificationLog
	scheduler   Scheduler
	logger      *slog.Logger
	currentUser string
	exportPath  string
}

func NewEventHandler(es *store.EventStore, gs *store.GroupStore, ss *store.SettingsStore, feed *store.NotificationLog, sched Scheduler, logger *slog.Logger, currentUser, exportPath string) *EventHandler {
	return &EventHandler{
		events:      es,
		groups:      gs,
		settings:    ss,
		feed:        feed,
		scheduler:   sched,
		logger:      logger,
		currentUser: currentUser,
		exportPath:  exportPath,
	}
}

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GroupID     int64  `json:"groupId"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Recurring   bool   `json:"recurring"`
}

// Create validates the draft against its group, stores the event (plus
// weekly copies when recurring), and arms reminder timers for each copy.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	group, ok := h.groups.Get(req.GroupID)
	if !ok {
		writeErrorMsg(w, http.StatusBadRequest, "group not found")
		return
	}

	created, err := h.events.Create(req.Title, req.Description, group.ID, group.Name, model.EventType(req.Type), req.Date, req.Time, req.Recurring, h.currentUser)
	if err != nil {
		writeError(w, err)
		return
	}

	for _, ev := range created {
		if err := h.scheduler.Schedule(ev); err != nil {
			h.logger.Warn("schedule reminders", "event_id", ev.ID, "error", err)
		}
	}

	h.feed.Add(fmt.Sprintf("Event '%s' scheduled for %s %s", created[0].Title, created[0].Date, created[0].Time))
	h.autoExport()

	h.logger.Info("event created", "event_id", created[0].ID, "copies", len(created))
	writeJSON(w, http.StatusCreated, created)
}

// List returns events, optionally filtered by group and type, sorted by
// start instant.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	var groupID int64
	if s := r.URL.Query().Get("group"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeErrorMsg(w, http.StatusBadRequest, "invalid group filter")
			return
		}
		groupID = id
	}
	typ := model.EventType(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		writeErrorMsg(w, http.StatusBadRequest, "invalid type filter")
		return
	}

	events := h.events.ListFiltered(groupID, typ)
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, ev)
}

// Delete removes the event. The store's deletion hook cancels any armed
// reminder timers.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.events.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	h.autoExport()
	h.logger.Info("event deleted", "event_id", id)
	w.WriteHeader(http.StatusNoContent)
}

type attendanceRequest struct {
	User string `json:"user"`
}

func (h *EventHandler) attendee(r *http.Request) string {
	var req attendanceRequest
	if err := decodeJSON(r, &req); err == nil && req.User != "" {
		return req.User
	}
	return h.currentUser
}

func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	ev, err := h.events.Join(id, h.attendee(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *EventHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	ev, err := h.events.Leave(id, h.attendee(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Snooze re-arms exactly one reminder delivery a few minutes out.
func (h *EventHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.scheduler.Snooze(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "snoozed"})
}

// autoExport rewrites the on-disk calendar file when the option is on.
func (h *EventHandler) autoExport() {
	if h.exportPath == "" || !h.settings.Get().CalendarAutoExport {
		return
	}
	if err := ics.WriteFile(h.exportPath, h.events.All(), h.events.Location()); err != nil {
		h.logger.Warn("calendar auto-export", "error", err)
	}
}
