package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/ics"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

type CalendarHandler struct {
	events *store.EventStore
	logger *slog.Logger
}

func NewCalendarHandler(es *store.EventStore, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{events: es, logger: logger}
}

// ExportEvent serves one event as a downloadable .ics file.
func (h *CalendarHandler) ExportEvent(w http.ResponseWriter, r *http.Request) {
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

	out, err := ics.Export(ev, h.events.Location())
	if err != nil {
		h.logger.Error("render calendar", "event_id", id, "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to render calendar")
		return
	}

	serveICS(w, fmt.Sprintf("event-%d.ics", id), out)
}

// ExportAll serves every event as one calendar file.
func (h *CalendarHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	out, err := ics.Calendar(h.events.All(), h.events.Location())
	if err != nil {
		h.logger.Error("render calendar", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "failed to render calendar")
		return
	}

	serveICS(w, "agenda.ics", out)
}

func serveICS(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
