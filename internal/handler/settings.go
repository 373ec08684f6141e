package handler

import (
	"log/slog"
	"net/http"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Get())
}

// Update replaces the whole settings record. Reminders not yet fired pick
// up the new lead time through the recovery sweep; armed timers keep
// their original fire times.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.NotificationSettings
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.settings.Update(req); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("notification settings updated", "timing_minutes", req.TimingMinutes)
	writeJSON(w, http.StatusOK, h.settings.Get())
}
