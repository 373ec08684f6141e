package handler

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

type backupRequest struct {
	Passphrase string `json:"passphrase"`
	File       string `json:"file"`
}

func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	path, err := h.manager.Export(req.Passphrase)
	if err != nil {
		h.logger.Error("backup export", "error", err)
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"file": filepath.Base(path)})
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.File == "" || req.File != filepath.Base(req.File) {
		writeErrorMsg(w, http.StatusBadRequest, "invalid backup file name")
		return
	}

	backups, err := h.manager.List()
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	var path string
	for _, b := range backups {
		if b.Name == req.File {
			path = req.File
			break
		}
	}
	if path == "" {
		writeErrorMsg(w, http.StatusNotFound, "backup not found")
		return
	}

	if err := h.manager.Restore(h.manager.Path(path), req.Passphrase); err != nil {
		h.logger.Error("backup restore", "file", req.File, "error", err)
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	// Restored documents take effect on next start; stores keep serving
	// their in-memory state for this session.
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored", "note": "restart to load restored data"})
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.manager.List()
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []backup.Info{}
	}
	writeJSON(w, http.StatusOK, backups)
}

func (h *BackupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.manager.Delete(name); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
