package handler

import (
	"log/slog"
	"net/http"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

type GroupHandler struct {
	groups      *store.GroupStore
	events      *store.EventStore
	logger      *slog.Logger
	currentUser string
	userEmail   string
}

func NewGroupHandler(gs *store.GroupStore, es *store.EventStore, logger *slog.Logger, currentUser, userEmail string) *GroupHandler {
	return &GroupHandler{
		groups:      gs,
		events:      es,
		logger:      logger,
		currentUser: currentUser,
		userEmail:   userEmail,
	}
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	group, err := h.groups.Create(req.Name, req.Description, h.currentUser, h.userEmail)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("group created", "group_id", group.ID, "name", group.Name)
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.groups.List())
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	group, ok := h.groups.Get(id)
	if !ok {
		writeErrorMsg(w, http.StatusNotFound, "group not found")
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// Delete removes the group and cascades to its events. Each removed event
// fires the store's deletion hook, which cancels its reminder timers.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.groups.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	removed := h.events.DeleteByGroup(id)
	h.logger.Info("group deleted", "group_id", id, "events_removed", len(removed))
	w.WriteHeader(http.StatusNoContent)
}

type memberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	group, err := h.groups.AddMember(id, req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return
	}
	email := r.PathValue("email")

	group, err := h.groups.RemoveMember(id, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}
