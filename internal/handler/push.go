package handler

import (
	"log/slog"
	"net/http"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

// KeyProvider exposes the VAPID public key clients subscribe with.
type KeyProvider interface {
	VAPIDPublicKey() string
}

type PushHandler struct {
	subs   *store.PushStore
	keys   KeyProvider
	logger *slog.Logger
}

func NewPushHandler(subs *store.PushStore, keys KeyProvider, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, keys: keys, logger: logger}
}

// subscribeRequest mirrors the browser PushSubscription JSON shape.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
	DeviceName string `json:"deviceName"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sub, err := h.subs.Subscribe(req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.DeviceName)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("push subscription registered", "device", sub.DeviceName)
	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushHandler) List(w http.ResponseWriter, r *http.Request) {
	subs := h.subs.List()
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PushHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.subs.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VAPIDKey hands the public key to the client for subscription.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.keys == nil || h.keys.VAPIDPublicKey() == "" {
		writeErrorMsg(w, http.StatusServiceUnavailable, "push not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.keys.VAPIDPublicKey()})
}
