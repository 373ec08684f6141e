// Package server wires the stores, reminder machinery, and HTTP API
// together.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/backup"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/config"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/delivery"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/handler"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/middleware"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/push"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/reminder"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
	ws "github.com/techrodrigodados-sys/AgendaEmGrupo/internal/websocket"
)

type Server struct {
	cfg *config.Config
	hub *ws.Hub

	scheduler *reminder.Scheduler
	sweep     *reminder.Sweep

	groupH        *handler.GroupHandler
	eventH        *handler.EventHandler
	notificationH *handler.NotificationHandler
	settingsH     *handler.SettingsHandler
	pushH         *handler.PushHandler
	calendarH     *handler.CalendarHandler
	appH          *handler.AppHandler
	backupH       *handler.BackupHandler

	logger *slog.Logger
}

// New builds the full application graph on top of the document store.
func New(docs storage.DocumentStore, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	events, err := store.NewEventStore(docs, loc, logger.With("component", "events"))
	if err != nil {
		return nil, fmt.Errorf("event store: %w", err)
	}
	groups, err := store.NewGroupStore(docs, logger.With("component", "groups"))
	if err != nil {
		return nil, fmt.Errorf("group store: %w", err)
	}
	settings, err := store.NewSettingsStore(docs, logger.With("component", "settings"))
	if err != nil {
		return nil, fmt.Errorf("settings store: %w", err)
	}
	feed, err := store.NewNotificationLog(docs, logger.With("component", "notifications"))
	if err != nil {
		return nil, fmt.Errorf("notification log: %w", err)
	}
	subs, err := store.NewPushStore(docs, logger.With("component", "push"))
	if err != nil {
		return nil, fmt.Errorf("push store: %w", err)
	}
	app := store.NewAppStore(docs, logger.With("component", "app"))

	hub := ws.NewHub(logger.With("component", "websocket"))

	// Push delivery is optional: without VAPID keys the channel stays
	// unavailable and reminders go to the feed and WebSocket only.
	var pushSvc *push.Service
	var pusher delivery.Pusher
	var keys handler.KeyProvider
	if cfg.VAPID.PublicKey != "" && cfg.VAPID.PrivateKey != "" {
		pushSvc = push.NewService(push.Config{
			VAPIDPublicKey:  cfg.VAPID.PublicKey,
			VAPIDPrivateKey: cfg.VAPID.PrivateKey,
			Subscriber:      cfg.VAPID.Subscriber,
		})
		pusher = pushSvc
		keys = pushSvc
	}

	sink := delivery.NewSink(settings, subs, feed, pusher, hub, cfg.BaseURL, logger.With("component", "delivery"))

	scheduler := reminder.NewScheduler(events, settings, sink, logger.With("component", "reminder"))
	events.OnDelete(scheduler.Cancel)

	sweep, err := reminder.NewSweep(events, settings, sink, logger.With("component", "sweep"),
		cfg.SweepCron, time.Duration(cfg.SweepToleranceSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("recovery sweep: %w", err)
	}

	backupMgr := backup.NewManager(docs, cfg.DataDir, logger.With("component", "backup"))

	userEmail := cfg.CurrentUser + "@agendaemgrupo.app"
	exportPath := filepath.Join(cfg.DataDir, "calendar.ics")

	return &Server{
		cfg:           cfg,
		hub:           hub,
		scheduler:     scheduler,
		sweep:         sweep,
		groupH:        handler.NewGroupHandler(groups, events, logger.With("component", "group_handler"), cfg.CurrentUser, userEmail),
		eventH:        handler.NewEventHandler(events, groups, settings, feed, scheduler, logger.With("component", "event_handler"), cfg.CurrentUser, exportPath),
		notificationH: handler.NewNotificationHandler(feed),
		settingsH:     handler.NewSettingsHandler(settings, logger.With("component", "settings_handler")),
		pushH:         handler.NewPushHandler(subs, keys, logger.With("component", "push_handler")),
		calendarH:     handler.NewCalendarHandler(events, logger.With("component", "calendar_handler")),
		appH:          handler.NewAppHandler(events, app, sweep, logger.With("component", "app_handler"), cfg.CurrentUser, cfg.BaseURL),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		logger:        logger,
	}, nil
}

// Start re-arms reminder timers for loaded events and begins the
// recovery sweep.
func (s *Server) Start() {
	s.scheduler.Rearm()
	s.sweep.Start()
}

// Stop halts the sweep and cancels every armed timer.
func (s *Server) Stop() {
	s.sweep.Stop()
	s.scheduler.Shutdown()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Groups
	mux.HandleFunc("POST /api/groups", s.groupH.Create)
	mux.HandleFunc("GET /api/groups", s.groupH.List)
	mux.HandleFunc("GET /api/groups/{id}", s.groupH.Get)
	mux.HandleFunc("DELETE /api/groups/{id}", s.groupH.Delete)
	mux.HandleFunc("POST /api/groups/{id}/members", s.groupH.AddMember)
	mux.HandleFunc("DELETE /api/groups/{id}/members/{email}", s.groupH.RemoveMember)

	// Events
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)
	mux.HandleFunc("POST /api/events/{id}/join", s.eventH.Join)
	mux.HandleFunc("POST /api/events/{id}/leave", s.eventH.Leave)
	mux.HandleFunc("POST /api/events/{id}/snooze", s.eventH.Snooze)
	mux.HandleFunc("GET /api/events/{id}/calendar", s.calendarH.ExportEvent)
	mux.HandleFunc("GET /api/events/{id}/share", s.appH.Share)
	mux.HandleFunc("GET /api/calendar.ics", s.calendarH.ExportAll)

	// Notification feed
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("DELETE /api/notifications", s.notificationH.Clear)

	// Settings
	mux.HandleFunc("GET /api/settings/notifications", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings/notifications", s.settingsH.Update)

	// Push subscriptions
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Delete)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)

	// Backups
	mux.HandleFunc("POST /api/backup", s.backupH.Export)
	mux.HandleFunc("GET /api/backup", s.backupH.List)
	mux.HandleFunc("POST /api/backup/restore", s.backupH.Restore)
	mux.HandleFunc("DELETE /api/backup/{name}", s.backupH.Delete)

	// App lifecycle
	mux.HandleFunc("GET /api/deeplink", s.appH.DeepLink)
	mux.HandleFunc("POST /api/app/resume", s.appH.Resume)
	mux.HandleFunc("GET /api/app/installed", s.appH.Installed)
	mux.HandleFunc("POST /api/app/installed", s.appH.MarkInstalled)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
