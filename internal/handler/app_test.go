package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

type fakeSweeper struct{ runs int }

func (s *fakeSweeper) RunOnce() { s.runs++ }

func (e *env) appHandler(sweeper Sweeper, app *store.AppStore) *AppHandler {
	return NewAppHandler(e.events, app, sweeper, discard(), "rodrigo", "https://agenda.local")
}

func TestDeepLinkJoinConsumesAction(t *testing.T) {
	e := newEnv(t)
	g := e.seedGroup(t)
	created, _ := e.events.Create("Run", "", g.ID, g.Name, model.TypeSport, futureDate(2), "08:00", false, "ana")
	h := e.appHandler(&fakeSweeper{}, nil)

	url := fmt.Sprintf("/api/deeplink?event=%d&action=join", created[0].ID)
	req := httptest.NewRequest("GET", url, nil)
	rec := httptest.NewRecorder()
	h.DeepLink(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Event  model.Event `json:"event"`
		Action string      `json:"action"`
		URL    string      `json:"url"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)

	if !resp.Event.HasParticipant("rodrigo") {
		t.Errorf("join not applied: %v", resp.Event.Participants)
	}
	if resp.URL != "https://agenda.local/" {
		t.Errorf("url = %q, want stripped base url", resp.URL)
	}
}

func TestDeepLinkUnknownEvent(t *testing.T) {
	e := newEnv(t)
	h := e.appHandler(&fakeSweeper{}, nil)

	req := httptest.NewRequest("GET", "/api/deeplink?event=999&action=join", nil)
	rec := httptest.NewRecorder()
	h.DeepLink(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeepLinkWithoutActionJustResolves(t *testing.T) {
	e := newEnv(t)
	g := e.seedGroup(t)
	created, _ := e.events.Create("Run", "", g.ID, g.Name, model.TypeSport, futureDate(2), "08:00", false, "ana")
	h := e.appHandler(&fakeSweeper{}, nil)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/deeplink?event=%d", created[0].ID), nil)
	rec := httptest.NewRecorder()
	h.DeepLink(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got, _ := e.events.Get(created[0].ID)
	if got.HasParticipant("rodrigo") {
		t.Error("no action should not join")
	}
}

func TestResumeRunsSweep(t *testing.T) {
	e := newEnv(t)
	sweeper := &fakeSweeper{}
	h := e.appHandler(sweeper, nil)

	req := httptest.NewRequest("POST", "/api/app/resume", nil)
	rec := httptest.NewRecorder()
	h.Resume(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if sweeper.runs != 1 {
		t.Errorf("sweep ran %d times, want 1", sweeper.runs)
	}
}

func TestShare(t *testing.T) {
	e := newEnv(t)
	g := e.seedGroup(t)
	created, _ := e.events.Create("Run", "", g.ID, g.Name, model.TypeSport, futureDate(2), "08:00", false, "rodrigo")
	h := e.appHandler(&fakeSweeper{}, nil)

	req := httptest.NewRequest("GET", "/api/events/1/share", nil)
	req.SetPathValue("id", fmt.Sprint(created[0].ID))
	rec := httptest.NewRecorder()
	h.Share(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["title"] != "Run" {
		t.Errorf("title = %q", resp["title"])
	}
	if want := fmt.Sprintf("https://agenda.local/?event=%d", created[0].ID); resp["url"] != want {
		t.Errorf("url = %q, want %q", resp["url"], want)
	}
}
