package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/eventhub/internal/event"
	"github.com/hitoshi/eventhub/internal/model"
	"github.com/hitoshi/eventhub/internal/repository"
)

// --- モック定義 ---

// mockEventService はEventServiceInterfaceのモック実装。
type mockEventService struct {
	listFn   func(ctx context.Context, q repository.ListEventsQuery) ([]*model.Event, error)
	getFn    func(ctx context.Context, id string) (*model.Event, error)
	createFn func(ctx context.Context, input event.CreateEventInput) (*model.Event, error)
	updateFn func(ctx context.Context, id string, patch event.EventPatch) (*model.Event, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockEventService) ListEvents(ctx context.Context, q repository.ListEventsQuery) ([]*model.Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, nil
}

func (m *mockEventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewEventNotFoundError(id)
}

func (m *mockEventService) CreateEvent(ctx context.Context, input event.CreateEventInput) (*model.Event, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockEventService) UpdateEvent(ctx context.Context, id string, patch event.EventPatch) (*model.Event, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockEventService) DeleteEvent(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func sampleEvent(id string) *model.Event {
	return &model.Event{
		ID:           id,
		Title:        "Spring Festival",
		Description:  "<p>Join us!</p>",
		Organization: "MCC",
		StartTime:    time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC),
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

// --- GET /events テスト ---

func TestEventHandler_ListEvents_QueryParams(t *testing.T) {
	var gotQuery repository.ListEventsQuery
	svc := &mockEventService{
		listFn: func(ctx context.Context, q repository.ListEventsQuery) ([]*model.Event, error) {
			gotQuery = q
			return []*model.Event{sampleEvent("e-1")}, nil
		},
	}
	h := NewEventHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/events?skip=20&limit=10&organization=MCC", nil)
	w := httptest.NewRecorder()

	h.ListEvents(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotQuery.Offset != 20 || gotQuery.Limit != 10 || gotQuery.Organization != "MCC" {
		t.Errorf("query = %+v", gotQuery)
	}
}

func TestEventHandler_ListEvents_DefaultParams(t *testing.T) {
	var gotQuery repository.ListEventsQuery
	svc := &mockEventService{
		listFn: func(ctx context.Context, q repository.ListEventsQuery) ([]*model.Event, error) {
			gotQuery = q
			return nil, nil
		},
	}
	h := NewEventHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()

	h.ListEvents(w, req)

	if gotQuery.Offset != 0 || gotQuery.Limit != 0 || gotQuery.Organization != "" {
		t.Errorf("query = %+v, want zero values", gotQuery)
	}

	// 空結果でもnullではなく[]を返す
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestEventHandler_ListEvents_InvalidSkip(t *testing.T) {
	h := NewEventHandler(&mockEventService{})

	for _, target := range []string{"/events?skip=abc", "/events?skip=-1", "/events?limit=xyz"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()

		h.ListEvents(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", target, resp.StatusCode, http.StatusBadRequest)
		}
	}
}

// --- GET /events/:id テスト ---

func TestEventHandler_GetEvent_Success(t *testing.T) {
	svc := &mockEventService{
		getFn: func(ctx context.Context, id string) (*model.Event, error) {
			return sampleEvent(id), nil
		},
	}
	h := NewEventHandler(svc)

	req := newRequestWithURLParam(http.MethodGet, "/events/e-1", "id", "e-1")
	w := httptest.NewRecorder()

	h.GetEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body eventResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.ID != "e-1" {
		t.Errorf("id = %q, want e-1", body.ID)
	}
	if body.StartTime != "2026-04-01T18:00:00Z" {
		t.Errorf("start_time = %q, want RFC3339", body.StartTime)
	}
}

func TestEventHandler_GetEvent_NotFound(t *testing.T) {
	h := NewEventHandler(&mockEventService{})

	req := newRequestWithURLParam(http.MethodGet, "/events/missing", "id", "missing")
	w := httptest.NewRecorder()

	h.GetEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

// --- POST /events テスト ---

func TestEventHandler_CreateEvent_Success(t *testing.T) {
	var gotInput event.CreateEventInput
	svc := &mockEventService{
		createFn: func(ctx context.Context, input event.CreateEventInput) (*model.Event, error) {
			gotInput = input
			return sampleEvent("e-new"), nil
		},
	}
	h := NewEventHandler(svc)

	body := `{
		"title": "Spring Festival",
		"description": "<p>Join us!</p>",
		"organization": "MCC",
		"start_time": "2026-04-01T18:00:00Z",
		"end_time": "2026-04-01T20:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if gotInput.Title != "Spring Festival" || gotInput.Organization != "MCC" {
		t.Errorf("input = %+v", gotInput)
	}
}

func TestEventHandler_CreateEvent_ValidationError(t *testing.T) {
	svc := &mockEventService{
		createFn: func(ctx context.Context, input event.CreateEventInput) (*model.Event, error) {
			return nil, model.NewInvalidRequestError("titleは必須です")
		},
	}
	h := NewEventHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"organization":"MCC"}`))
	w := httptest.NewRecorder()

	h.CreateEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestEventHandler_CreateEvent_InvalidJSON(t *testing.T) {
	h := NewEventHandler(&mockEventService{})

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	h.CreateEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

// --- PUT /events/:id テスト ---

func TestEventHandler_UpdateEvent_PartialBody(t *testing.T) {
	var gotPatch event.EventPatch
	svc := &mockEventService{
		updateFn: func(ctx context.Context, id string, patch event.EventPatch) (*model.Event, error) {
			gotPatch = patch
			return sampleEvent(id), nil
		},
	}
	h := NewEventHandler(svc)

	req := newRequestWithBodyAndURLParam(http.MethodPut, "/events/e-1",
		strings.NewReader(`{"title":"New Title"}`), "id", "e-1")
	w := httptest.NewRecorder()

	h.UpdateEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// 指定フィールドのみが非nil
	if gotPatch.Title == nil || *gotPatch.Title != "New Title" {
		t.Error("Title should be set in patch")
	}
	if gotPatch.Description != nil || gotPatch.Organization != nil ||
		gotPatch.StartTime != nil || gotPatch.EndTime != nil || gotPatch.ImageURL != nil {
		t.Errorf("omitted fields should be nil, got %+v", gotPatch)
	}
}

func TestEventHandler_UpdateEvent_NotFound(t *testing.T) {
	svc := &mockEventService{
		updateFn: func(ctx context.Context, id string, patch event.EventPatch) (*model.Event, error) {
			return nil, model.NewEventNotFoundError(id)
		},
	}
	h := NewEventHandler(svc)

	req := newRequestWithBodyAndURLParam(http.MethodPut, "/events/missing",
		strings.NewReader(`{}`), "id", "missing")
	w := httptest.NewRecorder()

	h.UpdateEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

// --- DELETE /events/:id テスト ---

func TestEventHandler_DeleteEvent_Success(t *testing.T) {
	svc := &mockEventService{
		deleteFn: func(ctx context.Context, id string) error {
			if id != "e-1" {
				t.Errorf("id = %q, want e-1", id)
			}
			return nil
		},
	}
	h := NewEventHandler(svc)

	req := newRequestWithURLParam(http.MethodDelete, "/events/e-1", "id", "e-1")
	w := httptest.NewRecorder()

	h.DeleteEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestEventHandler_DeleteEvent_NotFound(t *testing.T) {
	svc := &mockEventService{
		deleteFn: func(ctx context.Context, id string) error {
			return model.NewEventNotFoundError(id)
		},
	}
	h := NewEventHandler(svc)

	req := newRequestWithURLParam(http.MethodDelete, "/events/missing", "id", "missing")
	w := httptest.NewRecorder()

	h.DeleteEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestEventHandler_DeleteEvent_InternalError(t *testing.T) {
	svc := &mockEventService{
		deleteFn: func(ctx context.Context, id string) error {
			return errors.New("db down")
		},
	}
	h := NewEventHandler(svc)

	req := newRequestWithURLParam(http.MethodDelete, "/events/e-1", "id", "e-1")
	w := httptest.NewRecorder()

	h.DeleteEvent(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
}
