package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/eventhub/internal/event"
	"github.com/hitoshi/eventhub/internal/model"
	"github.com/hitoshi/eventhub/internal/repository"
)

// timeFormat はAPIレスポンスのタイムスタンプ形式。
const timeFormat = time.RFC3339

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// ListEvents は検索条件に一致するイベントを返す。
	ListEvents(ctx context.Context, q repository.ListEventsQuery) ([]*model.Event, error)
	// GetEvent は指定IDのイベントを返す。
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	// CreateEvent はイベントを作成する。
	CreateEvent(ctx context.Context, input event.CreateEventInput) (*model.Event, error)
	// UpdateEvent はイベントを部分更新する。
	UpdateEvent(ctx context.Context, id string, patch event.EventPatch) (*model.Event, error)
	// DeleteEvent はイベントを削除する。
	DeleteEvent(ctx context.Context, id string) error
}

// EventHandler はイベントCRUDのHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{
		service: service,
	}
}

// createEventRequest はイベント作成リクエストのボディ。
type createEventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Organization string    `json:"organization"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	ImageURL     string    `json:"image_url"`
}

// updateEventRequest はイベント部分更新リクエストのボディ。
// JSONで省略されたフィールドはnilとなり、変更対象から除外される。
type updateEventRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Organization *string    `json:"organization"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	ImageURL     *string    `json:"image_url"`
}

// eventResponse はイベント情報のAPIレスポンス。
type eventResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Organization string `json:"organization"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ImageURL     string `json:"image_url"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListEvents はイベント一覧を取得する。
// GET /events?skip=0&limit=100&organization=xxx
//
// start_time昇順で返す。organizationは完全一致フィルタ。
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := repository.ListEventsQuery{
		Organization: r.URL.Query().Get("organization"),
	}

	if skip := r.URL.Query().Get("skip"); skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("skipは0以上の整数で指定してください"))
			return
		}
		q.Offset = n
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("limitは0以上の整数で指定してください"))
			return
		}
		q.Limit = n
	}

	events, err := h.service.ListEvents(r.Context(), q)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetEvent はイベント詳細を取得する。
// GET /events/:id
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	e, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEventResponse(e))
}

// CreateEvent はイベントを作成する。
// POST /events
//
// このエンドポイントは認証を要求しない（一般の学生団体がイベントを
// 投稿できる）。更新・削除のみ管理者セッションが必要。
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	e, err := h.service.CreateEvent(r.Context(), event.CreateEventInput{
		Title:        req.Title,
		Description:  req.Description,
		Organization: req.Organization,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEventResponse(e))
}

// UpdateEvent はイベントを部分更新する。
// PUT /events/:id
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	e, err := h.service.UpdateEvent(r.Context(), eventID, event.EventPatch{
		Title:        req.Title,
		Description:  req.Description,
		Organization: req.Organization,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEventResponse(e))
}

// DeleteEvent はイベントを削除する。
// DELETE /events/:id
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	if err := h.service.DeleteEvent(r.Context(), eventID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toEventResponse はmodel.EventからAPIレスポンスに変換する。
func toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Organization: e.Organization,
		StartTime:    e.StartTime.Format(timeFormat),
		EndTime:      e.EndTime.Format(timeFormat),
		ImageURL:     e.ImageURL,
		CreatedAt:    e.CreatedAt.Format(timeFormat),
		UpdatedAt:    e.UpdatedAt.Format(timeFormat),
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmailNotAuthorized, model.ErrCodeSessionInvalid, model.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case model.ErrCodeAdminExists, model.ErrCodeSelfRemoval, model.ErrCodeInvalidRequest, model.ErrCodeInvalidImageURL:
		return http.StatusBadRequest
	case model.ErrCodeAdminNotFound, model.ErrCodeEventNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
