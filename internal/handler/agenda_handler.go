package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/eventhub/internal/agenda"
	"github.com/hitoshi/eventhub/internal/model"
)

// AgendaServiceInterface はアジェンダハンドラーが必要とするサービスインターフェース。
type AgendaServiceInterface interface {
	// Optimize はユーザー入力と会話履歴からアジェンダを生成する。
	// 上流API失敗時もエラーではなく定型文を返す。
	Optimize(ctx context.Context, userMessage string, history []agenda.ChatMessage) string
}

// AgendaHandler はアジェンダ最適化のHTTPハンドラー。
type AgendaHandler struct {
	service AgendaServiceInterface
}

// NewAgendaHandler はAgendaHandlerを生成する。
func NewAgendaHandler(service AgendaServiceInterface) *AgendaHandler {
	return &AgendaHandler{
		service: service,
	}
}

// agendaRequest はアジェンダ最適化リクエストのボディ。
type agendaRequest struct {
	Message string `json:"message"`
	History []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
}

// agendaResponse はアジェンダ最適化のレスポンス。
type agendaResponse struct {
	Response string `json:"response"`
}

// Optimize は会議トピックを整理されたアジェンダに変換する。
// POST /api/agenda
//
// 上流APIが失敗しても200を返し、responseフィールドに謝罪文を格納する。
func (h *AgendaHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req agendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Message == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("messageは必須です"))
		return
	}

	history := make([]agenda.ChatMessage, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, agenda.ChatMessage{Role: m.Role, Content: m.Content})
	}

	result := h.service.Optimize(r.Context(), req.Message, history)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(agendaResponse{Response: result})
}
