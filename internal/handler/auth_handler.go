// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/eventhub/internal/auth"
	"github.com/hitoshi/eventhub/internal/middleware"
	"github.com/hitoshi/eventhub/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は許可リストを照合してセッションを発行する。
	Login(ctx context.Context, email string) (*auth.LoginResult, error)
	// Validate はセッショントークンを検証してProfileを返す。
	Validate(ctx context.Context, token string) (*model.Profile, error)
	// Logout はセッションを破棄し、セッションが実在したかを返す。冪等で常に成功する。
	Logout(ctx context.Context, token string) bool
	// ListAdmins は全管理者を返す。
	ListAdmins(ctx context.Context) ([]*model.Profile, error)
	// AddAdmin は管理者を追加する。
	AddAdmin(ctx context.Context, email string) (*model.Profile, error)
	// RemoveAdmin は管理者を削除する。自分自身は削除できない。
	RemoveAdmin(ctx context.Context, callerEmail, email string) error
}

// AuthHandler は認証と管理者管理のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email string `json:"email"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// messageResponse はメッセージのみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// verifyResponse はセッション検証成功時のレスポンス。
type verifyResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
}

// adminRequest は管理者追加リクエストのボディ。
type adminRequest struct {
	Email string `json:"email"`
}

// adminResponse は管理者情報のAPIレスポンス。
type adminResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// Login は管理者ログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("emailは必須です"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{
		Token:   result.Token,
		Email:   result.Email,
		Message: "Login successful",
	})
}

// Logout はセッションを破棄する。
// POST /auth/logout
//
// トークンの有無にかかわらず常に200を返す（冪等）。
// レスポンスメッセージでケースを区別する。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Header.Get("Authorization") == "" {
		json.NewEncoder(w).Encode(messageResponse{Message: "No session to logout"})
		return
	}

	token := middleware.BearerToken(r)

	// セッションが実在した場合のみ「ログアウトした」と報告する。
	// 期限切れでもストアに残っていれば破棄成功として扱う。
	if h.service.Logout(r.Context(), token) {
		json.NewEncoder(w).Encode(messageResponse{Message: "Logged out successfully"})
		return
	}
	json.NewEncoder(w).Encode(messageResponse{Message: "Already logged out"})
}

// Verify はセッショントークンの有効性を確認する。
// GET /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)

	profile, err := h.service.Validate(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(verifyResponse{
		Valid: true,
		Email: profile.Email,
	})
}

// ListAdmins は管理者一覧を返す。
// GET /auth/admins
func (h *AuthHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]adminResponse, 0, len(admins))
	for _, admin := range admins {
		resp = append(resp, toAdminResponse(admin))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// AddAdmin は管理者を追加する。
// POST /auth/admins
func (h *AuthHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("emailは必須です"))
		return
	}

	admin, err := h.service.AddAdmin(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAdminResponse(admin))
}

// RemoveAdmin は管理者を削除する。
// DELETE /auth/admins/:email
func (h *AuthHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.ProfileFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewSessionInvalidError())
		return
	}

	email := chi.URLParam(r, "email")

	if err := h.service.RemoveAdmin(r.Context(), caller.Email, email); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toAdminResponse はmodel.ProfileからAPIレスポンスに変換する。
func toAdminResponse(profile *model.Profile) adminResponse {
	return adminResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt.Format(timeFormat),
	}
}
