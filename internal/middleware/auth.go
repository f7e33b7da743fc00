// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/eventhub/internal/model"
)

// bearerPrefix はAuthorizationヘッダーのトークン接頭辞。
const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// profileContextKey はリクエストコンテキストに認証済みProfileを格納するためのキー。
var profileContextKey = contextKey("profile")

// SessionValidator はセッショントークンの検証に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.Profile, error)
}

// BearerToken はAuthorizationヘッダーからセッショントークンを取り出す。
// "Bearer "接頭辞がある場合は取り除き、ない場合はヘッダー値をそのまま
// トークンとして扱う。ヘッダーが空の場合は空文字列を返す。
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimPrefix(header, bearerPrefix)
}

// NewAuthMiddleware はBearerトークンを検証するミドルウェアを返す。
// 有効なセッションの場合は認証済みProfileをリクエストコンテキストに注入する。
// トークンなし・無効・期限切れはいずれも統一エラーフォーマットの401を返す。
func NewAuthMiddleware(validator SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)

			profile, err := validator.Validate(r.Context(), token)
			if err != nil {
				if apiErr, ok := err.(*model.APIError); ok {
					WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
					return
				}
				WriteInternalServerError(w)
				return
			}

			ctx := ContextWithProfile(r.Context(), profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileFromContext はリクエストコンテキストから認証済みProfileを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func ProfileFromContext(ctx context.Context) (*model.Profile, error) {
	profile, ok := ctx.Value(profileContextKey).(*model.Profile)
	if !ok || profile == nil {
		return nil, fmt.Errorf("profile not found in context")
	}
	return profile, nil
}

// ContextWithProfile はコンテキストに認証済みProfileを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithProfile(ctx context.Context, profile *model.Profile) context.Context {
	return context.WithValue(ctx, profileContextKey, profile)
}
