package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// newRequestWithURLParam はchiのURLパラメータを注入したテストリクエストを生成する。
// ハンドラーを直接呼び出すテストで使用する（ルーター経由ではchiが自動で設定する）。
func newRequestWithURLParam(method, target, key, value string) *http.Request {
	return newRequestWithBodyAndURLParam(method, target, nil, key, value)
}

// newRequestWithBodyAndURLParam はボディとchiのURLパラメータを注入した
// テストリクエストを生成する。
func newRequestWithBodyAndURLParam(method, target string, body io.Reader, key, value string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
