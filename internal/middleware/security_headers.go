package middleware

import "net/http"

// NewSecurityHeadersMiddleware はAPIの全レスポンスにセキュリティ関連の
// HTTPヘッダーを付与するミドルウェアを返す。イベントの説明文はHTML断片を
// 含むため、管理画面側での誤レンダリングに備えてnosniffとframe拒否を常に送る。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			next.ServeHTTP(w, r)
		})
	}
}
