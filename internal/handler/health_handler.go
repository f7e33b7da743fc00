package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthHandler はヘルスチェックのHTTPハンドラーを返す。
// GET /health
//
// DB接続が確認できれば200、できなければ503を返す。
// Dockerのヘルスチェックとロードバランサーの死活監視で使用する。
func NewHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check: database unreachable",
					slog.String("error", err.Error()),
				)
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(healthResponse{Status: "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
	}
}
