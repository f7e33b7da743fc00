package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/eventhub/internal/metrics"
	"github.com/hitoshi/eventhub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionValidator   middleware.SessionValidator
	CORSAllowedOrigins []string
	Logger             *slog.Logger

	// 認証・管理者管理
	AuthService AuthServiceInterface

	// イベント
	EventService EventServiceInterface

	// アジェンダ最適化
	AgendaService AgendaServiceInterface

	// 運用エンドポイント
	DB               *sql.DB
	MetricsCollector *metrics.Collector
	MetricsGatherer  prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging
//
// 認証ミドルウェアは管理者専用ルート（イベントの更新・削除、管理者管理）
// のみに適用する。イベントの閲覧・作成とアジェンダ最適化は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.MetricsCollector))

	authHandler := NewAuthHandler(deps.AuthService)
	eventHandler := NewEventHandler(deps.EventService)
	agendaHandler := NewAgendaHandler(deps.AgendaService)

	requireAuth := middleware.NewAuthMiddleware(deps.SessionValidator)

	// --- 認証不要のルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/verify", authHandler.Verify)

		// 管理者管理（管理者セッション必須）
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/admins", authHandler.ListAdmins)
			r.Post("/admins", authHandler.AddAdmin)
			r.Delete("/admins/{email}", authHandler.RemoveAdmin)
		})
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		// イベント投稿は認証不要（学生団体が直接投稿できる）
		r.Post("/", eventHandler.CreateEvent)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", eventHandler.GetEvent)

			// 更新・削除は管理者セッション必須
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Put("/", eventHandler.UpdateEvent)
				r.Delete("/", eventHandler.DeleteEvent)
			})
		})
	})

	r.Post("/api/agenda", agendaHandler.Optimize)

	// --- 運用エンドポイント ---

	r.Get("/health", NewHealthHandler(deps.DB))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	return r
}
