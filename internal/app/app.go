// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/eventhub/internal/agenda"
	"github.com/hitoshi/eventhub/internal/auth"
	"github.com/hitoshi/eventhub/internal/config"
	"github.com/hitoshi/eventhub/internal/database"
	"github.com/hitoshi/eventhub/internal/event"
	"github.com/hitoshi/eventhub/internal/handler"
	"github.com/hitoshi/eventhub/internal/logger"
	"github.com/hitoshi/eventhub/internal/metrics"
	"github.com/hitoshi/eventhub/internal/model"
	"github.com/hitoshi/eventhub/internal/repository"
	"github.com/hitoshi/eventhub/internal/security"
	"github.com/hitoshi/eventhub/internal/session"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	eventRepo := repository.NewPostgresEventRepo(db)
	profileRepo := repository.NewPostgresProfileRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. セッションストアの初期化
	// プロセスローカルのインメモリストア。再起動で全セッションが消える
	sessions := session.NewStore()
	sessions.StartCleanup(cfg.SessionCleanupInterval)
	defer sessions.Stop()

	// 5. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 6. ドメインサービスの初期化
	authService := auth.NewService(
		profileRepo, sessions, collector,
		auth.ServiceConfig{SessionTTL: cfg.SessionTTL},
	)

	eventService := event.NewService(eventRepo, sanitizer, ssrfGuard)

	// 外向きHTTPクライアントはSSRF防止付き（補完APIのbase URLは設定で差し替え可能なため）
	agendaClient := agenda.NewClient(
		ssrfGuard.NewSafeClient(cfg.AgendaTimeout),
		slog.Default(),
		agenda.ClientConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.AgendaModel,
			Temperature: 0.7,
			MaxTokens:   cfg.AgendaMaxTokens,
		},
	)
	agendaService := agenda.NewService(agendaClient, collector, agenda.ServiceConfig{
		Timeout:    cfg.AgendaTimeout,
		RatePerMin: cfg.AgendaRatePerMin,
	})

	// 7. 初期管理者の投入（設定されている場合のみ）
	if cfg.SeedAdminEmail != "" {
		if err := seedAdmin(profileRepo, cfg.SeedAdminEmail); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		SessionValidator:   authService,
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		Logger:             slog.Default(),

		AuthService:   authService,
		EventService:  eventService,
		AgendaService: agendaService,

		DB:               db,
		MetricsCollector: collector,
		MetricsGatherer:  registry,
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// seedAdmin は初期管理者をProfileテーブルに投入する。
// 既に存在する場合は何もしない（冪等）。
func seedAdmin(profiles repository.ProfileRepository, email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := profiles.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := time.Now()
	if err := profiles.Create(ctx, &model.Profile{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      model.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return err
	}

	slog.Info("seeded initial admin",
		slog.String("email", email),
	)
	return nil
}

// splitOrigins はカンマ区切りのオリジンリストを分割する。
func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
