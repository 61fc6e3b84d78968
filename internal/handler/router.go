package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/timestop/internal/metrics"
	"github.com/hitoshi/timestop/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// サービス
	AuthService        AuthServiceInterface
	GameService        GameServiceInterface
	LeaderboardService LeaderboardServiceInterface

	// メトリクス。nilの場合は/metricsを公開しない。
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// DB。nilの場合は/healthでDB疎通確認をスキップする（インメモリ構成）。
	DB *sql.DB
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging
//
// 認証ルート（/auth/*）と公開リーダーボードは認証ミドルウェアの外に配置する。
// /api配下はBearer認証 → API全般レート制限を通過する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	var recordStatus middleware.StatusRecorderFunc
	if deps.Metrics != nil {
		recordStatus = deps.Metrics.RecordHTTPStatus
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, recordStatus))

	authHandler := NewAuthHandler(deps.AuthService)
	gameHandler := NewGameHandler(deps.GameService)
	leaderboardHandler := NewLeaderboardHandler(deps.LeaderboardService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.DB))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/users", authHandler.Users)
	})

	// 公開リーダーボード（上位のみ）
	r.Get("/api/leaderboard", leaderboardHandler.Leaderboard)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 詳細リーダーボード（ページネーション付き）
		r.Get("/api/leaderboard/detailed", leaderboardHandler.Detailed)

		// ゲームセッション管理（本人のみ）
		r.Route("/api/game/{userId}", func(r chi.Router) {
			r.Use(middleware.NewSelfOnlyMiddleware())

			// POST /api/game/{userId}/start - 開始専用レート制限を追加
			r.With(deps.RateLimiter.GameStartMiddleware()).Post("/start", gameHandler.Start)
			r.Post("/stop", gameHandler.Stop)
			r.Get("/", gameHandler.Results)
		})
	})

	return r
}

// newHealthHandler はヘルスチェックハンドラーを返す。
// DBが構成されている場合は疎通確認を行う。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
