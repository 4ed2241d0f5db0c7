package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sandoku/internal/metrics"
	"github.com/hitoshi/sandoku/internal/middleware"
)

// HealthChecker はヘルスチェックに必要な依存のインターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 監視
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 記事・進捗・テンプレート
	ArticleService  ArticleServiceInterface
	ProgressService ProgressServiceInterface
	TemplateService TemplateServiceInterface

	// ハイライト
	HighlightService HighlightServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	articleHandler := NewArticleHandler(deps.ArticleService)
	highlightHandler := NewHighlightHandler(deps.HighlightService)
	progressHandler := NewProgressHandler(deps.ProgressService)
	templateHandler := NewTemplateHandler(deps.TemplateService)

	// --- 監視用ルート（レート制限なし） ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/articles", func(r chi.Router) {
			// POST /api/articles - 記事取り込み（取り込み専用レート制限を追加）
			r.With(deps.RateLimiter.IngestMiddleware()).Post("/", articleHandler.IngestArticle)

			r.Get("/", articleHandler.ListArticles)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", articleHandler.GetArticle)
				r.Delete("/", articleHandler.DeleteArticle)
				r.Put("/position", articleHandler.UpdatePosition)

				// 章
				r.Get("/chapters", articleHandler.GetChapters)
				r.Post("/chapters/refresh", articleHandler.RefreshChapters)

				// ハイライト
				r.Route("/highlights", func(r chi.Router) {
					r.Post("/", highlightHandler.CreateHighlight)
					r.Get("/", highlightHandler.ListHighlights)

					r.Route("/{highlightID}", func(r chi.Router) {
						r.Patch("/", highlightHandler.UpdateHighlight)
						r.Delete("/", highlightHandler.DeleteHighlight)
					})
				})

				// 読書進捗
				r.Get("/progress", progressHandler.GetProgress)
				r.Post("/passes/{pass}/toggle", progressHandler.TogglePass)

				// テンプレート
				r.Get("/template", templateHandler.GetTemplate)
			})
		})
	})

	return r
}

// newHealthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("unhealthy"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
