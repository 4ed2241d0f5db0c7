package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/sandoku/internal/highlight"
	"github.com/hitoshi/sandoku/internal/metrics"
	"github.com/hitoshi/sandoku/internal/middleware"
)

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	pingErr error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.pingErr
}

// newTestRouter はテスト用の依存を束ねたルーターを生成する。
func newTestRouter(t *testing.T, deps *RouterDeps) http.Handler {
	t.Helper()

	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if deps.Collector == nil {
		deps.Collector = metrics.Noop{}
	}
	if deps.CORSAllowedOrigin == "" {
		deps.CORSAllowedOrigin = "http://localhost:3000"
	}
	if deps.RateLimiter == nil {
		rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			GeneralRate:     1000,
			GeneralBurst:    1000,
			IngestRate:      1000,
			IngestBurst:     1000,
			CleanupInterval: 1 * time.Minute,
		})
		t.Cleanup(rl.Stop)
		deps.RateLimiter = rl
	}
	if deps.ArticleService == nil {
		deps.ArticleService = &mockArticleService{}
	}
	if deps.ProgressService == nil {
		deps.ProgressService = &mockProgressService{}
	}
	if deps.TemplateService == nil {
		deps.TemplateService = &mockTemplateService{}
	}
	if deps.HighlightService == nil {
		deps.HighlightService = &mockHighlightService{}
	}

	return NewRouter(deps)
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{
		HealthChecker: &mockHealthChecker{},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRouter_HealthEndpoint_DatabaseDown(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{
		HealthChecker: &mockHealthChecker{pingErr: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusServiceUnavailable)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics output"))
		}),
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRouter_ArticleRoutes(t *testing.T) {
	articleSvc := &mockArticleService{
		getFn: func(ctx context.Context, articleID string) (*articleDetailResponse, error) {
			return &articleDetailResponse{ID: articleID, Title: "ルーティング確認"}, nil
		},
		getChaptersFn: func(ctx context.Context, articleID string) ([]chapterResponse, error) {
			return []chapterResponse{{ID: "ch-1", Title: "第1章"}}, nil
		},
	}

	router := newTestRouter(t, &RouterDeps{
		ArticleService: articleSvc,
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"記事取り込み", http.MethodPost, "/api/articles/", `{"title":"t","content":"c"}`, http.StatusCreated},
		{"記事一覧", http.MethodGet, "/api/articles/", "", http.StatusOK},
		{"記事詳細", http.MethodGet, "/api/articles/article-1", "", http.StatusOK},
		{"記事削除", http.MethodDelete, "/api/articles/article-1", "", http.StatusNoContent},
		{"章一覧", http.MethodGet, "/api/articles/article-1/chapters", "", http.StatusOK},
		{"章再検出", http.MethodPost, "/api/articles/article-1/chapters/refresh", "", http.StatusOK},
		{"読書位置更新", http.MethodPut, "/api/articles/article-1/position", `{"chapter_index":1}`, http.StatusOK},
		{"進捗取得", http.MethodGet, "/api/articles/article-1/progress", "", http.StatusOK},
		{"ステージ切替", http.MethodPost, "/api/articles/article-1/passes/manual/toggle", "", http.StatusOK},
		{"テンプレート生成", http.MethodGet, "/api/articles/article-1/template?pass=manual", "", http.StatusOK},
		{"未定義ルート", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = bytes.NewReader([]byte(tt.body))
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.want {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.want)
			}
		})
	}
}

func TestRouter_HighlightRoutes(t *testing.T) {
	highlightSvc := &mockHighlightService{
		createFn: func(ctx context.Context, articleID string, input highlight.CreateInput) (*highlightResponse, error) {
			if articleID != "article-1" {
				t.Errorf("articleID = %q, want %q", articleID, "article-1")
			}
			return &highlightResponse{ID: "hl-1", ArticleID: articleID}, nil
		},
		updateFn: func(ctx context.Context, articleID, highlightID string, input highlight.UpdateInput) (*highlightResponse, error) {
			if highlightID != "hl-1" {
				t.Errorf("highlightID = %q, want %q", highlightID, "hl-1")
			}
			return &highlightResponse{ID: highlightID}, nil
		},
	}

	router := newTestRouter(t, &RouterDeps{
		HighlightService: highlightSvc,
	})

	// 作成
	data, _ := json.Marshal(map[string]interface{}{
		"text": "x", "color": "yellow", "start_offset": 0, "end_offset": 1,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/articles/article-1/highlights/", bytes.NewReader(data))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("create status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	// 一覧
	req = httptest.NewRequest(http.MethodGet, "/api/articles/article-1/highlights/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("list status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	// 更新
	data, _ = json.Marshal(map[string]string{"note": "n"})
	req = httptest.NewRequest(http.MethodPatch, "/api/articles/article-1/highlights/hl-1", bytes.NewReader(data))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("update status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	// 削除
	req = httptest.NewRequest(http.MethodDelete, "/api/articles/article-1/highlights/hl-1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

func TestRouter_CORSHeadersApplied(t *testing.T) {
	router := newTestRouter(t, &RouterDeps{
		CORSAllowedOrigin: "https://reader.example.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "https://reader.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://reader.example.com")
	}
}

func TestRouter_IngestRateLimitApplied(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     1000,
		GeneralBurst:    1000,
		IngestRate:      1,
		IngestBurst:     1,
		CleanupInterval: 1 * time.Minute,
	})
	t.Cleanup(rl.Stop)

	router := newTestRouter(t, &RouterDeps{
		RateLimiter: rl,
	})

	body := `{"title":"t","content":"c"}`

	// 1回目の取り込みは通る
	req := httptest.NewRequest(http.MethodPost, "/api/articles/", bytes.NewReader([]byte(body)))
	req.RemoteAddr = "203.0.113.100:1000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("first ingest status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	// 2回目の取り込みはレート制限に引っかかる
	req = httptest.NewRequest(http.MethodPost, "/api/articles/", bytes.NewReader([]byte(body)))
	req.RemoteAddr = "203.0.113.100:1001"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("second ingest status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}

	// GETは取り込み専用レート制限の対象外
	req = httptest.NewRequest(http.MethodGet, "/api/articles/", nil)
	req.RemoteAddr = "203.0.113.100:1002"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("list status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}
