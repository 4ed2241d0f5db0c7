package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/sandoku/internal/model"
)

// mockTemplateService はTemplateServiceInterfaceのモック実装。
type mockTemplateService struct {
	generateFn func(ctx context.Context, articleID, pass, chapterID string) (string, error)
}

func (m *mockTemplateService) GenerateTemplate(ctx context.Context, articleID, pass, chapterID string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, articleID, pass, chapterID)
	}
	return "", nil
}

// --- GET /api/articles/:id/template テスト ---

func TestTemplateHandler_GetTemplate_WholeArticle(t *testing.T) {
	svc := &mockTemplateService{
		generateFn: func(ctx context.Context, articleID, pass, chapterID string) (string, error) {
			if pass != "manual" {
				t.Errorf("pass = %q, want %q", pass, "manual")
			}
			if chapterID != "" {
				t.Errorf("chapterID = %q, want empty", chapterID)
			}
			return "以下の文章を通読します。\n\n本文...\n", nil
		},
	}

	h := NewTemplateHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/article-1/template?pass=manual", nil)
	req = withChiURLParam(req, "id", "article-1")
	w := httptest.NewRecorder()

	h.GetTemplate(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["pass"] != "manual" {
		t.Errorf("pass = %q, want %q", result["pass"], "manual")
	}
	tmpl, _ := result["template"].(string)
	if !strings.Contains(tmpl, "通読") {
		t.Errorf("template should contain pass instructions, got %q", tmpl)
	}
	// 記事全体の場合はchapter_idが省略される
	if _, ok := result["chapter_id"]; ok {
		t.Errorf("chapter_id should be omitted for whole article, got %v", result["chapter_id"])
	}
}

func TestTemplateHandler_GetTemplate_ChapterScoped(t *testing.T) {
	svc := &mockTemplateService{
		generateFn: func(ctx context.Context, articleID, pass, chapterID string) (string, error) {
			if chapterID != "ch-2" {
				t.Errorf("chapterID = %q, want %q", chapterID, "ch-2")
			}
			return "第2章のテンプレート\n", nil
		},
	}

	h := NewTemplateHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/article-1/template?pass=explain&chapter_id=ch-2", nil)
	req = withChiURLParam(req, "id", "article-1")
	w := httptest.NewRecorder()

	h.GetTemplate(w, req)

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["chapter_id"] != "ch-2" {
		t.Errorf("chapter_id = %q, want %q", result["chapter_id"], "ch-2")
	}
}

func TestTemplateHandler_GetTemplate_MissingPass(t *testing.T) {
	h := NewTemplateHandler(&mockTemplateService{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/article-1/template", nil)
	req = withChiURLParam(req, "id", "article-1")
	w := httptest.NewRecorder()

	h.GetTemplate(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestTemplateHandler_GetTemplate_InvalidPass(t *testing.T) {
	svc := &mockTemplateService{
		generateFn: func(ctx context.Context, articleID, pass, chapterID string) (string, error) {
			return "", model.NewInvalidPassError(pass)
		},
	}

	h := NewTemplateHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/article-1/template?pass=speed", nil)
	req = withChiURLParam(req, "id", "article-1")
	w := httptest.NewRecorder()

	h.GetTemplate(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestTemplateHandler_GetTemplate_ChapterNotFound(t *testing.T) {
	svc := &mockTemplateService{
		generateFn: func(ctx context.Context, articleID, pass, chapterID string) (string, error) {
			return "", model.NewChapterNotFoundError(chapterID)
		},
	}

	h := NewTemplateHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/article-1/template?pass=qa&chapter_id=missing", nil)
	req = withChiURLParam(req, "id", "article-1")
	w := httptest.NewRecorder()

	h.GetTemplate(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}

	body := parseAPIErrorResponse(t, w)
	if body["code"] != "CHAPTER_NOT_FOUND" {
		t.Errorf("code = %q, want %q", body["code"], "CHAPTER_NOT_FOUND")
	}
}
