package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sandoku/internal/model"
)

// TemplateServiceInterface はテンプレートハンドラーが必要とするサービスインターフェース。
type TemplateServiceInterface interface {
	// GenerateTemplate はLLMに貼り付けるための読書テンプレートを生成する。
	// chapterIDが空の場合は記事全体を対象とする。
	GenerateTemplate(ctx context.Context, articleID, pass, chapterID string) (string, error)
}

// TemplateHandler はテンプレート生成のHTTPハンドラー。
type TemplateHandler struct {
	service TemplateServiceInterface
}

// NewTemplateHandler はTemplateHandlerを生成する。
func NewTemplateHandler(service TemplateServiceInterface) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// templateResponse はテンプレート生成のレスポンス。
type templateResponse struct {
	ArticleID string `json:"article_id"`
	Pass      string `json:"pass"`
	ChapterID string `json:"chapter_id,omitempty"`
	Template  string `json:"template"`
}

// GetTemplate は読書テンプレートを生成する。
// GET /api/articles/:id/template?pass=manual&chapter_id=xxx
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")
	pass := r.URL.Query().Get("pass")
	chapterID := r.URL.Query().Get("chapter_id")

	if pass == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("passを指定してください"))
		return
	}

	tmpl, err := h.service.GenerateTemplate(r.Context(), articleID, pass, chapterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templateResponse{
		ArticleID: articleID,
		Pass:      pass,
		ChapterID: chapterID,
		Template:  tmpl,
	})
}
