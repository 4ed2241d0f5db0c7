package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProgressServiceInterface は読書進捗ハンドラーが必要とするサービスインターフェース。
type ProgressServiceInterface interface {
	// GetProgress は記事の三読ステージ進捗を返す。
	GetProgress(ctx context.Context, articleID string) (*progressResponse, error)
	// ToggleProgress は指定ステージの完了状態を反転させる。
	ToggleProgress(ctx context.Context, articleID, pass string) (*progressResponse, error)
}

// ProgressHandler は読書進捗管理のHTTPハンドラー。
type ProgressHandler struct {
	service ProgressServiceInterface
}

// NewProgressHandler はProgressHandlerを生成する。
func NewProgressHandler(service ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// progressResponse は読書進捗のレスポンス。
// next_passは全ステージ完了時には含まれない。
type progressResponse struct {
	ArticleID            string `json:"article_id"`
	ManualDone           bool   `json:"manual_done"`
	ExplainDone          bool   `json:"explain_done"`
	QADone               bool   `json:"qa_done"`
	CompletionPercentage int    `json:"completion_percentage"`
	NextPass             string `json:"next_pass,omitempty"`
	Completed            bool   `json:"completed"`
}

// GetProgress は記事の読書進捗を取得する。
// GET /api/articles/:id/progress
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	progress, err := h.service.GetProgress(r.Context(), articleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progress)
}

// TogglePass は指定ステージの完了状態を反転させる。
// POST /api/articles/:id/passes/:pass/toggle
func (h *ProgressHandler) TogglePass(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")
	pass := chi.URLParam(r, "pass")

	progress, err := h.service.ToggleProgress(r.Context(), articleID, pass)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progress)
}
