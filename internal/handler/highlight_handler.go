package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sandoku/internal/highlight"
	"github.com/hitoshi/sandoku/internal/model"
)

// HighlightServiceInterface はハイライトハンドラーが必要とするサービスインターフェース。
type HighlightServiceInterface interface {
	// CreateHighlight は記事本文の文字範囲にハイライトを作成する。
	CreateHighlight(ctx context.Context, articleID string, input highlight.CreateInput) (*highlightResponse, error)
	// ListHighlights は記事のハイライト一覧を作成順で返す。colorで絞り込める。
	ListHighlights(ctx context.Context, articleID, color string) ([]highlightResponse, error)
	// UpdateHighlight はハイライトのメモと色を更新する。オフセットは変更できない。
	UpdateHighlight(ctx context.Context, articleID, highlightID string, input highlight.UpdateInput) (*highlightResponse, error)
	// DeleteHighlight はハイライトを削除する。
	DeleteHighlight(ctx context.Context, articleID, highlightID string) error
}

// HighlightHandler はハイライト管理のHTTPハンドラー。
type HighlightHandler struct {
	service HighlightServiceInterface
}

// NewHighlightHandler はHighlightHandlerを生成する。
func NewHighlightHandler(service HighlightServiceInterface) *HighlightHandler {
	return &HighlightHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// createHighlightRequest はハイライト作成リクエストのボディ。
type createHighlightRequest struct {
	Text        string `json:"text"`
	Note        string `json:"note,omitempty"`
	Color       string `json:"color"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// updateHighlightRequest はハイライト更新リクエストのボディ。
// nilフィールドは変更しない部分更新を行う。
type updateHighlightRequest struct {
	Note  *string `json:"note,omitempty"`
	Color *string `json:"color,omitempty"`
}

// highlightResponse はハイライトのレスポンス。
type highlightResponse struct {
	ID          string    `json:"id"`
	ArticleID   string    `json:"article_id"`
	Text        string    `json:"text"`
	Note        string    `json:"note,omitempty"`
	Color       string    `json:"color"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// highlightListResponse はハイライト一覧のレスポンス。
type highlightListResponse struct {
	Highlights []highlightResponse `json:"highlights"`
}

// CreateHighlight はハイライトを作成する。
// POST /api/articles/:id/highlights
func (h *HighlightHandler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	var req createHighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	created, err := h.service.CreateHighlight(r.Context(), articleID, highlight.CreateInput{
		Text:        req.Text,
		Note:        req.Note,
		Color:       req.Color,
		StartOffset: req.StartOffset,
		EndOffset:   req.EndOffset,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// ListHighlights は記事のハイライト一覧を取得する。
// GET /api/articles/:id/highlights?color=yellow
func (h *HighlightHandler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")
	color := r.URL.Query().Get("color")

	highlights, err := h.service.ListHighlights(r.Context(), articleID, color)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(highlightListResponse{Highlights: highlights})
}

// UpdateHighlight はハイライトのメモと色を更新する。
// PATCH /api/articles/:id/highlights/:highlightID
func (h *HighlightHandler) UpdateHighlight(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")
	highlightID := chi.URLParam(r, "highlightID")

	var req updateHighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	// noteとcolorの両方がnilの場合はバリデーションエラー
	if req.Note == nil && req.Color == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("noteまたはcolorのいずれかを指定してください"))
		return
	}

	updated, err := h.service.UpdateHighlight(r.Context(), articleID, highlightID, highlight.UpdateInput{
		Note:  req.Note,
		Color: req.Color,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteHighlight はハイライトを削除する。
// DELETE /api/articles/:id/highlights/:highlightID
func (h *HighlightHandler) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")
	highlightID := chi.URLParam(r, "highlightID")

	if err := h.service.DeleteHighlight(r.Context(), articleID, highlightID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
