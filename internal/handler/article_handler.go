package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sandoku/internal/article"
	"github.com/hitoshi/sandoku/internal/model"
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	// IngestArticle は記事を取り込み、正規化・章検出を経た記事詳細を返す。
	IngestArticle(ctx context.Context, input article.IngestInput) (*articleDetailResponse, error)
	// GetArticle は記事詳細を返す。
	GetArticle(ctx context.Context, articleID string) (*articleDetailResponse, error)
	// ListArticles は記事サマリーの一覧をカーソルページネーション付きで返す。
	ListArticles(ctx context.Context, cursor string, limit int) (*articleListResult, error)
	// DeleteArticle は記事と派生データを削除する。
	DeleteArticle(ctx context.Context, articleID string) error
	// UpdatePosition は現在読んでいる章の位置を更新する。
	UpdatePosition(ctx context.Context, articleID string, chapterIndex int) error
	// GetChapters は章一覧を返す。キャッシュ未生成の場合は検出を実行する。
	GetChapters(ctx context.Context, articleID string) ([]chapterResponse, error)
	// RefreshChapters は章検出を再実行してキャッシュを置き換える。
	RefreshChapters(ctx context.Context, articleID string) ([]chapterResponse, error)
}

// ArticleHandler は記事管理のHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// ingestRequest は記事取り込みリクエストのボディ。
type ingestRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

// progressStateResponse は三読ステージの完了状態のレスポンス。
type progressStateResponse struct {
	ManualDone  bool `json:"manual_done"`
	ExplainDone bool `json:"explain_done"`
	QADone      bool `json:"qa_done"`
}

// articleDetailResponse は記事詳細のレスポンス。
type articleDetailResponse struct {
	ID                  string                `json:"id"`
	Title               string                `json:"title"`
	Author              string                `json:"author,omitempty"`
	Content             string                `json:"content"`
	ContentLength       int                   `json:"content_length"`
	CurrentChapterIndex int                   `json:"current_chapter_index"`
	Progress            progressStateResponse `json:"progress"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// articleSummaryResponse は記事一覧のサマリーレスポンス。
type articleSummaryResponse struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Author               string    `json:"author,omitempty"`
	ContentLength        int       `json:"content_length"`
	ChapterCount         int       `json:"chapter_count"`
	HighlightCount       int       `json:"highlight_count"`
	CompletionPercentage int       `json:"completion_percentage"`
	CreatedAt            time.Time `json:"created_at"`
}

// articleListResult は記事一覧のレスポンス。
type articleListResult struct {
	Articles   []articleSummaryResponse `json:"articles"`
	NextCursor string                   `json:"next_cursor,omitempty"`
	HasMore    bool                     `json:"has_more"`
}

// chapterResponse は章のレスポンス。
type chapterResponse struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Title       string `json:"title"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Level       int    `json:"level"`
}

// chapterListResponse は章一覧のレスポンス。
type chapterListResponse struct {
	Chapters []chapterResponse `json:"chapters"`
}

// positionRequest は読書位置更新リクエストのボディ。
type positionRequest struct {
	ChapterIndex *int `json:"chapter_index"`
}

// positionResponse は読書位置のレスポンス。
type positionResponse struct {
	ArticleID           string `json:"article_id"`
	CurrentChapterIndex int    `json:"current_chapter_index"`
}

// IngestArticle は記事を取り込む。
// POST /api/articles
func (h *ArticleHandler) IngestArticle(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	detail, err := h.service.IngestArticle(r.Context(), article.IngestInput{
		Title:       req.Title,
		Author:      req.Author,
		Content:     req.Content,
		ContentType: req.ContentType,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(detail)
}

// GetArticle は記事詳細を取得する。
// GET /api/articles/:id
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	detail, err := h.service.GetArticle(r.Context(), articleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// ListArticles は記事一覧を取得する。
// GET /api/articles?cursor=xxx&limit=20
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("limitには整数を指定してください"))
			return
		}
		limit = parsed
	}

	result, err := h.service.ListArticles(r.Context(), cursor, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// DeleteArticle は記事と派生データを削除する。
// DELETE /api/articles/:id
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	if err := h.service.DeleteArticle(r.Context(), articleID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdatePosition は現在読んでいる章の位置を更新する。
// PUT /api/articles/:id/position
func (h *ArticleHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.ChapterIndex == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("chapter_indexを指定してください"))
		return
	}

	if err := h.service.UpdatePosition(r.Context(), articleID, *req.ChapterIndex); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(positionResponse{
		ArticleID:           articleID,
		CurrentChapterIndex: *req.ChapterIndex,
	})
}

// GetChapters は章一覧を取得する。
// GET /api/articles/:id/chapters
func (h *ArticleHandler) GetChapters(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	chapters, err := h.service.GetChapters(r.Context(), articleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chapterListResponse{Chapters: chapters})
}

// RefreshChapters は章検出を再実行する。
// POST /api/articles/:id/chapters/refresh
func (h *ArticleHandler) RefreshChapters(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	chapters, err := h.service.RefreshChapters(r.Context(), articleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chapterListResponse{Chapters: chapters})
}

// --- 共通エラーハンドリング ---

// apiErrorResponse は統一エラーレスポンスのボディ。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一フォーマットのエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeArticleNotFound, model.ErrCodeChapterNotFound, model.ErrCodeHighlightNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidRange:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidColor, model.ErrCodeInvalidPass, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
