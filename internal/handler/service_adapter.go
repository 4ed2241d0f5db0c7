package handler

import (
	"context"

	"github.com/hitoshi/sandoku/internal/article"
	"github.com/hitoshi/sandoku/internal/highlight"
	"github.com/hitoshi/sandoku/internal/model"
)

// ArticleServiceAdapter は article.Service を記事・進捗・テンプレートの
// 各ハンドラーインターフェースに適合させるアダプタ。
type ArticleServiceAdapter struct {
	svc *article.Service
}

// NewArticleServiceAdapter はArticleServiceAdapterを生成する。
func NewArticleServiceAdapter(svc *article.Service) *ArticleServiceAdapter {
	return &ArticleServiceAdapter{svc: svc}
}

// IngestArticle は記事を取り込みhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) IngestArticle(ctx context.Context, input article.IngestInput) (*articleDetailResponse, error) {
	created, err := a.svc.IngestArticle(ctx, input)
	if err != nil {
		return nil, err
	}
	resp := toArticleDetailResponse(created)
	return &resp, nil
}

// GetArticle は記事詳細をhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) GetArticle(ctx context.Context, articleID string) (*articleDetailResponse, error) {
	found, err := a.svc.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	resp := toArticleDetailResponse(found)
	return &resp, nil
}

// ListArticles は記事一覧をhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) ListArticles(ctx context.Context, cursor string, limit int) (*articleListResult, error) {
	result, err := a.svc.ListArticles(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	articles := make([]articleSummaryResponse, len(result.Articles))
	for i, s := range result.Articles {
		articles[i] = articleSummaryResponse{
			ID:                   s.ID,
			Title:                s.Title,
			Author:               s.Author,
			ContentLength:        s.ContentLength,
			ChapterCount:         s.ChapterCount,
			HighlightCount:       s.HighlightCount,
			CompletionPercentage: s.CompletionPercentage,
			CreatedAt:            s.CreatedAt,
		}
	}

	return &articleListResult{
		Articles:   articles,
		NextCursor: result.NextCursor,
		HasMore:    result.HasMore,
	}, nil
}

// DeleteArticle は記事と派生データを削除する。
func (a *ArticleServiceAdapter) DeleteArticle(ctx context.Context, articleID string) error {
	return a.svc.DeleteArticle(ctx, articleID)
}

// UpdatePosition は現在読んでいる章の位置を更新する。
func (a *ArticleServiceAdapter) UpdatePosition(ctx context.Context, articleID string, chapterIndex int) error {
	return a.svc.UpdatePosition(ctx, articleID, chapterIndex)
}

// GetChapters は章一覧をhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) GetChapters(ctx context.Context, articleID string) ([]chapterResponse, error) {
	chapters, err := a.svc.GetChapters(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return toChapterResponses(chapters), nil
}

// RefreshChapters は章検出を再実行しhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) RefreshChapters(ctx context.Context, articleID string) ([]chapterResponse, error) {
	chapters, err := a.svc.RefreshChapters(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return toChapterResponses(chapters), nil
}

// GetProgress は読書進捗をhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) GetProgress(ctx context.Context, articleID string) (*progressResponse, error) {
	result, err := a.svc.GetProgress(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return toProgressResponse(articleID, result), nil
}

// ToggleProgress は指定ステージの完了状態を反転しhandlerレスポンス型で返す。
func (a *ArticleServiceAdapter) ToggleProgress(ctx context.Context, articleID, passStr string) (*progressResponse, error) {
	result, err := a.svc.ToggleProgress(ctx, articleID, passStr)
	if err != nil {
		return nil, err
	}
	return toProgressResponse(articleID, result), nil
}

// GenerateTemplate は読書テンプレートを生成する。
func (a *ArticleServiceAdapter) GenerateTemplate(ctx context.Context, articleID, passStr, chapterID string) (string, error) {
	return a.svc.GenerateTemplate(ctx, articleID, passStr, chapterID)
}

// toArticleDetailResponse はドメインのArticleをhandlerのレスポンス型に変換する。
func toArticleDetailResponse(a *model.Article) articleDetailResponse {
	return articleDetailResponse{
		ID:                  a.ID,
		Title:               a.Title,
		Author:              a.Author,
		Content:             a.Content,
		ContentLength:       len(a.Content),
		CurrentChapterIndex: a.CurrentChapterIndex,
		Progress: progressStateResponse{
			ManualDone:  a.Progress.Manual,
			ExplainDone: a.Progress.Explain,
			QADone:      a.Progress.QA,
		},
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// toChapterResponses はドメインのChapter列をhandlerのレスポンス型に変換する。
func toChapterResponses(chapters []model.Chapter) []chapterResponse {
	results := make([]chapterResponse, len(chapters))
	for i, c := range chapters {
		results[i] = chapterResponse{
			ID:          c.ID,
			Index:       c.Index,
			Title:       c.Title,
			StartOffset: c.StartOffset,
			EndOffset:   c.EndOffset,
			Level:       c.Level,
		}
	}
	return results
}

// toProgressResponse はドメインのProgressResultをhandlerのレスポンス型に変換する。
func toProgressResponse(articleID string, result *article.ProgressResult) *progressResponse {
	return &progressResponse{
		ArticleID:            articleID,
		ManualDone:           result.Progress.Manual,
		ExplainDone:          result.Progress.Explain,
		QADone:               result.Progress.QA,
		CompletionPercentage: result.CompletionPercentage,
		NextPass:             string(result.NextPass),
		Completed:            result.Completed,
	}
}

// HighlightServiceAdapter は highlight.Service を HighlightServiceInterface に適合させるアダプタ。
type HighlightServiceAdapter struct {
	svc *highlight.Service
}

// NewHighlightServiceAdapter はHighlightServiceAdapterを生成する。
func NewHighlightServiceAdapter(svc *highlight.Service) *HighlightServiceAdapter {
	return &HighlightServiceAdapter{svc: svc}
}

// CreateHighlight はハイライトを作成しhandlerレスポンス型で返す。
func (a *HighlightServiceAdapter) CreateHighlight(ctx context.Context, articleID string, input highlight.CreateInput) (*highlightResponse, error) {
	created, err := a.svc.CreateHighlight(ctx, articleID, input)
	if err != nil {
		return nil, err
	}
	resp := toHighlightResponse(*created)
	return &resp, nil
}

// ListHighlights はハイライト一覧をhandlerレスポンス型で返す。
func (a *HighlightServiceAdapter) ListHighlights(ctx context.Context, articleID, color string) ([]highlightResponse, error) {
	highlights, err := a.svc.ListHighlights(ctx, articleID, color)
	if err != nil {
		return nil, err
	}

	results := make([]highlightResponse, len(highlights))
	for i, h := range highlights {
		results[i] = toHighlightResponse(h)
	}
	return results, nil
}

// UpdateHighlight はハイライトを更新しhandlerレスポンス型で返す。
func (a *HighlightServiceAdapter) UpdateHighlight(ctx context.Context, articleID, highlightID string, input highlight.UpdateInput) (*highlightResponse, error) {
	updated, err := a.svc.UpdateHighlight(ctx, articleID, highlightID, input)
	if err != nil {
		return nil, err
	}
	resp := toHighlightResponse(*updated)
	return &resp, nil
}

// DeleteHighlight はハイライトを削除する。
func (a *HighlightServiceAdapter) DeleteHighlight(ctx context.Context, articleID, highlightID string) error {
	return a.svc.DeleteHighlight(ctx, articleID, highlightID)
}

// toHighlightResponse はドメインのHighlightをhandlerのレスポンス型に変換する。
func toHighlightResponse(h model.Highlight) highlightResponse {
	return highlightResponse{
		ID:          h.ID,
		ArticleID:   h.ArticleID,
		Text:        h.Text,
		Note:        h.Note,
		Color:       string(h.Color),
		StartOffset: h.StartOffset,
		EndOffset:   h.EndOffset,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// --- compile-time interface checks ---

var _ ArticleServiceInterface = (*ArticleServiceAdapter)(nil)
var _ ProgressServiceInterface = (*ArticleServiceAdapter)(nil)
var _ TemplateServiceInterface = (*ArticleServiceAdapter)(nil)
var _ HighlightServiceInterface = (*HighlightServiceAdapter)(nil)
