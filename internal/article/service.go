// Package article は記事の取り込み・閲覧・読書進捗の管理機能を提供する。
package article

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/sandoku/internal/chapter"
	"github.com/hitoshi/sandoku/internal/ingest"
	"github.com/hitoshi/sandoku/internal/metrics"
	"github.com/hitoshi/sandoku/internal/model"
	"github.com/hitoshi/sandoku/internal/pass"
	"github.com/hitoshi/sandoku/internal/repository"
	"github.com/hitoshi/sandoku/internal/template"
)

// DefaultListLimit は記事一覧のデフォルト取得件数。
const DefaultListLimit = 20

// MaxListLimit は記事一覧の最大取得件数。
const MaxListLimit = 100

// Service は記事のライフサイクル全体を扱うサービス。
// 取り込み時に本文を正規化し、以降は本文を不変として扱う。
type Service struct {
	articleRepo repository.ArticleRepository
	chapterRepo repository.ChapterRepository
	normalizer  *ingest.Normalizer
	collector   metrics.MetricsCollector

	// ListLimit は一覧取得でlimit未指定のときのページサイズ。
	ListLimit int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	articleRepo repository.ArticleRepository,
	chapterRepo repository.ChapterRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		articleRepo: articleRepo,
		chapterRepo: chapterRepo,
		normalizer:  ingest.NewNormalizer(),
		collector:   collector,
		ListLimit:   DefaultListLimit,
	}
}

// IngestInput は記事取り込みの入力。
type IngestInput struct {
	Title       string
	Author      string
	Content     string
	ContentType string // 空の場合はtext/plainとして扱う
}

// IngestArticle は記事を取り込む。
// 本文を正規化して保存し、章検出を実行して結果をキャッシュする。
func (s *Service) IngestArticle(ctx context.Context, input IngestInput) (*model.Article, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, model.NewInvalidRequestError("タイトルは必須です")
	}

	contentType := ingest.ContentType(input.ContentType)
	if contentType == "" {
		contentType = ingest.ContentTypeText
	}
	if !contentType.Valid() {
		return nil, model.NewInvalidRequestError("content_typeには text または html を指定してください")
	}

	normalized := s.normalizer.Normalize(input.Content, contentType)
	if strings.TrimSpace(normalized) == "" {
		return nil, model.NewInvalidRequestError("本文が空です")
	}

	now := time.Now()
	article := &model.Article{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    strings.TrimSpace(input.Author),
		Content:   normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}

	// 取り込み直後に章を検出してキャッシュする。
	// 失敗しても記事自体は保存済みのため、次回参照時に再検出される。
	if _, err := s.detectAndCache(ctx, article); err != nil {
		slog.Warn("chapter detection at ingest failed",
			slog.String("article_id", article.ID),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("article ingested",
		slog.String("article_id", article.ID),
		slog.Int("content_length", len(article.Content)),
	)

	return article, nil
}

// GetArticle は記事を取得する。
func (s *Service) GetArticle(ctx context.Context, articleID string) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}
	return article, nil
}

// ArticleListResult はListArticlesの戻り値。
type ArticleListResult struct {
	Articles   []model.ArticleSummary
	NextCursor string
	HasMore    bool
}

// ListArticles は記事サマリーの一覧をcreated_at降順で返す。
// カーソルベースページネーションを使用し、limit+1件を取得してHasMoreを判定する。
func (s *Service) ListArticles(ctx context.Context, cursorStr string, limit int) (*ArticleListResult, error) {
	if limit <= 0 {
		limit = s.ListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var cursor time.Time
	if cursorStr != "" {
		var err error
		cursor, err = time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			cursor, err = time.Parse(time.RFC3339, cursorStr)
			if err != nil {
				return nil, model.NewInvalidRequestError("無効なカーソル値: " + cursorStr)
			}
		}
	}

	rows, err := s.articleRepo.List(ctx, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	summaries := make([]model.ArticleSummary, len(rows))
	for i, row := range rows {
		summaries[i] = model.ArticleSummary{
			ID:                   row.ID,
			Title:                row.Title,
			Author:               row.Author,
			ContentLength:        row.ContentLength,
			ChapterCount:         row.ChapterCount,
			HighlightCount:       row.HighlightCount,
			CompletionPercentage: pass.CompletionPercentage(row.Progress),
			CreatedAt:            row.CreatedAt,
		}
	}

	var nextCursor string
	if hasMore && len(summaries) > 0 {
		nextCursor = summaries[len(summaries)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return &ArticleListResult{
		Articles:   summaries,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// DeleteArticle は記事を削除する。関連する章とハイライトもCASCADE削除される。
func (s *Service) DeleteArticle(ctx context.Context, articleID string) error {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return err
	}
	if article == nil {
		return model.NewArticleNotFoundError(articleID)
	}

	if err := s.articleRepo.DeleteByID(ctx, articleID); err != nil {
		return err
	}

	slog.Info("article deleted", slog.String("article_id", articleID))
	return nil
}

// GetChapters は記事の章一覧を返す。
// キャッシュがあればそれを返し、なければ章検出を実行して結果をキャッシュする。
func (s *Service) GetChapters(ctx context.Context, articleID string) ([]model.Chapter, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	chapters, err := s.chapterRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if len(chapters) > 0 {
		return chapters, nil
	}

	return s.detectAndCache(ctx, article)
}

// RefreshChapters は章検出を強制的に再実行し、キャッシュを置き換える。
// 検出は冪等のため、本文が変わらない限り同一の結果になる。
func (s *Service) RefreshChapters(ctx context.Context, articleID string) ([]model.Chapter, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	return s.detectAndCache(ctx, article)
}

// detectAndCache は章検出を実行し、結果を原子的にキャッシュへ反映する。
func (s *Service) detectAndCache(ctx context.Context, article *model.Article) ([]model.Chapter, error) {
	start := time.Now()
	chapters := chapter.Detect(article.ID, article.Content)
	s.collector.RecordDetectLatency(time.Since(start))
	s.collector.RecordChaptersDetected(len(chapters))

	if len(chapters) == 1 && chapters[0].Title == chapter.FallbackTitle {
		s.collector.RecordFallbackDetection()
	}

	now := time.Now()
	for i := range chapters {
		chapters[i].CreatedAt = now
	}

	if err := s.chapterRepo.ReplaceForArticle(ctx, article.ID, chapters); err != nil {
		return nil, err
	}

	slog.Info("chapters detected",
		slog.String("article_id", article.ID),
		slog.Int("chapter_count", len(chapters)),
	)

	return chapters, nil
}

// UpdatePosition は記事の現在章インデックスを更新する。
// インデックスは章一覧の範囲内でなければならない。
func (s *Service) UpdatePosition(ctx context.Context, articleID string, chapterIndex int) error {
	chapters, err := s.GetChapters(ctx, articleID)
	if err != nil {
		return err
	}

	if chapterIndex < 0 || chapterIndex >= len(chapters) {
		return model.NewInvalidRequestError("章インデックスが範囲外です")
	}

	return s.articleRepo.UpdatePosition(ctx, articleID, chapterIndex)
}

// ProgressResult は読書進捗の照会・更新の戻り値。
type ProgressResult struct {
	Progress             model.PassProgress
	CompletionPercentage int
	NextPass             model.ReadingPass // 全ステージ完了時は空
	Completed            bool
}

// GetProgress は記事の読書進捗を返す。
func (s *Service) GetProgress(ctx context.Context, articleID string) (*ProgressResult, error) {
	article, err := s.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return progressResult(article.Progress), nil
}

// ToggleProgress は指定ステージの完了状態を反転する。
// ステージは独立しており、どの順序でも切り替えられる。
func (s *Service) ToggleProgress(ctx context.Context, articleID, passStr string) (*ProgressResult, error) {
	article, err := s.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	progress, err := pass.Toggle(article.Progress, model.ReadingPass(passStr))
	if err != nil {
		return nil, err
	}

	if err := s.articleRepo.UpdateProgress(ctx, articleID, progress); err != nil {
		return nil, err
	}

	slog.Info("reading pass toggled",
		slog.String("article_id", articleID),
		slog.String("pass", passStr),
	)

	return progressResult(progress), nil
}

// progressResult はPassProgressから派生情報を計算する。
func progressResult(p model.PassProgress) *ProgressResult {
	result := &ProgressResult{
		Progress:             p,
		CompletionPercentage: pass.CompletionPercentage(p),
	}
	next, ok := pass.NextPass(p)
	if ok {
		result.NextPass = next
	} else {
		result.Completed = true
	}
	return result
}

// GenerateTemplate は読書ステージ用のLLM貼り付けテンプレートを生成する。
// chapterIDが空の場合は記事全体、指定された場合はその章のみを対象にする。
func (s *Service) GenerateTemplate(ctx context.Context, articleID, passStr, chapterID string) (string, error) {
	passType := model.ReadingPass(passStr)
	if !passType.Valid() {
		return "", model.NewInvalidPassError(passStr)
	}

	article, err := s.GetArticle(ctx, articleID)
	if err != nil {
		return "", err
	}

	var ch *model.Chapter
	if chapterID != "" {
		// 章キャッシュ未生成の場合に備えて先に検出を走らせる
		if _, err := s.GetChapters(ctx, articleID); err != nil {
			return "", err
		}

		ch, err = s.chapterRepo.FindByID(ctx, chapterID)
		if err != nil {
			return "", err
		}
		if ch == nil || ch.ArticleID != articleID {
			return "", model.NewChapterNotFoundError(chapterID)
		}
	}

	text, err := template.Generate(*article, ch, passType)
	if err != nil {
		return "", err
	}

	s.collector.RecordTemplateGenerated(string(passType))

	return text, nil
}
