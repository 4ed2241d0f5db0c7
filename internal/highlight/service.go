// Package highlight は本文の文字範囲に紐づくハイライトの管理機能を提供する。
package highlight

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/sandoku/internal/metrics"
	"github.com/hitoshi/sandoku/internal/model"
	"github.com/hitoshi/sandoku/internal/repository"
)

// Service はハイライトの作成・一覧・更新・削除のサービス。
// 同一記事への書き込みは記事単位のロックで直列化する。
type Service struct {
	articleRepo   repository.ArticleRepository
	highlightRepo repository.HighlightRepository
	collector     metrics.MetricsCollector
	locks         *lockManager
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	articleRepo repository.ArticleRepository,
	highlightRepo repository.HighlightRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		articleRepo:   articleRepo,
		highlightRepo: highlightRepo,
		collector:     collector,
		locks:         newLockManager(),
	}
}

// CreateInput はハイライト作成の入力。
type CreateInput struct {
	Text        string
	Note        string
	Color       string
	StartOffset int
	EndOffset   int
}

// UpdateInput はハイライト更新の入力。nilのフィールドは変更しない。
// オフセットとテキストは作成後不変のため入力に含めない。
type UpdateInput struct {
	Note  *string
	Color *string
}

// CreateHighlight は記事にハイライトを作成する。
// 範囲は 0 <= start < end <= 本文長 を満たす必要がある。
// オフセットは検証後そのまま信頼し、Textが本文の該当範囲と一致しない場合は
// 警告ログを出して作成は継続する。
func (s *Service) CreateHighlight(ctx context.Context, articleID string, input CreateInput) (*model.Highlight, error) {
	color := model.HighlightColor(input.Color)
	if !color.Valid() {
		return nil, model.NewInvalidColorError(input.Color)
	}

	var created *model.Highlight
	err := s.locks.withLock(articleID, func() error {
		article, err := s.articleRepo.FindByID(ctx, articleID)
		if err != nil {
			return err
		}
		if article == nil {
			return model.NewArticleNotFoundError(articleID)
		}

		contentLen := len(article.Content)
		if input.StartOffset < 0 || input.StartOffset >= input.EndOffset || input.EndOffset > contentLen {
			return model.NewInvalidRangeError(input.StartOffset, input.EndOffset, contentLen)
		}

		if actual := article.Content[input.StartOffset:input.EndOffset]; input.Text != actual {
			slog.Warn("highlight text does not match article content",
				slog.String("article_id", articleID),
				slog.Int("start_offset", input.StartOffset),
				slog.Int("end_offset", input.EndOffset),
			)
		}

		now := time.Now()
		h := &model.Highlight{
			ID:          uuid.NewString(),
			ArticleID:   articleID,
			Text:        input.Text,
			Note:        input.Note,
			Color:       color,
			StartOffset: input.StartOffset,
			EndOffset:   input.EndOffset,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.highlightRepo.Create(ctx, h); err != nil {
			return err
		}

		created = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.collector.RecordHighlightCreated()

	slog.Info("highlight created",
		slog.String("highlight_id", created.ID),
		slog.String("article_id", articleID),
		slog.String("color", string(created.Color)),
	)

	return created, nil
}

// ListHighlights は記事のハイライト一覧を作成順で返す。
// colorStrが空文字列以外の場合はその色のみに絞り込む。
func (s *Service) ListHighlights(ctx context.Context, articleID, colorStr string) ([]model.Highlight, error) {
	var color model.HighlightColor
	if colorStr != "" {
		color = model.HighlightColor(colorStr)
		if !color.Valid() {
			return nil, model.NewInvalidColorError(colorStr)
		}
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	highlights, err := s.highlightRepo.ListByArticle(ctx, articleID, color)
	if err != nil {
		return nil, err
	}
	if highlights == nil {
		highlights = []model.Highlight{}
	}

	return highlights, nil
}

// UpdateHighlight はハイライトのメモと色を更新する。
func (s *Service) UpdateHighlight(ctx context.Context, articleID, highlightID string, input UpdateInput) (*model.Highlight, error) {
	if input.Color != nil && !model.HighlightColor(*input.Color).Valid() {
		return nil, model.NewInvalidColorError(*input.Color)
	}

	var updated *model.Highlight
	err := s.locks.withLock(articleID, func() error {
		h, err := s.highlightRepo.FindByID(ctx, highlightID)
		if err != nil {
			return err
		}
		if h == nil || h.ArticleID != articleID {
			return model.NewHighlightNotFoundError(highlightID)
		}

		if input.Note != nil {
			h.Note = *input.Note
		}
		if input.Color != nil {
			h.Color = model.HighlightColor(*input.Color)
		}
		h.UpdatedAt = time.Now()

		if err := s.highlightRepo.Update(ctx, h); err != nil {
			return err
		}

		updated = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteHighlight はハイライトを削除する。
// 存在しない場合はHIGHLIGHT_NOT_FOUNDを返す。
func (s *Service) DeleteHighlight(ctx context.Context, articleID, highlightID string) error {
	return s.locks.withLock(articleID, func() error {
		h, err := s.highlightRepo.FindByID(ctx, highlightID)
		if err != nil {
			return err
		}
		if h == nil || h.ArticleID != articleID {
			return model.NewHighlightNotFoundError(highlightID)
		}

		return s.highlightRepo.DeleteByID(ctx, highlightID)
	})
}

// PruneLocks は最終使用時刻がttlを超えた記事ロックを回収する。
// サーバープロセスのバックグラウンドループから定期的に呼び出す。
func (s *Service) PruneLocks(ttl time.Duration) {
	s.locks.cleanup(ttl)
}
