// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/sandoku/internal/model"
)

// ArticleRepository は記事データの永続化インターフェース。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// List は記事サマリーの一覧をcreated_at降順で返す。
	// カーソルベースページネーションを使用し、cursorがゼロ値の場合は先頭から取得する。
	// サマリーには章数・ハイライト数と読書進捗フラグを含める。
	List(ctx context.Context, cursor time.Time, limit int) ([]ArticleSummaryRow, error)

	// Create は記事を作成する。
	Create(ctx context.Context, article *model.Article) error

	// UpdatePosition は記事の現在章インデックスを更新する。
	UpdatePosition(ctx context.Context, id string, chapterIndex int) error

	// UpdateProgress は記事の読書進捗フラグを丸ごと置き換える。
	UpdateProgress(ctx context.Context, id string, progress model.PassProgress) error

	// DeleteByID は指定IDの記事を削除する。
	// 関連する章とハイライトはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// ChapterRepository は章検出結果のキャッシュの永続化インターフェース。
type ChapterRepository interface {
	// ListByArticle は記事の章一覧をインデックス昇順で返す。
	// キャッシュが存在しない場合は空スライスを返す。
	ListByArticle(ctx context.Context, articleID string) ([]model.Chapter, error)

	// FindByID は指定IDの章を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Chapter, error)

	// ReplaceForArticle は記事の章キャッシュを同一トランザクションで
	// 全削除・全挿入する。再検出の結果を原子的に反映するために使用する。
	ReplaceForArticle(ctx context.Context, articleID string, chapters []model.Chapter) error
}

// HighlightRepository はハイライトデータの永続化インターフェース。
type HighlightRepository interface {
	// FindByID は指定IDのハイライトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Highlight, error)

	// ListByArticle は記事のハイライト一覧を作成順（挿入順）で返す。
	// colorが空文字列以外の場合はその色のみに絞り込む。
	ListByArticle(ctx context.Context, articleID string, color model.HighlightColor) ([]model.Highlight, error)

	// Create はハイライトを作成する。
	Create(ctx context.Context, h *model.Highlight) error

	// Update はハイライトのメモ・色・更新日時を更新する。
	// オフセットとテキストは作成後不変のため更新しない。
	Update(ctx context.Context, h *model.Highlight) error

	// DeleteByID は指定IDのハイライトを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// ArticleSummaryRow は記事サマリー取得クエリの1行。
// 進捗率の計算はサービス層で行うため、フラグのまま保持する。
type ArticleSummaryRow struct {
	ID             string
	Title          string
	Author         string
	ContentLength  int
	ChapterCount   int
	HighlightCount int
	Progress       model.PassProgress
	CreatedAt      time.Time
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
