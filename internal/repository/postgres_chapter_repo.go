package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sandoku/internal/model"
)

// PostgresChapterRepo はPostgreSQLを使用した章キャッシュリポジトリ。
type PostgresChapterRepo struct {
	db *sql.DB
}

// NewPostgresChapterRepo はPostgresChapterRepoを生成する。
func NewPostgresChapterRepo(db *sql.DB) *PostgresChapterRepo {
	return &PostgresChapterRepo{db: db}
}

// ListByArticle は記事の章一覧をインデックス昇順で返す。
func (r *PostgresChapterRepo) ListByArticle(ctx context.Context, articleID string) ([]model.Chapter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, article_id, idx, title, start_offset, end_offset, level, created_at
		 FROM chapters WHERE article_id = $1 ORDER BY idx ASC`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("章一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(
			&c.ID, &c.ArticleID, &c.Index, &c.Title,
			&c.StartOffset, &c.EndOffset, &c.Level, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("章行の読み取りに失敗しました: %w", err)
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("章一覧の走査に失敗しました: %w", err)
	}

	return chapters, nil
}

// FindByID は指定IDの章を取得する。見つからない場合はnilを返す。
func (r *PostgresChapterRepo) FindByID(ctx context.Context, id string) (*model.Chapter, error) {
	c := &model.Chapter{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, article_id, idx, title, start_offset, end_offset, level, created_at
		 FROM chapters WHERE id = $1`,
		id,
	).Scan(
		&c.ID, &c.ArticleID, &c.Index, &c.Title,
		&c.StartOffset, &c.EndOffset, &c.Level, &c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("章の取得に失敗しました: %w", err)
	}

	return c, nil
}

// ReplaceForArticle は記事の章キャッシュを同一トランザクションで全削除・全挿入する。
// 章IDは本文とインデックスから決定的に導出されるため、同一の本文に対する
// 再実行は同じ行集合に収束する（冪等）。
func (r *PostgresChapterRepo) ReplaceForArticle(ctx context.Context, articleID string, chapters []model.Chapter) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chapters WHERE article_id = $1`, articleID,
	); err != nil {
		return fmt.Errorf("章キャッシュの削除に失敗しました: %w", err)
	}

	for _, c := range chapters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (id, article_id, idx, title, start_offset, end_offset, level, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.ArticleID, c.Index, c.Title,
			c.StartOffset, c.EndOffset, c.Level, c.CreatedAt,
		); err != nil {
			return fmt.Errorf("章の挿入に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("章キャッシュの確定に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ChapterRepository = (*PostgresChapterRepo)(nil)
