package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/sandoku/internal/model"
)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	article := &model.Article{}
	var author sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, author, content, current_chapter_index,
		        manual_done, explain_done, qa_done, created_at, updated_at
		 FROM articles WHERE id = $1`,
		id,
	).Scan(
		&article.ID, &article.Title, &author, &article.Content,
		&article.CurrentChapterIndex,
		&article.Progress.Manual, &article.Progress.Explain, &article.Progress.QA,
		&article.CreatedAt, &article.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}

	article.Author = nullStringValue(author)
	return article, nil
}

// List は記事サマリーの一覧をcreated_at降順で返す。
// 章数・ハイライト数はサブクエリで集計する。
func (r *PostgresArticleRepo) List(ctx context.Context, cursor time.Time, limit int) ([]ArticleSummaryRow, error) {
	baseQuery := `
		SELECT a.id, a.title, a.author, length(a.content) AS content_length,
		       (SELECT count(*) FROM chapters c WHERE c.article_id = a.id) AS chapter_count,
		       (SELECT count(*) FROM highlights h WHERE h.article_id = a.id) AS highlight_count,
		       a.manual_done, a.explain_done, a.qa_done, a.created_at
		FROM articles a`

	args := []interface{}{}
	argIndex := 1

	// カーソルベースページネーション
	if !cursor.IsZero() {
		baseQuery += fmt.Sprintf(" WHERE a.created_at < $%d", argIndex)
		args = append(args, cursor)
		argIndex++
	}

	baseQuery += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var summaries []ArticleSummaryRow
	for rows.Next() {
		var row ArticleSummaryRow
		var author sql.NullString

		if err := rows.Scan(
			&row.ID, &row.Title, &author, &row.ContentLength,
			&row.ChapterCount, &row.HighlightCount,
			&row.Progress.Manual, &row.Progress.Explain, &row.Progress.QA,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("記事行の読み取りに失敗しました: %w", err)
		}

		row.Author = nullStringValue(author)
		summaries = append(summaries, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事一覧の走査に失敗しました: %w", err)
	}

	return summaries, nil
}

// Create は記事を作成する。
func (r *PostgresArticleRepo) Create(ctx context.Context, article *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, author, content, current_chapter_index,
		                       manual_done, explain_done, qa_done, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		article.ID, article.Title, nullString(article.Author), article.Content,
		article.CurrentChapterIndex,
		article.Progress.Manual, article.Progress.Explain, article.Progress.QA,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdatePosition は記事の現在章インデックスを更新する。
func (r *PostgresArticleRepo) UpdatePosition(ctx context.Context, id string, chapterIndex int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET current_chapter_index = $2, updated_at = now() WHERE id = $1`,
		id, chapterIndex,
	)
	if err != nil {
		return fmt.Errorf("現在章インデックスの更新に失敗しました: %w", err)
	}
	return nil
}

// UpdateProgress は記事の読書進捗フラグを丸ごと置き換える。
func (r *PostgresArticleRepo) UpdateProgress(ctx context.Context, id string, progress model.PassProgress) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET manual_done = $2, explain_done = $3, qa_done = $4, updated_at = now()
		 WHERE id = $1`,
		id, progress.Manual, progress.Explain, progress.QA,
	)
	if err != nil {
		return fmt.Errorf("読書進捗の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの記事を削除する。
// 関連する章とハイライトはCASCADE削除される。
func (r *PostgresArticleRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}
	return nil
}

// nullString は空文字列をsql.NullStringのNULLに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列値を取り出す。NULLは空文字列になる。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
