package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/hitoshi/sandoku/internal/model"
)

// psql はPostgreSQLのプレースホルダ形式（$1, $2, ...）のクエリビルダ。
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresHighlightRepo はPostgreSQLを使用したハイライトリポジトリ。
type PostgresHighlightRepo struct {
	db *sql.DB
}

// NewPostgresHighlightRepo はPostgresHighlightRepoを生成する。
func NewPostgresHighlightRepo(db *sql.DB) *PostgresHighlightRepo {
	return &PostgresHighlightRepo{db: db}
}

// FindByID は指定IDのハイライトを取得する。見つからない場合はnilを返す。
func (r *PostgresHighlightRepo) FindByID(ctx context.Context, id string) (*model.Highlight, error) {
	h := &model.Highlight{}
	var note sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, article_id, text, note, color, start_offset, end_offset, created_at, updated_at
		 FROM highlights WHERE id = $1`,
		id,
	).Scan(
		&h.ID, &h.ArticleID, &h.Text, &note, &h.Color,
		&h.StartOffset, &h.EndOffset, &h.CreatedAt, &h.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ハイライトの取得に失敗しました: %w", err)
	}

	h.Note = nullStringValue(note)
	return h, nil
}

// ListByArticle は記事のハイライト一覧を作成順で返す。
// 色フィルタは任意条件のためクエリビルダで組み立てる。
func (r *PostgresHighlightRepo) ListByArticle(ctx context.Context, articleID string, color model.HighlightColor) ([]model.Highlight, error) {
	builder := psql.
		Select("id", "article_id", "text", "note", "color",
			"start_offset", "end_offset", "created_at", "updated_at").
		From("highlights").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("created_at ASC", "id ASC")

	if color != "" {
		builder = builder.Where(sq.Eq{"color": string(color)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ハイライト一覧クエリの構築に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ハイライト一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var highlights []model.Highlight
	for rows.Next() {
		var h model.Highlight
		var note sql.NullString

		if err := rows.Scan(
			&h.ID, &h.ArticleID, &h.Text, &note, &h.Color,
			&h.StartOffset, &h.EndOffset, &h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ハイライト行の読み取りに失敗しました: %w", err)
		}

		h.Note = nullStringValue(note)
		highlights = append(highlights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ハイライト一覧の走査に失敗しました: %w", err)
	}

	return highlights, nil
}

// Create はハイライトを作成する。
func (r *PostgresHighlightRepo) Create(ctx context.Context, h *model.Highlight) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO highlights (id, article_id, text, note, color, start_offset, end_offset, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		h.ID, h.ArticleID, h.Text, nullString(h.Note), string(h.Color),
		h.StartOffset, h.EndOffset, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ハイライトの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はハイライトのメモ・色・更新日時を更新する。
// オフセットとテキストは作成後不変のため更新対象に含めない。
func (r *PostgresHighlightRepo) Update(ctx context.Context, h *model.Highlight) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE highlights SET note = $2, color = $3, updated_at = $4 WHERE id = $1`,
		h.ID, nullString(h.Note), string(h.Color), h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ハイライトの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのハイライトを削除する。
func (r *PostgresHighlightRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ハイライトの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ HighlightRepository = (*PostgresHighlightRepo)(nil)
