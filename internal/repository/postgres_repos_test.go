package repository

import (
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/hitoshi/sandoku/internal/model"
)

// TestPostgresArticleRepo_ImplementsInterface はPostgresArticleRepoがArticleRepositoryを実装することを検証する。
func TestPostgresArticleRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresArticleRepoがArticleRepositoryを満たすことを検証
	var _ ArticleRepository = (*PostgresArticleRepo)(nil)
}

// TestPostgresChapterRepo_ImplementsInterface はPostgresChapterRepoがChapterRepositoryを実装することを検証する。
func TestPostgresChapterRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresChapterRepoがChapterRepositoryを満たすことを検証
	var _ ChapterRepository = (*PostgresChapterRepo)(nil)
}

// TestPostgresHighlightRepo_ImplementsInterface はPostgresHighlightRepoがHighlightRepositoryを実装することを検証する。
func TestPostgresHighlightRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresHighlightRepoがHighlightRepositoryを満たすことを検証
	var _ HighlightRepository = (*PostgresHighlightRepo)(nil)
}

// TestHighlightListQuery は色フィルタの有無でクエリの条件が変わることを検証する。
func TestHighlightListQuery(t *testing.T) {
	t.Run("色フィルタなし", func(t *testing.T) {
		builder := psql.
			Select("id").
			From("highlights").
			Where(sq.Eq{"article_id": "a-1"}).
			OrderBy("created_at ASC", "id ASC")

		query, args, err := builder.ToSql()
		if err != nil {
			t.Fatalf("ToSql() error = %v", err)
		}
		if strings.Contains(query, "color") {
			t.Errorf("query = %q, colorを含まないこと", query)
		}
		if len(args) != 1 {
			t.Errorf("len(args) = %d, want 1", len(args))
		}
	})

	t.Run("色フィルタあり", func(t *testing.T) {
		builder := psql.
			Select("id").
			From("highlights").
			Where(sq.Eq{"article_id": "a-1"}).
			Where(sq.Eq{"color": string(model.ColorYellow)}).
			OrderBy("created_at ASC", "id ASC")

		query, args, err := builder.ToSql()
		if err != nil {
			t.Fatalf("ToSql() error = %v", err)
		}
		if !strings.Contains(query, "color") {
			t.Errorf("query = %q, colorを含むこと", query)
		}
		if !strings.Contains(query, "$2") {
			t.Errorf("query = %q, ドル記号プレースホルダを使うこと", query)
		}
		if len(args) != 2 {
			t.Errorf("len(args) = %d, want 2", len(args))
		}
	})
}
