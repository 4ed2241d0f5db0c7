package chapter

import (
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/sandoku/internal/model"
)

func TestExtract_ReturnsTrimmedSubstring(t *testing.T) {
	content := "# Intro\n  hello world  \nend"

	got, err := Extract(content, 8, 23)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "hello world" {
		t.Errorf("Extract = %q, want %q", got, "hello world")
	}
}

func TestExtract_EmptyRange(t *testing.T) {
	// start == end は空文字列を返す（抽出の範囲制約は start <= end）
	got, err := Extract("abc", 1, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "" {
		t.Errorf("Extract = %q, want empty string", got)
	}
}

func TestExtract_InvalidRanges(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{"負のstart", -1, 2},
		{"endがstartより小さい", 3, 2},
		{"endが本文長を超える", 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract("short text", tt.start, tt.end)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *model.APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeInvalidRange {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRange)
			}
		})
	}
}

func TestExtract_ChapterRoundTrip(t *testing.T) {
	// Detectが返した全章について、トリム前の部分文字列が
	// StartOffsetから始まる本文の部分文字列であること
	content := "# Intro\nhello\n## Details\nworld\nEXECUTIVE SUMMARY HERE\ntail\n"
	chapters := Detect("article-1", content)

	for _, c := range chapters {
		raw := content[c.StartOffset:c.EndOffset]
		if !strings.HasPrefix(content[c.StartOffset:], raw) {
			t.Errorf("chapter %d raw substring mismatch", c.Index)
		}

		got, err := ExtractChapter(content, c)
		if err != nil {
			t.Fatalf("ExtractChapter(chapter %d) error: %v", c.Index, err)
		}
		if got != strings.TrimSpace(raw) {
			t.Errorf("ExtractChapter(chapter %d) = %q, want %q", c.Index, got, strings.TrimSpace(raw))
		}
	}
}

func TestExtract_MultibyteBoundaries(t *testing.T) {
	content := "# 序章\n日本語の本文です。\n"
	chapters := Detect("article-1", content)

	got, err := ExtractChapter(content, chapters[0])
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(got, "日本語の本文です。") {
		t.Errorf("ExtractChapter = %q, should contain the body text", got)
	}
}
