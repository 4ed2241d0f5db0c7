// Package model はドメインモデルを定義する。
package model

import "time"

// Article は読書対象の記事を表す。
// Contentは取り込み時の正規化を経た後は不変であり、
// 章とハイライトのオフセットはこの文字列を座標空間として共有する。
type Article struct {
	ID                  string
	Title               string
	Author              string
	Content             string // 正規化済みプレーンテキスト（UTF-8）
	CurrentChapterIndex int
	Progress            PassProgress
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Chapter は記事本文の連続した文字範囲を表す。
// 章の列は本文全体 [0, len(content)) を隙間も重複もなく分割する。
type Chapter struct {
	ID          string
	ArticleID   string
	Index       int // 記事内の出現順（0始まり）
	Title       string
	StartOffset int // 本文へのバイトオフセット（開始、含む）
	EndOffset   int // 本文へのバイトオフセット（終了、含まない）
	Level       int // 見出しの階層（1始まり）
	CreatedAt   time.Time
}

// Length は章の範囲の長さ（バイト数）を返す。
func (c Chapter) Length() int {
	return c.EndOffset - c.StartOffset
}

// ArticleSummary は記事一覧用のサマリー情報。
// 本文は含めず、派生情報の件数のみを持つ。
type ArticleSummary struct {
	ID                   string
	Title                string
	Author               string
	ContentLength        int
	ChapterCount         int
	HighlightCount       int
	CompletionPercentage int
	CreatedAt            time.Time
}
