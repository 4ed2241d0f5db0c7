// Package model はドメインモデルを定義する。
package model

import "time"

// HighlightColor はハイライトの色を表す。
type HighlightColor string

const (
	// ColorYellow は黄色のハイライト。
	ColorYellow HighlightColor = "yellow"
	// ColorGreen は緑色のハイライト。
	ColorGreen HighlightColor = "green"
	// ColorBlue は青色のハイライト。
	ColorBlue HighlightColor = "blue"
	// ColorPink はピンク色のハイライト。
	ColorPink HighlightColor = "pink"
	// ColorPurple は紫色のハイライト。
	ColorPurple HighlightColor = "purple"
	// ColorOrange はオレンジ色のハイライト。
	ColorOrange HighlightColor = "orange"
)

// validColors は有効なハイライト色のセット。
var validColors = map[HighlightColor]bool{
	ColorYellow: true,
	ColorGreen:  true,
	ColorBlue:   true,
	ColorPink:   true,
	ColorPurple: true,
	ColorOrange: true,
}

// Valid はcが定義済みの色かどうかを返す。
func (c HighlightColor) Valid() bool {
	return validColors[c]
}

// Highlight は記事本文の文字範囲に紐づくユーザー注釈を表す。
// オフセットは作成後不変であり、色とメモのみ更新できる。
// 同一記事内でハイライト同士が重なることは許容される。
type Highlight struct {
	ID          string
	ArticleID   string
	Text        string // 表示用の冗長コピー。content[start:end]と一致する想定。
	Note        string // 任意のメモ。空文字列は未設定を表す。
	Color       HighlightColor
	StartOffset int
	EndOffset   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
