// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, article, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeArticleNotFound   = "ARTICLE_NOT_FOUND"
	ErrCodeChapterNotFound   = "CHAPTER_NOT_FOUND"
	ErrCodeHighlightNotFound = "HIGHLIGHT_NOT_FOUND"
	ErrCodeInvalidRange      = "INVALID_RANGE"
	ErrCodeInvalidColor      = "INVALID_COLOR"
	ErrCodeInvalidPass       = "INVALID_PASS"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", articleID),
		Category: "article",
		Action:   "記事IDを確認してください。",
	}
}

// NewChapterNotFoundError は章未検出エラーを生成する。
func NewChapterNotFoundError(chapterID string) *APIError {
	return &APIError{
		Code:     ErrCodeChapterNotFound,
		Message:  fmt.Sprintf("指定された章が見つかりません: %s", chapterID),
		Category: "article",
		Action:   "章IDを確認してください。章の再計算後は章IDが変わる場合があります。",
	}
}

// NewHighlightNotFoundError はハイライト未検出エラーを生成する。
func NewHighlightNotFoundError(highlightID string) *APIError {
	return &APIError{
		Code:     ErrCodeHighlightNotFound,
		Message:  fmt.Sprintf("指定されたハイライトが見つかりません: %s", highlightID),
		Category: "article",
		Action:   "ハイライトIDを確認してください。",
	}
}

// NewInvalidRangeError は不正な文字範囲エラーを生成する。
// 範囲は 0 <= start < end <= len(content) を満たす必要がある。
func NewInvalidRangeError(start, end, contentLen int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRange,
		Message:  fmt.Sprintf("不正な文字範囲です: [%d, %d) 本文長=%d", start, end, contentLen),
		Category: "validation",
		Action:   "0 <= start < end <= 本文長 を満たす範囲を指定してください。",
	}
}

// NewInvalidColorError は無効なハイライト色エラーを生成する。
func NewInvalidColorError(color string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidColor,
		Message:  fmt.Sprintf("無効なハイライト色です: %s", color),
		Category: "validation",
		Action:   "色には yellow、green、blue、pink、purple、orange のいずれかを指定してください。",
	}
}

// NewInvalidPassError は無効な読書ステージエラーを生成する。
func NewInvalidPassError(pass string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPass,
		Message:  fmt.Sprintf("無効な読書ステージです: %s", pass),
		Category: "validation",
		Action:   "ステージには manual、explain、qa のいずれかを指定してください。",
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト形式を確認してください。",
	}
}
