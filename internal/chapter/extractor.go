package chapter

import (
	"strings"

	"github.com/hitoshi/sandoku/internal/model"
)

// Extract は本文から [start, end) の部分文字列を取り出し、前後の空白を
// 除去して返す。範囲は 0 <= start <= end <= len(content) を満たす必要があり、
// 範囲外の場合はクランプせずINVALID_RANGEエラーを返す（一貫して拒否する方針）。
// 副作用はない。
func Extract(content string, start, end int) (string, error) {
	if start < 0 || end < start || end > len(content) {
		return "", model.NewInvalidRangeError(start, end, len(content))
	}
	return strings.TrimSpace(content[start:end]), nil
}

// ExtractChapter は章の範囲に対応する本文を返す。
// Detectが返した章は常に有効な範囲を持つため、章列が本文と同じ座標空間に
// ある限りエラーにならない。
func ExtractChapter(content string, c model.Chapter) (string, error) {
	return Extract(content, c.StartOffset, c.EndOffset)
}
