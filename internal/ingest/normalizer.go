// Package ingest は取り込み時の本文正規化を提供する。
//
// Normalizer は外部コラボレーターから渡された生テキストを、章検出と
// ハイライトの座標空間となる改行区切りのプレーンテキストへ正規化する。
// 正規化は取り込み時に1回だけ実行され、以降の本文は不変として扱う。
// オフセットが存在する前に実行されるため、座標空間を壊すことはない。
package ingest

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ContentType は取り込み本文の形式を表す。
type ContentType string

const (
	// ContentTypeText はプレーンテキスト（既定値）。
	ContentTypeText ContentType = "text"
	// ContentTypeHTML はHTML断片またはHTML文書。
	ContentTypeHTML ContentType = "html"
)

// Valid はcが定義済みの形式かどうかを返す。
func (c ContentType) Valid() bool {
	return c == ContentTypeText || c == ContentTypeHTML
}

// Normalizer は本文正規化機能を提供する。
// bluemondayの厳格ポリシーを保持し、スレッドセーフに利用できる。
type Normalizer struct {
	strict *bluemonday.Policy
}

// NewNormalizer はNormalizerの新しいインスタンスを生成する。
// プレーンテキスト入力に紛れ込んだタグの除去にはbluemondayの
// StrictPolicy（全タグ除去）を使用する。
func NewNormalizer() *Normalizer {
	return &Normalizer{
		strict: bluemonday.StrictPolicy(),
	}
}

// 空白行が3行以上続く箇所を1つの空行に圧縮する。
var excessBlankLinesRe = regexp.MustCompile(`\n{3,}`)

// Normalize は生テキストを正規化済みプレーンテキストに変換する。
// 同一入力に対して常に同一出力を返す（冪等）。
//   - 改行コードをLFに統一し、先頭のBOMを除去する
//   - HTML入力はタグを除去しつつ見出し（h1〜h6）をMarkdown見出し行に変換する
//   - プレーンテキスト入力も紛れ込んだタグを除去する
//   - 過剰な空白行を圧縮する
func (n *Normalizer) Normalize(raw string, contentType ContentType) string {
	s := strings.TrimPrefix(raw, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	if contentType == ContentTypeHTML {
		s = htmlToText(s)
	} else {
		// タグ除去後にエンティティを戻すことで、本文中の & や < を保存する
		s = html.UnescapeString(n.strict.Sanitize(s))
	}

	s = excessBlankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s) + "\n"
}

// blockTags は終了時に改行境界を挿入するブロック要素のセット。
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"blockquote": true, "pre": true, "tr": true, "table": true,
	"section": true, "article": true, "figure": true, "figcaption": true,
}

// headingLevels はHTML見出しタグからMarkdown見出しの階層へのマッピング。
// 見出し構造をプレーンテキストに残すことで、章検出がHTML由来の
// 記事でも機能する。
var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// htmlToText はHTMLをトークナイザで走査してプレーンテキストに変換する。
// script/style/head配下のテキストは捨てる。
func htmlToText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var b strings.Builder
	skip := ""

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOFを含むエラーで走査終了。壊れたHTMLでも途中までの
			// テキストを返す（正規化は失敗しない）。
			return trimLines(b.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)

			if tag == "script" || tag == "style" || tag == "head" || tag == "noscript" {
				if tt == html.StartTagToken {
					skip = tag
				}
				continue
			}

			if level, ok := headingLevels[tag]; ok {
				ensureBlankLine(&b)
				b.WriteString(strings.Repeat("#", level))
				b.WriteString(" ")
				continue
			}

			if tag == "br" {
				b.WriteString("\n")
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)

			if tag == skip {
				skip = ""
				continue
			}

			if _, ok := headingLevels[tag]; ok || blockTags[tag] {
				b.WriteString("\n")
			}

		case html.TextToken:
			if skip != "" {
				continue
			}
			// HTML中の空白の連続は表示上意味を持たないため1つに圧縮する
			b.WriteString(collapseWhitespace(string(tokenizer.Text())))
		}
	}
}

// whitespaceRe はテキストトークン内の空白の連続。
var whitespaceRe = regexp.MustCompile(`[ \t\n]+`)

// collapseWhitespace は空白の連続を1つのスペースに圧縮する。
// インライン要素境界の空白を保存するためトリムはしない。
func collapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(s, " ")
}

// trimLines は各行の先頭・末尾の空白を除去する。
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

// ensureBlankLine はビルダー末尾が空行で終わるように改行を補う。
func ensureBlankLine(b *strings.Builder) {
	s := b.String()
	switch {
	case s == "" || strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		b.WriteString("\n")
	default:
		b.WriteString("\n\n")
	}
}
