// Package chapter は記事本文からの章検出と範囲抽出のドメインロジックを提供する。
package chapter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/hitoshi/sandoku/internal/model"
)

// FallbackTitle は見出しが1つも検出できなかった場合の章タイトル。
const FallbackTitle = "全文"

// PreambleTitle は最初の見出しより前にある本文を覆う章のタイトル。
const PreambleTitle = "序文"

// chapterNamespace は章ID導出用のUUID v5名前空間。
// 同一記事・同一インデックスの章は再計算しても同じIDになる。
var chapterNamespace = uuid.MustParse("f2b1c9e4-5a7d-4f3e-9c1b-2d8a6e4b0c7f")

// headingKind は見出しパターンの種別を表す。
type headingKind int

const (
	// headingMarkdown はMarkdown形式の見出し（#〜######）。
	headingMarkdown headingKind = iota
	// headingChapterWord は "Chapter 1" / "Ch. IV" 形式の明示的な章マーカー。
	headingChapterWord
	// headingNumbered は "1.2.3 タイトル" 形式の番号付きアウトライン。
	headingNumbered
	// headingAllCaps は大文字のみで構成された見出し行。
	headingAllCaps
)

// headingMatch は見出しパターンのマッチ結果を表すタグ付きバリアント。
type headingMatch struct {
	kind  headingKind
	title string
	level int
}

// 見出しパターン。優先順位は markdown > 章マーカー > 番号付き > 大文字のみ。
// 複数パターンに一致しうる行（例: 数字で始まる大文字行）を決定的に解決するため、
// 優先順位は固定とする。
var (
	markdownRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

	chapterWordRe = regexp.MustCompile(`(?i)^(?:chapter|ch\.)\s+(?:[IVXLCDM]+|\d+|one|two|three|four|five|six|seven|eight|nine|ten)\b\s*[:.\-–—]?\s*(.*)$`)

	numberedRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+(\S.*)$`)

	allCapsRe = regexp.MustCompile(`^[A-Z][A-Z ]{9,}$`)
)

// matchHeading はトリム済みの1行を固定優先順位で各パターンに照合する。
// 最初に一致したパターンが勝ち、以降のパターンは試行しない。
// どのパターンにも一致しない場合は ok=false を返す。
func matchHeading(trimmed string) (headingMatch, bool) {
	if m := markdownRe.FindStringSubmatch(trimmed); m != nil {
		return headingMatch{
			kind:  headingMarkdown,
			title: strings.TrimSpace(m[2]),
			level: len(m[1]),
		}, true
	}

	if m := chapterWordRe.FindStringSubmatch(trimmed); m != nil {
		// タイトル断片がない場合は行全体をタイトルとして扱う
		title := strings.TrimSpace(m[1])
		if title == "" {
			title = trimmed
		}
		return headingMatch{
			kind:  headingChapterWord,
			title: title,
			level: 1,
		}, true
	}

	if m := numberedRe.FindStringSubmatch(trimmed); m != nil {
		// 階層 = ドット区切りの整数グループ数
		level := strings.Count(m[1], ".") + 1
		return headingMatch{
			kind:  headingNumbered,
			title: strings.TrimSpace(m[2]),
			level: level,
		}, true
	}

	if allCapsRe.MatchString(trimmed) {
		return headingMatch{
			kind:  headingAllCaps,
			title: trimmed,
			level: 1,
		}, true
	}

	return headingMatch{}, false
}

// scanState は行スキャンの畳み込み状態を表す。
// cursorは次の行の先頭バイトオフセット、chaptersは確定済みおよび
// 末尾の開きかけの章（EndOffset暫定）を保持する。
type scanState struct {
	cursor   int
	chapters []model.Chapter
}

// advance は1行分だけスキャン状態を進める。
// 行が見出しに一致した場合、開いている章のEndOffsetを行頭オフセットで確定し、
// 新しい章を暫定EndOffset=contentLenで開く。
func (s scanState) advance(line string, contentLen int) scanState {
	if m, ok := matchHeading(strings.TrimSpace(line)); ok {
		if n := len(s.chapters); n > 0 {
			s.chapters[n-1].EndOffset = s.cursor
		}
		s.chapters = append(s.chapters, model.Chapter{
			Title:       m.title,
			StartOffset: s.cursor,
			EndOffset:   contentLen, // 次の見出しが見つかるまで暫定
			Level:       m.level,
		})
	}
	// 改行区切りの分だけ+1。この加算規則が全オフセットの座標空間を定める。
	s.cursor += len(line) + 1
	return s
}

// Detect は本文を行単位でスキャンし、章の順序付き列を返す。
// 戻り値は本文全体 [0, len(content)) を隙間も重複もなく分割する。
// 見出しが1つも見つからない場合は本文全体を覆うフォールバック章を1つ返す。
// 同一の本文に対しては常に同一のオフセット・タイトル・階層・IDを返す（冪等）。
// この関数はエラーを返さない。
func Detect(articleID, content string) []model.Chapter {
	st := scanState{}
	for _, line := range strings.Split(content, "\n") {
		st = st.advance(line, len(content))
	}

	chapters := st.chapters
	switch {
	case len(chapters) == 0:
		chapters = []model.Chapter{{
			Title:       FallbackTitle,
			StartOffset: 0,
			EndOffset:   len(content),
			Level:       1,
		}}
	case chapters[0].StartOffset > 0:
		// 最初の見出しより前の本文も分割に含める。
		// 先頭章のStartOffset=0という不変条件を維持するため序文章を補う。
		chapters = append([]model.Chapter{{
			Title:       PreambleTitle,
			StartOffset: 0,
			EndOffset:   chapters[0].StartOffset,
			Level:       1,
		}}, chapters...)
	}

	for i := range chapters {
		chapters[i].ID = deterministicChapterID(articleID, i)
		chapters[i].ArticleID = articleID
		chapters[i].Index = i
	}

	return chapters
}

// deterministicChapterID は記事IDと章インデックスから決定的な章IDを導出する。
func deterministicChapterID(articleID string, index int) string {
	return uuid.NewSHA1(chapterNamespace, []byte(fmt.Sprintf("%s/%d", articleID, index))).String()
}
