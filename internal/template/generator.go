// Package template は読書ステージごとのコピー用テンプレート生成を提供する。
// 生成結果はLLMチャット等の外部コラボレーターに貼り付ける固定書式の
// テキストブロックであり、タイトルと本文の代入以外のパラメータを持たない。
package template

import (
	"fmt"
	"strings"

	"github.com/hitoshi/sandoku/internal/chapter"
	"github.com/hitoshi/sandoku/internal/model"
)

// 固定テンプレート本体。
const (
	// manualFormat は通読用。見出しと本文のみで指示文を含まない。
	manualFormat = "# %s\n\n%s\n"

	// explainPreamble / explainPostamble は解説読み用の指示文。
	explainPreamble  = "以下の文章を読んで、内容をわかりやすく解説し、要点を箇条書きで要約してください。"
	explainPostamble = "解説と要約をお願いします。専門用語には簡単な説明を添えてください。"

	// qaPreamble / qaPostamble は問答読み用の指示文。
	qaPreamble  = "以下の文章の理解を深めるための質問を作成してください。"
	qaPostamble = "本文の理解度を確認できる質問を5問作成し、それぞれに模範解答を添えてください。"
)

// Generate は記事（または章）の本文から指定ステージのテンプレートを生成する。
// chがnilの場合は記事全体、非nilの場合はその章の範囲を対象とする。
// 純粋関数であり副作用はない。無効なステージはINVALID_PASSエラーを返す。
func Generate(article model.Article, ch *model.Chapter, passType model.ReadingPass) (string, error) {
	title := article.Title
	content := strings.TrimSpace(article.Content)

	if ch != nil {
		extracted, err := chapter.ExtractChapter(article.Content, *ch)
		if err != nil {
			return "", err
		}
		title = fmt.Sprintf("%s：%s", article.Title, ch.Title)
		content = extracted
	}

	switch passType {
	case model.PassManual:
		return fmt.Sprintf(manualFormat, title, content), nil
	case model.PassExplain:
		return wrap(explainPreamble, title, content, explainPostamble), nil
	case model.PassQA:
		return wrap(qaPreamble, title, content, qaPostamble), nil
	default:
		return "", model.NewInvalidPassError(string(passType))
	}
}

// wrap は指示文の前置き・後置きで本文ブロックを挟んだテンプレートを組み立てる。
func wrap(preamble, title, content, postamble string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(manualFormat, title, content))
	b.WriteString("\n---\n")
	b.WriteString(postamble)
	b.WriteString("\n")
	return b.String()
}
