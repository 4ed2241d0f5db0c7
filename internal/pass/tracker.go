// Package pass は三読法の読書ステージ進捗のドメインロジックを提供する。
// 各ステージは独立にトグル可能で、順序の強制は行わない。
package pass

import (
	"math"

	"github.com/hitoshi/sandoku/internal/model"
)

// orderedPasses は「次のステージ」提案の固定順序。
var orderedPasses = []model.ReadingPass{
	model.PassManual,
	model.PassExplain,
	model.PassQA,
}

// Toggle は指定ステージのフラグを反転した進捗を返す。
// 全ステージ完了後でも任意のステージを再度トグルできる。
// 無効なステージ名の場合はINVALID_PASSエラーを返す。
func Toggle(p model.PassProgress, pass model.ReadingPass) (model.PassProgress, error) {
	switch pass {
	case model.PassManual:
		p.Manual = !p.Manual
	case model.PassExplain:
		p.Explain = !p.Explain
	case model.PassQA:
		p.QA = !p.QA
	default:
		return p, model.NewInvalidPassError(string(pass))
	}
	return p, nil
}

// Done は指定ステージの完了フラグを返す。
func Done(p model.PassProgress, pass model.ReadingPass) bool {
	switch pass {
	case model.PassManual:
		return p.Manual
	case model.PassExplain:
		return p.Explain
	case model.PassQA:
		return p.QA
	}
	return false
}

// NextPass は manual → explain → qa の固定順序で最初の未完了ステージを返す。
// 全ステージ完了の場合は ok=false を返す。あくまで提案であり、
// 返されたステージ以外のトグルも妨げない。
func NextPass(p model.PassProgress) (model.ReadingPass, bool) {
	for _, pass := range orderedPasses {
		if !Done(p, pass) {
			return pass, true
		}
	}
	return "", false
}

// CompletionPercentage は完了ステージ数から進捗率を計算する。
// 戻り値は 0、33、67、100 のいずれか。
func CompletionPercentage(p model.PassProgress) int {
	count := 0
	for _, pass := range orderedPasses {
		if Done(p, pass) {
			count++
		}
	}
	return int(math.Round(100 * float64(count) / float64(len(orderedPasses))))
}
