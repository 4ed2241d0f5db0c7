// Package model はドメインモデルを定義する。
package model

// ReadingPass は三読法の各ステージを表す。
type ReadingPass string

const (
	// PassManual は通読（素読み）ステージ。
	PassManual ReadingPass = "manual"
	// PassExplain は解説読みステージ。
	PassExplain ReadingPass = "explain"
	// PassQA は問答読みステージ。
	PassQA ReadingPass = "qa"
)

// validPasses は有効なステージのセット。
var validPasses = map[ReadingPass]bool{
	PassManual:  true,
	PassExplain: true,
	PassQA:      true,
}

// Valid はpが定義済みのステージかどうかを返す。
func (p ReadingPass) Valid() bool {
	return validPasses[p]
}

// PassProgress は記事ごとの三読ステージの完了状態を表す。
// 各フラグは独立しており、順序の強制はデータレベルでは行わない。
type PassProgress struct {
	Manual  bool
	Explain bool
	QA      bool
}
