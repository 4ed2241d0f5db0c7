package pass

import (
	"errors"
	"testing"

	"github.com/hitoshi/sandoku/internal/model"
)

func TestToggle_FlipsEachPass(t *testing.T) {
	p := model.PassProgress{}

	p, err := Toggle(p, model.PassManual)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !p.Manual || p.Explain || p.QA {
		t.Errorf("progress = %+v, want only Manual true", p)
	}

	// 再トグルで元に戻る（完了後のチェック解除を許容）
	p, err = Toggle(p, model.PassManual)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Manual {
		t.Errorf("Manual = true after second toggle, want false")
	}
}

func TestToggle_InvalidPass(t *testing.T) {
	_, err := Toggle(model.PassProgress{}, model.ReadingPass("skim"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidPass {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidPass)
	}
}

func TestNextPass_FixedOrder(t *testing.T) {
	tests := []struct {
		name     string
		progress model.PassProgress
		want     model.ReadingPass
		wantOK   bool
	}{
		{"初期状態はmanual", model.PassProgress{}, model.PassManual, true},
		{"manual完了後はexplain", model.PassProgress{Manual: true}, model.PassExplain, true},
		{"explain完了後はqa", model.PassProgress{Manual: true, Explain: true}, model.PassQA, true},
		{"全完了はなし", model.PassProgress{Manual: true, Explain: true, QA: true}, "", false},
		{"順序は固定（qaだけ完了でもmanual）", model.PassProgress{QA: true}, model.PassManual, true},
		{"manualだけ未完了", model.PassProgress{Explain: true, QA: true}, model.PassManual, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextPass(tt.progress)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("NextPass = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		name     string
		progress model.PassProgress
		want     int
	}{
		{"0ステージ", model.PassProgress{}, 0},
		{"1ステージ", model.PassProgress{Manual: true}, 33},
		{"1ステージ（どれでも同じ）", model.PassProgress{QA: true}, 33},
		{"2ステージ", model.PassProgress{Manual: true, QA: true}, 67},
		{"3ステージ", model.PassProgress{Manual: true, Explain: true, QA: true}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionPercentage(tt.progress); got != tt.want {
				t.Errorf("CompletionPercentage(%+v) = %d, want %d", tt.progress, got, tt.want)
			}
		})
	}
}
