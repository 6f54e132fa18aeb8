// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/samber/lo"
)

var fieldLabels = map[Field]string{
	FieldName:       "이름",
	FieldLocation:   "지역",
	FieldExercise:   "선호 운동",
	FieldNotifyTime: "알림 시간",
	FieldTone:       "대화 톤",
}

var fieldPrompts = map[Field]string{
	FieldName:       "이름을 알려줘! (예: 나연)",
	FieldLocation:   "사는 지역을 알려줘! (예: 성남시 수정구)",
	FieldExercise:   "좋아하는 운동을 알려줘! (예: 달리기, 요가, 홈트)",
	FieldNotifyTime: "알림 받을 시간을 알려줘! (예: 7시, 17시)",
	FieldTone:       "대화 톤을 골라줘! (친구 / 코치 / 힐링)",
}

func FieldLabel(f Field) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// FieldPrompt is the question asked when f is missing.
func FieldPrompt(f Field) string {
	if p, ok := fieldPrompts[f]; ok {
		return p
	}
	return fmt.Sprintf("%s을(를) 알려줘!", FieldLabel(f))
}

// Missing lists the completeness fields that are unset or blank, in
// display order.
func Missing(p *Profile) []Field {
	if p == nil {
		return append([]Field(nil), CompletenessFields...)
	}
	return lo.Filter(CompletenessFields, func(f Field, _ int) bool {
		return p.Value(f) == nil
	})
}

// Complete reports whether all five completeness fields are set.
func Complete(p *Profile) bool {
	return len(Missing(p)) == 0
}

// Summary renders the completeness view of a profile.
func Summary(p *Profile, now time.Time) string {
	var b strings.Builder
	b.WriteString("📋 내 정보\n")
	for _, f := range CompletenessFields {
		v := p.Value(f)
		if v == nil {
			fmt.Fprintf(&b, "• %s: ❌ 미입력\n", FieldLabel(f))
			continue
		}
		display := *v
		if f == FieldTone {
			display = tone.Parse(display).Label()
		}
		fmt.Fprintf(&b, "• %s: %s\n", FieldLabel(f), display)
	}

	if nt := p.Value(FieldNotifyTime); nt != nil {
		if next, err := NextNotification(*nt, now); err == nil {
			fmt.Fprintf(&b, "⏰ 다음 알림 예정: %s\n", next.Format("01/02 15:04"))
		}
	}

	missing := Missing(p)
	if len(missing) == 0 {
		b.WriteString("\n모든 정보가 채워졌어! 🎉")
	} else {
		labels := lo.Map(missing, func(f Field, _ int) string { return FieldLabel(f) })
		fmt.Fprintf(&b, "\n아직 입력하지 않은 항목: %s", strings.Join(labels, ", "))
	}
	return b.String()
}

// DailyCron converts an HH:MM notify time into a daily cron expression.
func DailyCron(notifyTime string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(notifyTime))
	if err != nil {
		return "", fmt.Errorf("invalid notify time %q: %w", notifyTime, err)
	}
	expr := fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	if !gronx.New().IsValid(expr) {
		return "", fmt.Errorf("invalid notify schedule %q", expr)
	}
	return expr, nil
}

// NextNotification previews when a daily notification at notifyTime would
// next fire after now. Nothing dispatches it.
func NextNotification(notifyTime string, now time.Time) (time.Time, error) {
	expr, err := DailyCron(notifyTime)
	if err != nil {
		return time.Time{}, err
	}
	return gronx.NextTickAfter(expr, now, false)
}
