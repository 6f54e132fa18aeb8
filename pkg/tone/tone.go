// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

// Package tone renders coaching messages in one of three conversational styles.
package tone

import "strings"

// Tone is the conversational style used for coaching messages.
type Tone string

const (
	Friendly Tone = "friendly"
	Coach    Tone = "coach"
	Healing  Tone = "healing"
)

// Default is used whenever a stored tone is missing or unrecognised.
const Default = Friendly

var all = []Tone{Friendly, Coach, Healing}

// All returns the supported tones in display order.
func All() []Tone {
	out := make([]Tone, len(all))
	copy(out, all)
	return out
}

// Parse maps a stored value to a Tone. Unknown values collapse to Default.
func Parse(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case Friendly:
		return Friendly
	case Coach:
		return Coach
	case Healing:
		return Healing
	}
	return Default
}

// Valid reports whether s names a supported tone exactly.
func Valid(s string) bool {
	switch Tone(s) {
	case Friendly, Coach, Healing:
		return true
	}
	return false
}

func (t Tone) Label() string {
	switch Parse(string(t)) {
	case Coach:
		return "코치 모드"
	case Healing:
		return "힐링 모드"
	}
	return "친구 모드"
}

// Condition is the user's self-reported state for the current session.
type Condition string

const (
	ConditionUnspecified Condition = ""
	ConditionGood        Condition = "good"
	ConditionNormal      Condition = "normal"
	ConditionTired       Condition = "tired"
)

var conditionKeywords = []struct {
	condition Condition
	keywords  []string
}{
	{ConditionTired, []string{"피곤", "지침", "지쳤", "힘들", "tired"}},
	{ConditionGood, []string{"좋음", "좋아", "최고", "쌩쌩", "good"}},
	{ConditionNormal, []string{"보통", "그럭저럭", "normal", "so-so"}},
}

// ParseCondition accepts either a stored value or free text containing a
// condition keyword.
func ParseCondition(s string) Condition {
	v := strings.ToLower(strings.TrimSpace(s))
	switch Condition(v) {
	case ConditionGood, ConditionNormal, ConditionTired:
		return Condition(v)
	}
	for _, entry := range conditionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(v, kw) {
				return entry.condition
			}
		}
	}
	return ConditionUnspecified
}
