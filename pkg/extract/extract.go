// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

// Package extract turns comma separated chat input into profile updates.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/dotsetgreg/fitcoach/pkg/utils"
)

// MaxNameRunes is the longest fragment accepted as a name.
const MaxNameRunes = 4

var hourPattern = regexp.MustCompile(`(?:^|\D)(\d{1,2})\s*시(?:$|[^간])`)

// clockToken is an hour like "25시" that ParseHour rejected; it is never a place.
var clockToken = regexp.MustCompile(`^\d+시$`)

var afternoonMarkers = []string{"오후", "저녁", "밤", "pm", "PM"}

// LocationSuffixes are administrative division markers.
var LocationSuffixes = []string{"시", "군", "구", "읍", "면", "동", "리"}

// ExerciseKeywords is the closed exercise vocabulary, matched in order.
var ExerciseKeywords = []string{
	"달리기", "러닝", "런닝", "조깅", "걷기", "산책", "등산",
	"자전거", "사이클", "수영", "요가", "필라테스", "헬스", "웨이트",
	"홈트", "스트레칭", "줄넘기", "축구", "농구", "배구", "야구",
	"테니스", "배드민턴", "복싱", "클라이밍", "크로스핏",
}

var toneKeywords = []struct {
	tone     tone.Tone
	keywords []string
}{
	{tone.Coach, []string{"코치", "coach", "엄격", "빡세"}},
	{tone.Healing, []string{"힐링", "healing", "위로", "편안"}},
	{tone.Friendly, []string{"친구", "friendly", "친근", "반말"}},
}

// Words that end in a location suffix but are ordinary vocabulary.
var locationStopWords = map[string]struct{}{
	"운동": {}, "활동": {}, "이동": {}, "행동": {}, "친구": {},
	"요구": {}, "연구": {}, "도구": {}, "가구": {}, "요리": {},
	"다리": {}, "허리": {}, "머리": {}, "자리": {}, "우리": {},
}

// Updates is the ordered list of assignments found in one message.
type Updates []profile.FieldUpdate

// Fields lists the assigned fields in order.
func (u Updates) Fields() []profile.Field {
	out := make([]profile.Field, 0, len(u))
	for _, upd := range u {
		out = append(out, upd.Field)
	}
	return out
}

// Get returns the last value assigned to f.
func (u Updates) Get(f profile.Field) (any, bool) {
	for i := len(u) - 1; i >= 0; i-- {
		if u[i].Field == f {
			return u[i].Value, true
		}
	}
	return nil, false
}

// Fragments splits text on ASCII and full-width commas and drops empty
// pieces.
func Fragments(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '，' || r == '、'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasDelimiter reports whether text would be split into fields.
func HasDelimiter(text string) bool {
	return strings.ContainsAny(text, ",，、")
}

// Extract classifies each fragment by the first matching rule: hour, place,
// exercise, tone, short name. Unmatched fragments are dropped.
func Extract(text string) Updates {
	var out Updates
	for _, frag := range Fragments(text) {
		if upd, ok := Classify(frag); ok {
			out = append(out, upd)
		}
	}
	return out
}

// Classify applies the extraction rules to a single fragment, first match
// wins: hour, location, exercise, tone, name. A short place name without an
// administrative suffix ("판교") is therefore read as a name.
func Classify(frag string) (profile.FieldUpdate, bool) {
	frag = strings.TrimSpace(frag)
	if frag == "" {
		return profile.FieldUpdate{}, false
	}
	if hhmm, ok := ParseHour(frag); ok {
		return profile.FieldUpdate{Field: profile.FieldNotifyTime, Value: hhmm}, true
	}
	if clockToken.MatchString(frag) {
		return profile.FieldUpdate{}, false
	}
	if IsLocation(frag) {
		return profile.FieldUpdate{Field: profile.FieldLocation, Value: frag}, true
	}
	if kw, ok := utils.FirstContained(frag, ExerciseKeywords); ok {
		return profile.FieldUpdate{Field: profile.FieldExercise, Value: kw}, true
	}
	if t, ok := ParseTone(frag); ok {
		return profile.FieldUpdate{Field: profile.FieldTone, Value: string(t)}, true
	}
	if utf8.RuneCountInString(frag) <= MaxNameRunes {
		return profile.FieldUpdate{Field: profile.FieldName, Value: frag}, true
	}
	return profile.FieldUpdate{}, false
}

// ParseHour finds "<1-2 digits>시" and returns it as zero padded HH:00.
// Afternoon markers shift morning hours by twelve.
func ParseHour(frag string) (string, bool) {
	m := hourPattern.FindStringSubmatch(frag)
	if m == nil {
		return "", false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return "", false
	}
	if hour < 12 && utils.ContainsAny(frag, afternoonMarkers) {
		hour += 12
	}
	return fmt.Sprintf("%02d:00", hour), true
}

// IsLocation reports whether any space separated token ends in an
// administrative suffix and is not a word from another vocabulary.
func IsLocation(frag string) bool {
	for _, tok := range strings.Fields(frag) {
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		if _, stop := locationStopWords[tok]; stop {
			continue
		}
		if clockToken.MatchString(tok) {
			continue
		}
		if _, ok := utils.FirstContained(tok, ExerciseKeywords); ok {
			continue
		}
		if _, ok := ParseTone(tok); ok {
			continue
		}
		for _, suffix := range LocationSuffixes {
			if strings.HasSuffix(tok, suffix) {
				return true
			}
		}
	}
	return false
}

func ParseTone(frag string) (tone.Tone, bool) {
	lower := strings.ToLower(frag)
	for _, entry := range toneKeywords {
		if utils.ContainsAny(lower, entry.keywords) {
			return entry.tone, true
		}
	}
	return "", false
}
