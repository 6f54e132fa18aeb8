// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package weather

import (
	"fmt"
	"strings"
)

// Outdoor temperature window in °C, inclusive on both ends.
const (
	OutdoorMinTemp = 10.0
	OutdoorMaxTemp = 26.0
)

// AdverseKeywords mark descriptions that rule out outdoor exercise.
// Descriptions arrive in the provider's language, so both Korean and
// English forms are listed.
var AdverseKeywords = []string{
	"비", "눈", "소나기", "뇌우", "천둥", "진눈깨비",
	"rain", "snow", "shower", "thunder", "drizzle", "sleet",
}

type Placement string

const (
	Indoor  Placement = "indoor"
	Outdoor Placement = "outdoor"
)

// Recommendation is the binary indoor/outdoor verdict for a reading.
type Recommendation struct {
	Category   Placement
	Headline   string
	Suggestion string
}

func (r Recommendation) IsOutdoor() bool {
	return r.Category == Outdoor
}

var (
	outdoorRecommendation = Recommendation{
		Category:   Outdoor,
		Headline:   "🌤 실외운동 추천",
		Suggestion: "산책, 자전거, 달리기, 축구처럼 밖에서 움직여 보자!",
	}
	indoorRecommendation = Recommendation{
		Category:   Indoor,
		Headline:   "🏠 실내운동 추천",
		Suggestion: "요가, 홈트, 스트레칭처럼 실내에서 할 수 있는 운동이 좋아.",
	}
)

// Classify decides indoor vs outdoor from the raw provider description and
// the temperature.
func Classify(description string, temperature float64) Recommendation {
	if IsAdverse(description) {
		return indoorRecommendation
	}
	if temperature < OutdoorMinTemp || temperature > OutdoorMaxTemp {
		return indoorRecommendation
	}
	return outdoorRecommendation
}

func IsAdverse(description string) bool {
	d := strings.ToLower(description)
	for _, kw := range AdverseKeywords {
		if strings.Contains(d, kw) {
			return true
		}
	}
	return false
}

// Icon returns an emoji for a description.
func Icon(description string) string {
	d := strings.ToLower(description)
	switch {
	case containsAny(d, "맑", "clear"):
		return "☀️"
	case containsAny(d, "구름", "cloud"):
		return "🌤️"
	case containsAny(d, "비", "rain", "소나기"):
		return "🌧️"
	case containsAny(d, "눈", "snow"):
		return "❄️"
	case containsAny(d, "번개", "천둥", "thunder"):
		return "⛈️"
	case containsAny(d, "안개", "fog", "mist"):
		return "🌫️"
	}
	return "🌈"
}

// Outfit suggests clothing for the conditions.
func Outfit(temperature float64, description string) string {
	switch {
	case strings.Contains(description, "비") || strings.Contains(strings.ToLower(description), "rain"):
		return "☔ 방수 자켓 + 운동화"
	case strings.Contains(description, "눈") || strings.Contains(strings.ToLower(description), "snow"):
		return "⛄ 따뜻한 방한복"
	case temperature >= 25:
		return "😎 반팔 + 반바지"
	case temperature >= 15:
		return "🍂 긴팔 트레이닝복"
	case temperature >= 5:
		return "🧤 기모 트레이닝복"
	}
	return "🥶 패딩 + 장갑"
}

// FormatReport renders the weather reply. tomorrow may be nil.
func FormatReport(place string, now Snapshot, rec Recommendation, tomorrow *Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 오늘의 날씨 (%s)\n", Icon(now.Description), place)
	fmt.Fprintf(&b, "🌡 %.1f°C / %s", now.Temperature, now.Description)
	if now.FeelsLike != nil {
		fmt.Fprintf(&b, " / 체감 %.1f°C", *now.FeelsLike)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "👕 복장: %s\n", Outfit(now.Temperature, now.Description))
	fmt.Fprintf(&b, "%s\n%s", rec.Headline, rec.Suggestion)
	if tomorrow != nil {
		fmt.Fprintf(&b, "\n\n%s 내일: %.1f°C / %s", Icon(tomorrow.Description), tomorrow.Temperature, tomorrow.Description)
	}
	return b.String()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
