// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

// Package video recommends home workout videos.
package video

import (
	"context"
	"math/rand/v2"
	"strings"
)

// Video is a single recommendation.
type Video struct {
	Title     string
	Link      string
	Thumbnail string
}

// Provider never fails: implementations fall back to a static list.
type Provider interface {
	Recommend(ctx context.Context, category string) Video
}

// Categories is the home workout menu in display order.
var Categories = []string{"상체", "하체", "코어", "유산소", "스트레칭", "요가", "전신"}

var searchKeywords = map[string][]string{
	"상체":   {"상체운동", "팔운동", "어깨운동"},
	"하체":   {"하체운동", "스쿼트", "엉덩이운동"},
	"코어":   {"복근운동", "코어운동", "플랭크"},
	"유산소":  {"유산소운동", "홈트유산소", "살빼는운동"},
	"스트레칭": {"전신스트레칭", "아침스트레칭", "저녁스트레칭"},
	"요가":   {"요가", "홈요가", "다이어트요가"},
	"전신":   {"전신운동", "다이어트운동", "홈트전신"},
}

var otherKeywords = []string{"홈트레이닝", "건강운동", "다이어트운동"}

// Fallback is served whenever the search backend cannot answer.
var Fallback = []Video{
	{
		Title:     "전신 스트레칭 20분 루틴 💪",
		Link:      "https://www.youtube.com/watch?v=RjEy8v2UB1U",
		Thumbnail: "https://img.youtube.com/vi/RjEy8v2UB1U/hqdefault.jpg",
	},
	{
		Title:     "요가로 하루 마무리 🌿",
		Link:      "https://www.youtube.com/watch?v=Q7Fz1I2f7lA",
		Thumbnail: "https://img.youtube.com/vi/Q7Fz1I2f7lA/hqdefault.jpg",
	},
}

// IsCategory reports whether s (trimmed) is exactly a menu category.
func IsCategory(s string) bool {
	_, ok := searchKeywords[strings.TrimSpace(s)]
	return ok
}

// Keywords returns the search keywords for a category. Unknown categories
// get a generic set.
func Keywords(category string) []string {
	src, ok := searchKeywords[strings.TrimSpace(category)]
	if !ok {
		src = otherKeywords
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// RandSource picks an index in [0, n).
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Static serves only the fallback list. Used when no API key is configured.
type Static struct {
	rand RandSource
}

func NewStatic(src RandSource) *Static {
	if src == nil {
		src = globalRand{}
	}
	return &Static{rand: src}
}

func (s *Static) Recommend(_ context.Context, _ string) Video {
	return pick(s.rand, Fallback)
}

func pick(src RandSource, videos []Video) Video {
	if len(videos) == 0 {
		return Fallback[0]
	}
	return videos[src.IntN(len(videos))]
}
