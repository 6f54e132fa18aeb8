// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package tone

import (
	"math/rand/v2"
	"strings"

	"github.com/dotsetgreg/fitcoach/pkg/weather"
)

// RandSource picks an index in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type pool struct {
	intro    []string
	motivate []string
	rest     []string
}

var pools = map[Tone]pool{
	Friendly: {
		intro: []string{
			"오늘 기분 어때? ☀️",
			"좋은 하루야~ 같이 운동 가자 💕",
			"오늘도 화이팅이야! 🙌",
		},
		motivate: []string{
			"조금만 움직여도 몸이 개운해질 거야!",
			"네 페이스 좋아! 천천히 꾸준히!",
			"오늘은 꾸준함으로 승부하자 🔥",
		},
		rest: []string{
			"몸이 좀 무거우면 스트레칭만 해도 좋아 🌿",
			"쉼도 운동의 일부야 ☁️",
			"가벼운 산책도 충분해 ☺️",
		},
	},
	Coach: {
		intro: []string{
			"컨디션 점검 완료 💪",
			"루틴 점검 시작! 오늘도 집중하자 ⚡️",
			"지금이 바로 운동 타임이다!",
		},
		motivate: []string{
			"폼 체크 잊지 말고, 정확하게!",
			"좋아, 지금 리듬 유지!",
			"오늘 루틴 완벽하게 끝내자 👊",
		},
		rest: []string{
			"휴식도 훈련이다. 몸 상태 봐서 강약 조절!",
			"가볍게 유산소로 마무리해도 좋다.",
			"회복일엔 모빌리티 10분이면 충분하다.",
		},
	},
	Healing: {
		intro: []string{
			"오늘도 잘 버텨줘서 고마워 🌷",
			"괜찮아, 오늘은 느리게 가도 돼 ☁️",
			"잠깐 숨 돌리고 시작하자 🌿",
		},
		motivate: []string{
			"조급해하지 말고, 네 속도로 가면 돼 🌱",
			"지금도 충분히 잘하고 있어 💜",
			"작은 움직임 하나도 의미 있어 🌸",
		},
		rest: []string{
			"오늘은 스스로를 돌보는 날이야 🩵",
			"스트레칭만 살짝 해도 괜찮아 🌙",
			"따뜻한 물 한 잔 마시고 천천히 몸을 풀자 🍵",
		},
	},
}

// Fixed situational lines.
const (
	WeatherLineIndoor  = "☔ 오늘은 바깥이 안 좋아! 실내 루틴으로 가자 🏠"
	WeatherLineHot     = "🥵 날이 덥다! 수분 꼭 챙기고, 그늘 위주로 하자 🌤️"
	WeatherLineCold    = "🥶 추운 날씨네! 워밍업을 충분히 하고 시작하자 🔥"
	WeatherLineClear   = "☀️ 맑은 날씨야! 밖에서 운동하면 기분 최고일 거야 😎"
	WeatherLineNeutral = "🌤️ 무난한 날씨네. 오늘도 네 루틴 지켜보자 💪"

	ActivityLineUnknown = "어제 운동했어? 😊 했으면 꾸준함 최고야, 안 했다면 오늘 시작해보자!"
	ActivityLineDid     = "어제도 운동했네! 대단해 👏 오늘은 강도 살짝 조절해서 가자."
	ActivityLineRested  = "어제는 쉬었네 🌿 오늘은 가볍게 몸을 풀어볼까?"

	ConditionLineGood        = "컨디션 최고네! 오늘은 조금 더 힘내보자 💪"
	ConditionLineNormal      = "무리하지 말고, 네 페이스대로 가자 🌼"
	ConditionLineTired       = "피곤하다면 스트레칭 위주로만 하자 ☁️"
	ConditionLineUnspecified = "오늘 몸 상태는 어때? 🌤️ 네 컨디션에 맞게 루틴 조절해볼까?"

	EnvLineIndoor  = "🏠 오늘은 실내 운동 위주로!"
	EnvLineOutdoor = "🚴‍♀️ 바깥공기 마시면서 달려보자!"
)

// Input carries the situational facts a coaching message is built from.
type Input struct {
	Tone               Tone
	Weather            weather.Category
	Temperature        *float64
	Outdoor            bool
	ExercisedYesterday *bool
	Condition          Condition
}

type Renderer struct {
	rand RandSource
}

// NewRenderer returns a renderer drawing from src, or from the global
// math/rand/v2 source when src is nil.
func NewRenderer(src RandSource) *Renderer {
	if src == nil {
		src = globalRand{}
	}
	return &Renderer{rand: src}
}

// Render composes a multi-line coaching message. Line choice within each
// pool is random; the set and order of lines depend only on the tone.
func (r *Renderer) Render(in Input) string {
	t := Parse(string(in.Tone))
	p := pools[t]

	intro := r.pick(p.intro)
	motivate := r.pick(p.motivate)
	rest := r.pick(p.rest)

	weatherLine := WeatherLine(in.Weather, in.Temperature)
	conditionLine := ConditionLine(in.Condition)

	var lines []string
	switch t {
	case Healing:
		lines = []string{intro, weatherLine, conditionLine, rest}
	case Coach:
		lines = []string{intro, weatherLine, conditionLine, EnvLine(in.Outdoor), motivate}
	default:
		lines = []string{intro, weatherLine, ActivityLine(in.ExercisedYesterday), conditionLine, motivate}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) pick(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[r.rand.IntN(len(lines))]
}

// Pool returns a copy of the candidate lines of one pool ("intro",
// "motivate" or "rest") for the given tone.
func Pool(t Tone, name string) []string {
	p := pools[Parse(string(t))]
	var src []string
	switch name {
	case "intro":
		src = p.intro
	case "motivate":
		src = p.motivate
	case "rest":
		src = p.rest
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func WeatherLine(c weather.Category, temp *float64) string {
	switch {
	case c == weather.CategoryRain || c == weather.CategorySnow:
		return WeatherLineIndoor
	case temp != nil && *temp >= 30:
		return WeatherLineHot
	case temp != nil && *temp <= 0:
		return WeatherLineCold
	case c == weather.CategoryClear:
		return WeatherLineClear
	}
	return WeatherLineNeutral
}

func ActivityLine(exercised *bool) string {
	switch {
	case exercised == nil:
		return ActivityLineUnknown
	case *exercised:
		return ActivityLineDid
	}
	return ActivityLineRested
}

func ConditionLine(c Condition) string {
	switch c {
	case ConditionGood:
		return ConditionLineGood
	case ConditionNormal:
		return ConditionLineNormal
	case ConditionTired:
		return ConditionLineTired
	}
	return ConditionLineUnspecified
}

func EnvLine(outdoor bool) string {
	if outdoor {
		return EnvLineOutdoor
	}
	return EnvLineIndoor
}
