package tone

import (
	"strings"
	"testing"

	"github.com/dotsetgreg/fitcoach/pkg/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand struct{ n int }

func (f fixedRand) IntN(n int) int { return f.n % n }

func ptr[T any](v T) *T { return &v }

func TestRender_HealingMembership(t *testing.T) {
	r := NewRenderer(nil)
	intro := Pool(Healing, "intro")
	rest := Pool(Healing, "rest")
	require.Len(t, intro, 3)

	for i := 0; i < 50; i++ {
		msg := r.Render(Input{
			Tone:               Healing,
			Weather:            weather.CategoryClear,
			Temperature:        ptr(20.0),
			Outdoor:            true,
			ExercisedYesterday: ptr(true),
		})
		lines := strings.Split(msg, "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, intro, lines[0])
		assert.Equal(t, WeatherLineClear, lines[1])
		assert.Equal(t, ConditionLineUnspecified, lines[2])
		assert.Contains(t, rest, lines[3])

		for _, activity := range []string{ActivityLineUnknown, ActivityLineDid, ActivityLineRested} {
			assert.NotContains(t, msg, activity)
		}
	}
}

func TestRender_CoachIncludesEnvironmentLine(t *testing.T) {
	r := NewRenderer(fixedRand{n: 1})
	msg := r.Render(Input{Tone: Coach, Weather: weather.CategoryRain, Temperature: ptr(15.0), Outdoor: false, Condition: ConditionTired})

	want := strings.Join([]string{
		Pool(Coach, "intro")[1],
		WeatherLineIndoor,
		ConditionLineTired,
		EnvLineIndoor,
		Pool(Coach, "motivate")[1],
	}, "\n")
	assert.Equal(t, want, msg)
}

func TestRender_FriendlyIncludesYesterdayLine(t *testing.T) {
	r := NewRenderer(fixedRand{n: 0})
	msg := r.Render(Input{Tone: Friendly, Weather: weather.CategoryClouds, ExercisedYesterday: ptr(false), Condition: ConditionGood})

	lines := strings.Split(msg, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, Pool(Friendly, "intro")[0], lines[0])
	assert.Equal(t, WeatherLineNeutral, lines[1])
	assert.Equal(t, ActivityLineRested, lines[2])
	assert.Equal(t, ConditionLineGood, lines[3])
	assert.Equal(t, Pool(Friendly, "motivate")[0], lines[4])
}

func TestRender_UnknownToneFallsBackToFriendly(t *testing.T) {
	r := NewRenderer(fixedRand{n: 2})
	got := r.Render(Input{Tone: Tone("sarcastic"), Weather: weather.CategoryOther})
	want := r.Render(Input{Tone: Friendly, Weather: weather.CategoryOther})
	assert.Equal(t, want, got)
}

func TestWeatherLine(t *testing.T) {
	testcases := []struct {
		name string
		cat  weather.Category
		temp *float64
		want string
	}{
		{"rain-wins-over-heat", weather.CategoryRain, ptr(33.0), WeatherLineIndoor},
		{"snow", weather.CategorySnow, ptr(-5.0), WeatherLineIndoor},
		{"heat", weather.CategoryClear, ptr(30.0), WeatherLineHot},
		{"cold", weather.CategoryClear, ptr(0.0), WeatherLineCold},
		{"clear", weather.CategoryClear, ptr(20.0), WeatherLineClear},
		{"clouds", weather.CategoryClouds, ptr(20.0), WeatherLineNeutral},
		{"no-temp", weather.CategoryClear, nil, WeatherLineClear},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WeatherLine(tc.cat, tc.temp))
		})
	}
}

func TestConditionLine(t *testing.T) {
	assert.Equal(t, ConditionLineGood, ConditionLine(ConditionGood))
	assert.Equal(t, ConditionLineNormal, ConditionLine(ConditionNormal))
	assert.Equal(t, ConditionLineTired, ConditionLine(ConditionTired))
	assert.Equal(t, ConditionLineUnspecified, ConditionLine(ConditionUnspecified))
}

func TestParse(t *testing.T) {
	assert.Equal(t, Coach, Parse("coach"))
	assert.Equal(t, Healing, Parse(" Healing "))
	assert.Equal(t, Friendly, Parse(""))
	assert.Equal(t, Friendly, Parse("grumpy"))
	assert.True(t, Valid("coach"))
	assert.False(t, Valid("Coach"))
}

func TestParseCondition(t *testing.T) {
	assert.Equal(t, ConditionTired, ParseCondition("오늘 좀 피곤해"))
	assert.Equal(t, ConditionGood, ParseCondition("컨디션 최고!"))
	assert.Equal(t, ConditionNormal, ParseCondition("그냥 보통이야"))
	assert.Equal(t, ConditionGood, ParseCondition("good"))
	assert.Equal(t, ConditionUnspecified, ParseCondition("운동 추천해줘"))
}

func TestPoolsHaveThreeLinesEach(t *testing.T) {
	for _, tn := range All() {
		for _, name := range []string{"intro", "motivate", "rest"} {
			assert.Len(t, Pool(tn, name), 3, "%s/%s", tn, name)
		}
	}
}
