package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/dotsetgreg/fitcoach/pkg/video"
	"github.com/dotsetgreg/fitcoach/pkg/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeather struct {
	mu            sync.Mutex
	current       weather.Snapshot
	tomorrow      *weather.Snapshot
	err           error
	currentCalls  int
	tomorrowCalls int
	cities        []string
}

func (f *fakeWeather) Current(_ context.Context, city string) (weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentCalls++
	f.cities = append(f.cities, city)
	if f.err != nil {
		return weather.Snapshot{}, f.err
	}
	return f.current, nil
}

func (f *fakeWeather) Tomorrow(_ context.Context, _ string) (weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tomorrowCalls++
	if f.tomorrow == nil {
		return weather.Snapshot{}, weather.ErrUnavailable
	}
	return *f.tomorrow, nil
}

func (f *fakeWeather) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentCalls + f.tomorrowCalls
}

type fakeVideos struct {
	categories []string
}

func (f *fakeVideos) Recommend(_ context.Context, category string) video.Video {
	f.categories = append(f.categories, category)
	return video.Video{Title: category + " 영상", Link: "https://youtu.be/" + category}
}

type failingStore struct {
	profile.Store
}

func (failingStore) Get(context.Context, string) (*profile.Profile, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) UpdateFields(context.Context, string, []profile.FieldUpdate) (*profile.Profile, error) {
	return nil, errors.New("disk on fire")
}

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

func newTestController(t *testing.T) (*Controller, *profile.MemoryStore, *fakeWeather, *fakeVideos) {
	t.Helper()
	store := profile.NewMemoryStore()
	wp := &fakeWeather{current: weather.Snapshot{City: "Seongnam", Temperature: 18, Description: "맑음", Main: weather.CategoryClear}}
	vp := &fakeVideos{}
	return NewController(store, wp, vp, tone.NewRenderer(firstRand{})), store, wp, vp
}

func send(c *Controller, text string) Reply {
	return c.Handle(context.Background(), Message{UserID: "u1", Text: text})
}

func TestRoutes_Order(t *testing.T) {
	c, _, _, _ := newTestController(t)
	assert.Equal(t, []string{
		"greeting", "reset", "profile", "home_workout", "video_category",
		"extract", "weather", "workout", "fallback",
	}, c.Routes())
}

func TestHandle_RoutePriority(t *testing.T) {
	testcases := []struct {
		text  string
		route string
	}{
		{"/start", "greeting"},
		{"안녕!", "greeting"},
		{"안녕하세요", "greeting"},
		{"안녕 날씨 알려줘", "weather"},
		{"오늘 운동 시작할게", "workout"},
		{"/reset", "reset"},
		{"초기화", "reset"},
		{"정보 변경할래", "reset"},
		{"내 정보 초기화해줘", "reset"},
		{"톤 변경, 힐링", "extract"},
		{"내 정보 보여줘", "profile"},
		{"홈트 추천", "home_workout"},
		{"나연, 홈트", "extract"},
		{" 요가 ", "video_category"},
		{"요가 하고싶어", "fallback"},
		{"나연, 서울시", "extract"},
		{"오늘 날씨 어때", "weather"},
		{"운동 추천해줘", "workout"},
		{"뭐해?", "fallback"},
	}
	for _, tc := range testcases {
		t.Run(tc.text, func(t *testing.T) {
			c, _, _, _ := newTestController(t)
			assert.Equal(t, tc.route, send(c, tc.text).Route)
		})
	}
}

func TestHandle_ToneChangeKeepsProfile(t *testing.T) {
	c, store, _, _ := newTestController(t)
	send(c, "나연, 성남시 수정구, 달리기, 17시, 코치")

	reply := send(c, "톤 변경, 힐링")
	assert.Equal(t, "extract", reply.Route)

	p, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p.Location)
	assert.Equal(t, "성남시 수정구", *p.Location)
	assert.Equal(t, "달리기", *p.Exercise)
	assert.Equal(t, string(tone.Healing), p.Tone)

	assert.Equal(t, "workout", send(c, "오늘 운동 시작할게").Route)
}

func TestCommandMatch(t *testing.T) {
	assert.True(t, resetCommand.match("  리셋!! "))
	assert.True(t, resetCommand.match("프로필 초기화 해줘"))
	assert.False(t, resetCommand.match("알림 시간 변경하고 싶어"))
	assert.False(t, resetCommand.match("초기화면 보여줘"))
	assert.True(t, greetingCommand.match("Hello"))
	assert.False(t, greetingCommand.match("시작할게 운동"))
}

func TestHandle_MissingLocationMakesNoWeatherCalls(t *testing.T) {
	c, _, wp, _ := newTestController(t)

	for _, text := range []string{"날씨 알려줘", "운동 추천해줘"} {
		reply := send(c, text)
		assert.Equal(t, []profile.Field{profile.FieldLocation}, reply.Missing)
		assert.Contains(t, reply.Text, "지역")
	}
	assert.Equal(t, 0, wp.calls())
}

func TestHandle_ExtractThenSummary(t *testing.T) {
	c, store, _, _ := newTestController(t)

	reply := send(c, "나연, 성남시 수정구, 달리기, 17시, 코치")
	assert.Equal(t, "extract", reply.Route)
	assert.Empty(t, reply.Missing)
	assert.Contains(t, reply.Text, "모든 정보가 채워졌어")

	p, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "나연", *p.Name)
	assert.Equal(t, "성남시 수정구", *p.Location)
	assert.Equal(t, "달리기", *p.Exercise)
	assert.Equal(t, "17:00", *p.NotifyTime)
	assert.Equal(t, "coach", p.Tone)
}

func TestHandle_ExtractWithNothingRecognised(t *testing.T) {
	c, _, _, _ := newTestController(t)
	reply := send(c, "오늘은 정말 기분이 좋다, 그치만 바쁘다")
	assert.Equal(t, "extract", reply.Route)
	assert.Equal(t, noFieldsText, reply.Text)
}

func TestHandle_ResetCompleteness(t *testing.T) {
	c, store, _, _ := newTestController(t)
	send(c, "나연, 성남시 수정구, 달리기, 17시, 힐링")

	reply := send(c, "초기화")
	assert.Equal(t, profile.CompletenessFields, reply.Missing)
	assert.Contains(t, reply.Text, "아직 입력하지 않은 항목: 이름, 지역, 선호 운동, 알림 시간, 대화 톤")

	p, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "friendly", p.Tone)
	assert.Nil(t, p.Location)
}

func TestHandle_WeatherReport(t *testing.T) {
	c, _, wp, _ := newTestController(t)
	wp.tomorrow = &weather.Snapshot{Temperature: 9, Description: "보통 비"}
	send(c, "나연, 성남시 수정구")

	reply := send(c, "날씨 어때?")
	assert.Equal(t, "weather", reply.Route)
	assert.Contains(t, reply.Text, "오늘의 날씨 (성남시 수정구)")
	assert.Contains(t, reply.Text, "실외운동 추천")
	assert.Contains(t, reply.Text, "내일: 9.0°C / 보통 비")
	assert.Equal(t, []string{"Seongnam"}, wp.cities)
	assert.Equal(t, 1, wp.tomorrowCalls)
}

func TestHandle_WeatherWithoutTomorrow(t *testing.T) {
	c, _, _, _ := newTestController(t)
	send(c, "나연, 성남시 수정구")

	reply := send(c, "날씨")
	assert.NotContains(t, reply.Text, "내일")
}

func TestHandle_ProviderUnavailable(t *testing.T) {
	c, _, wp, vp := newTestController(t)
	wp.err = weather.ErrCityNotFound
	send(c, "나연, 어딘가시")

	assert.Equal(t, ProviderUnavailableText, send(c, "날씨").Text)
	assert.Equal(t, ProviderUnavailableText, send(c, "운동 추천").Text)
	assert.Empty(t, vp.categories)
}

func TestHandle_WorkoutOutdoorFriendly(t *testing.T) {
	c, _, _, vp := newTestController(t)
	send(c, "성남시 수정구, 친구")

	reply := send(c, "운동 추천해줘, 어제 운동 했어")
	assert.Equal(t, "extract", reply.Route, "commas take the extractor path")

	reply = send(c, "어제 쉬었어 운동 추천해줘")
	assert.Equal(t, "workout", reply.Route)
	assert.Contains(t, reply.Text, "실외운동 추천")
	assert.Contains(t, reply.Text, tone.Pool(tone.Friendly, "intro")[0])
	assert.Contains(t, reply.Text, tone.ActivityLineRested)
	assert.Contains(t, reply.Text, tone.WeatherLineClear)
	assert.Nil(t, reply.Video)
	assert.Empty(t, vp.categories)
}

func TestHandle_WorkoutIndoorHealingTired(t *testing.T) {
	c, _, wp, vp := newTestController(t)
	wp.current = weather.Snapshot{Temperature: 14, Description: "보통 비", Main: weather.CategoryRain}
	send(c, "성남시 수정구, 힐링")

	reply := send(c, "오늘 너무 피곤해, 그래도")
	require.Equal(t, "extract", reply.Route)

	reply = send(c, "피곤한데 운동 뭐하지")
	assert.Equal(t, "workout", reply.Route)
	assert.Contains(t, reply.Text, "실내운동 추천")
	assert.Contains(t, reply.Text, tone.ConditionLineTired)
	assert.Contains(t, reply.Text, tone.WeatherLineIndoor)
	assert.NotContains(t, reply.Text, tone.ActivityLineUnknown)
	require.NotNil(t, reply.Video)
	assert.Equal(t, []string{"스트레칭"}, vp.categories)
}

func TestHandle_HomeWorkoutMenuAndVideo(t *testing.T) {
	c, _, _, vp := newTestController(t)

	menu := send(c, "홈트 하고 싶어")
	assert.Equal(t, video.Categories, menu.Choices)

	reply := send(c, "코어")
	require.NotNil(t, reply.Video)
	assert.Equal(t, "코어 영상", reply.Video.Title)
	assert.True(t, strings.Contains(reply.Text, "https://youtu.be/코어"))
	assert.Equal(t, []string{"코어"}, vp.categories)
}

func TestHandle_ShowProfileListsMissing(t *testing.T) {
	c, _, _, _ := newTestController(t)
	send(c, "나연, 요가")

	reply := send(c, "/profile")
	assert.Equal(t, []profile.Field{profile.FieldLocation, profile.FieldNotifyTime}, reply.Missing)
	assert.Contains(t, reply.Text, "• 이름: 나연")
}

func TestHandle_StoreFailureStillReplies(t *testing.T) {
	c := NewController(failingStore{}, &fakeWeather{}, nil, nil)

	reply := c.Handle(context.Background(), Message{UserID: "u1", Text: "나연, 요가"})
	assert.Equal(t, "extract", reply.Route)
	assert.Contains(t, reply.Text, "저장하지 못했어")

	reply = c.Handle(context.Background(), Message{UserID: "u1", Text: "날씨"})
	assert.Equal(t, []profile.Field{profile.FieldLocation}, reply.Missing)
}

func TestParseYesterday(t *testing.T) {
	assert.Nil(t, parseYesterday("운동 추천"))
	assert.Nil(t, parseYesterday("어제는 비가 왔지"))

	did := parseYesterday("어제 운동 했어")
	require.NotNil(t, did)
	assert.True(t, *did)

	rested := parseYesterday("어제 못 했어")
	require.NotNil(t, rested)
	assert.False(t, *rested)
}
