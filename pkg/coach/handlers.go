// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotsetgreg/fitcoach/pkg/extract"
	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/dotsetgreg/fitcoach/pkg/utils"
	"github.com/dotsetgreg/fitcoach/pkg/video"
	"github.com/dotsetgreg/fitcoach/pkg/weather"
	"golang.org/x/sync/errgroup"
)

var (
	// Greeting and reset are whole-message commands so that sentences like
	// "오늘 운동 시작할게" or "톤 변경, 힐링" reach the later routes.
	greetingCommand = command{
		keywords: []string{"/start", "안녕", "시작", "hello", "hi"},
		endings:  []string{"", "하세요", "하십니까"},
	}
	resetCommand = command{
		keywords: []string{"/reset", "초기화", "리셋", "변경"},
		objects:  []string{"내 정보", "내정보", "정보", "프로필"},
		endings:  []string{"", "해", "해줘", "해 줘", "해주세요", "할래", "할게", "하기", "하자"},
	}
	profileKeywords  = []string{"/profile", "내 정보", "내정보", "프로필"}
	weatherKeywords  = []string{"날씨", "weather"}
	workoutKeywords  = []string{"운동", "workout"}

	homeWorkoutKeyword = "홈트"

	yesterdayRestMarkers = []string{"안 했", "안했", "못 했", "못했", "쉬었", "쉼"}
	yesterdayDidMarkers  = []string{"했", "운동함"}
)

const (
	onboardingText = "안녕! 나는 날씨 맞춤 운동코치봇이야 🏃‍♀️\n" +
		"쉼표로 구분해서 알려주면 한 번에 기억할게!\n" +
		"예: 나연, 성남시 수정구, 달리기, 17시, 코치\n\n" +
		"그 다음 '날씨' 또는 '운동'이라고 말해줘!"

	helpText = "알겠어! '날씨' 또는 '운동'이라고 말해줘 🙂\n" +
		"'내 정보'로 프로필을 보고, '홈트'로 운동 영상을 추천받을 수 있어."

	// ProviderUnavailableText is the single apology for any weather failure.
	ProviderUnavailableText = "⚠️ 지금은 날씨 정보를 가져올 수 없어. 잠시 후 다시 시도해줘!"

	needLocationText = "먼저 지역을 알려줘! 📍\n예: 성남시 수정구, 또는 '나연, 서울시, 요가'처럼 쉼표로 함께 적어줘."

	noFieldsText = "음, 어떤 정보인지 잘 모르겠어 🤔\n예: 나연, 성남시 수정구, 달리기, 17시, 코치"
)

// isHomeWorkoutRequest matches "홈트" only in single-fragment messages so
// that field lists mentioning 홈트 as an exercise reach the extractor.
func isHomeWorkoutRequest(text string) bool {
	return strings.Contains(text, homeWorkoutKeyword) && !extract.HasDelimiter(text)
}

func isFieldList(text string) bool {
	return extract.HasDelimiter(text)
}

func (c *Controller) handleGreeting(_ context.Context, t *turn) Reply {
	return Reply{Text: onboardingText, Missing: profile.Missing(t.profile)}
}

func (c *Controller) handleReset(ctx context.Context, t *turn) Reply {
	p, err := c.store.Reset(ctx, t.msg.UserID)
	if err != nil {
		logger.ErrorCF("coach", "Failed to reset profile", map[string]any{
			"turn_id": t.id,
			"user_id": t.msg.UserID,
			"error":   err.Error(),
		})
		p = &profile.Profile{UserID: t.msg.UserID}
	}
	text := "🔄 정보를 초기화했어! 처음부터 다시 알려줘.\n\n" + profile.Summary(p, c.now())
	return Reply{Text: text, Missing: profile.Missing(p)}
}

func (c *Controller) handleShowProfile(_ context.Context, t *turn) Reply {
	missing := profile.Missing(t.profile)
	text := profile.Summary(t.profile, c.now())
	if len(missing) > 0 {
		text += "\n아래에서 항목을 골라 알려줘 👇"
	}
	return Reply{Text: text, Missing: missing}
}

func (c *Controller) handleHomeWorkoutMenu(_ context.Context, _ *turn) Reply {
	return Reply{
		Text:    "🏠 어떤 홈트를 해볼까? 부위를 골라줘!\n" + strings.Join(video.Categories, " · "),
		Choices: append([]string(nil), video.Categories...),
	}
}

func (c *Controller) handleVideoCategory(ctx context.Context, t *turn) Reply {
	category := strings.TrimSpace(t.text)
	v := c.videos.Recommend(ctx, category)
	text := fmt.Sprintf("🎬 %s 추천 영상이야!\n%s\n%s", category, v.Title, v.Link)
	return Reply{Text: text, Video: &v}
}

func (c *Controller) handleExtract(ctx context.Context, t *turn) Reply {
	updates := extract.Extract(t.text)
	if len(updates) == 0 {
		return Reply{Text: noFieldsText, Missing: profile.Missing(t.profile)}
	}

	p, err := c.store.UpdateFields(ctx, t.msg.UserID, updates)
	if err != nil {
		logger.ErrorCF("coach", "Failed to save profile fields", map[string]any{
			"turn_id": t.id,
			"user_id": t.msg.UserID,
			"fields":  updates.Fields(),
			"error":   err.Error(),
		})
		return Reply{Text: "⚠️ 정보를 저장하지 못했어. 잠시 후 다시 알려줘!\n\n" + profile.Summary(t.profile, c.now()), Missing: profile.Missing(t.profile)}
	}

	labels := make([]string, 0, len(updates))
	for _, f := range updates.Fields() {
		labels = append(labels, profile.FieldLabel(f))
	}
	text := fmt.Sprintf("✅ 저장했어! (%s)\n\n%s", strings.Join(labels, ", "), profile.Summary(p, c.now()))
	return Reply{Text: text, Missing: profile.Missing(p)}
}

func (c *Controller) handleWeather(ctx context.Context, t *turn) Reply {
	if !t.profile.HasLocation() {
		return needLocation()
	}
	place := *t.profile.Location
	cityKey := weather.ResolveCity(place)

	var (
		now      weather.Snapshot
		tomorrow *weather.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := c.weather.Current(gctx, cityKey)
		if err != nil {
			return err
		}
		now = snap
		return nil
	})
	if fp, ok := c.weather.(weather.ForecastProvider); ok {
		g.Go(func() error {
			snap, err := fp.Tomorrow(gctx, cityKey)
			if err != nil {
				logger.DebugCF("coach", "Tomorrow forecast unavailable", map[string]any{
					"turn_id": t.id,
					"city":    cityKey,
					"error":   err.Error(),
				})
				return nil
			}
			tomorrow = &snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return c.unavailable(t, cityKey, err)
	}

	rec := weather.Classify(now.Description, now.Temperature)
	return Reply{Text: weather.FormatReport(place, now, rec, tomorrow)}
}

func (c *Controller) handleWorkout(ctx context.Context, t *turn) Reply {
	if !t.profile.HasLocation() {
		return needLocation()
	}
	place := *t.profile.Location
	cityKey := weather.ResolveCity(place)

	snap, err := c.weather.Current(ctx, cityKey)
	if err != nil {
		return c.unavailable(t, cityKey, err)
	}
	rec := weather.Classify(snap.Description, snap.Temperature)

	temp := snap.Temperature
	msg := c.renderer.Render(tone.Input{
		Tone:               t.profile.ToneValue(),
		Weather:            snap.Main,
		Temperature:        &temp,
		Outdoor:            rec.IsOutdoor(),
		ExercisedYesterday: parseYesterday(t.text),
		Condition:          t.profile.Condition,
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %.1f°C / %s\n", weather.Icon(snap.Description), place, snap.Temperature, snap.Description)
	fmt.Fprintf(&b, "%s\n%s\n\n", rec.Headline, rec.Suggestion)
	b.WriteString(msg)

	reply := Reply{Text: b.String()}
	if !rec.IsOutdoor() {
		category := "전신"
		if t.profile.Condition == tone.ConditionTired {
			category = "스트레칭"
		}
		v := c.videos.Recommend(ctx, category)
		reply.Video = &v
	}
	return reply
}

func (c *Controller) handleFallback(_ context.Context, _ *turn) Reply {
	return Reply{Text: helpText}
}

func (c *Controller) unavailable(t *turn, cityKey string, err error) Reply {
	logger.WarnCF("coach", "Weather provider unavailable", map[string]any{
		"turn_id": t.id,
		"user_id": t.msg.UserID,
		"city":    cityKey,
		"error":   err.Error(),
	})
	return Reply{Text: ProviderUnavailableText}
}

func needLocation() Reply {
	return Reply{Text: needLocationText, Missing: []profile.Field{profile.FieldLocation}}
}

// parseYesterday reads "did you exercise yesterday" from free text. Nil
// means the message does not say.
func parseYesterday(text string) *bool {
	if !strings.Contains(text, "어제") {
		return nil
	}
	var v bool
	switch {
	case utils.ContainsAny(text, yesterdayRestMarkers):
		v = false
	case utils.ContainsAny(text, yesterdayDidMarkers):
		v = true
	default:
		return nil
	}
	return &v
}
