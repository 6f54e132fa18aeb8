package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMissing_TreatsBlankAsUnset(t *testing.T) {
	p := &Profile{
		UserID:   "u1",
		Name:     strPtr("  "),
		Location: strPtr("성남시 수정구"),
		Tone:     "friendly",
	}
	assert.Equal(t, []Field{FieldName, FieldExercise, FieldNotifyTime}, Missing(p))
	assert.False(t, Complete(p))
	assert.Equal(t, CompletenessFields, Missing(nil))
}

func TestSummary(t *testing.T) {
	now := time.Date(2026, 10, 18, 18, 30, 0, 0, time.Local)
	p := &Profile{
		UserID:     "u1",
		Name:       strPtr("나연"),
		Location:   strPtr("성남시 수정구"),
		Exercise:   strPtr("달리기"),
		NotifyTime: strPtr("17:00"),
		Tone:       "coach",
	}

	out := Summary(p, now)
	assert.Contains(t, out, "• 이름: 나연")
	assert.Contains(t, out, "• 대화 톤: 코치 모드")
	assert.Contains(t, out, "다음 알림 예정: 10/19 17:00")
	assert.Contains(t, out, "모든 정보가 채워졌어")

	empty := Summary(&Profile{UserID: "u2"}, now)
	assert.Contains(t, empty, "• 이름: ❌ 미입력")
	assert.Contains(t, empty, "• 대화 톤: ❌ 미입력")
	assert.Contains(t, empty, "아직 입력하지 않은 항목: 이름, 지역, 선호 운동, 알림 시간, 대화 톤")
	assert.NotContains(t, empty, "다음 알림")
}

func TestDailyCron(t *testing.T) {
	expr, err := DailyCron("07:30")
	require.NoError(t, err)
	assert.Equal(t, "30 7 * * *", expr)

	_, err = DailyCron("7시")
	assert.Error(t, err)
}

func TestNextNotification(t *testing.T) {
	now := time.Date(2026, 10, 18, 6, 0, 0, 0, time.Local)
	next, err := NextNotification("07:00", now)
	require.NoError(t, err)
	want := time.Date(2026, 10, 18, 7, 0, 0, 0, time.Local)
	assert.True(t, want.Equal(next), "got %s", next)
}

func TestFieldPrompt(t *testing.T) {
	for _, f := range CompletenessFields {
		assert.NotEmpty(t, FieldPrompt(f))
		assert.NotEqual(t, string(f), FieldLabel(f))
	}
}
