package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "he...", Truncate("hello world", 5))
	assert.Equal(t, "안녕하...", Truncate("안녕하세요 반가워요", 6))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestFirstContained(t *testing.T) {
	got, ok := FirstContained("오늘 날씨 어때", []string{"운동", "날씨"})
	assert.True(t, ok)
	assert.Equal(t, "날씨", got)

	_, ok = FirstContained("hello", []string{"", "bye"})
	assert.False(t, ok)
	assert.True(t, ContainsAny("홈트 추천", []string{"홈트"}))
}
