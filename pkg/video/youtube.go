// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package video

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/logger"
)

const (
	defaultAPIBase    = "https://www.googleapis.com/youtube/v3"
	defaultRegionCode = "KR"
	defaultMaxResults = 15
	defaultTimeout    = 5 * time.Second
)

type YouTubeOptions struct {
	APIKey     string
	APIBase    string
	RegionCode string
	MaxResults int
	Timeout    time.Duration
	Rand       RandSource
}

// YouTube searches the YouTube Data API for popular videos of a category.
type YouTube struct {
	apiKey     string
	apiBase    string
	regionCode string
	maxResults int
	client     *http.Client
	rand       RandSource
}

func NewYouTube(opts YouTubeOptions) *YouTube {
	y := &YouTube{
		apiKey:     opts.APIKey,
		apiBase:    strings.TrimRight(opts.APIBase, "/"),
		regionCode: opts.RegionCode,
		maxResults: opts.MaxResults,
		rand:       opts.Rand,
	}
	if y.apiBase == "" {
		y.apiBase = defaultAPIBase
	}
	if y.regionCode == "" {
		y.regionCode = defaultRegionCode
	}
	if y.maxResults <= 0 {
		y.maxResults = defaultMaxResults
	}
	if y.rand == nil {
		y.rand = globalRand{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	y.client = &http.Client{Timeout: timeout}
	return y
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Recommend returns a random popular video for category, or a fallback
// video when the search fails or comes back empty.
func (y *YouTube) Recommend(ctx context.Context, category string) Video {
	videos, err := y.Search(ctx, category)
	if err != nil {
		logger.WarnCF("video", "Video search failed, using fallback", map[string]any{
			"category": category,
			"error":    err.Error(),
		})
		return pick(y.rand, Fallback)
	}
	if len(videos) == 0 {
		return pick(y.rand, Fallback)
	}
	return pick(y.rand, videos)
}

// Search runs a single search for one random keyword of category.
func (y *YouTube) Search(ctx context.Context, category string) ([]Video, error) {
	keywords := Keywords(category)
	keyword := keywords[y.rand.IntN(len(keywords))]

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("order", "viewCount")
	q.Set("q", keyword)
	q.Set("regionCode", y.regionCode)
	q.Set("maxResults", strconv.Itoa(y.maxResults))
	q.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.apiBase+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	videos := make([]Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.ID.VideoID == "" {
			continue
		}
		v := Video{
			Title: item.Snippet.Title,
			Link:  "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		}
		for _, size := range []string{"medium", "high", "default"} {
			if th, ok := item.Snippet.Thumbnails[size]; ok && th.URL != "" {
				v.Thumbnail = th.URL
				break
			}
		}
		videos = append(videos, v)
	}
	return videos, nil
}
