// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://api.openweathermap.org/data/2.5"
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

// OpenWeatherMap is a Provider backed by the OpenWeatherMap REST API.
type OpenWeatherMap struct {
	apiKey  string
	apiBase string
	lang    string
	client  *http.Client
	now     func() time.Time
}

type OpenWeatherMapOptions struct {
	APIKey  string
	APIBase string
	Lang    string
	Timeout time.Duration
}

func NewOpenWeatherMap(opts OpenWeatherMapOptions) *OpenWeatherMap {
	base := strings.TrimRight(opts.APIBase, "/")
	if base == "" {
		base = defaultAPIBase
	}
	lang := opts.Lang
	if lang == "" {
		lang = "kr"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenWeatherMap{
		apiKey:  opts.APIKey,
		apiBase: base,
		lang:    lang,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmMain struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
}

type owmCurrentResponse struct {
	Name    string         `json:"name"`
	Weather []owmCondition `json:"weather"`
	Main    owmMain        `json:"main"`
}

type owmForecastResponse struct {
	List []struct {
		DtTxt   string         `json:"dt_txt"`
		Weather []owmCondition `json:"weather"`
		Main    owmMain        `json:"main"`
	} `json:"list"`
}

func (p *OpenWeatherMap) Current(ctx context.Context, cityKey string) (Snapshot, error) {
	var resp owmCurrentResponse
	if err := p.get(ctx, "weather", cityKey, &resp); err != nil {
		return Snapshot{}, err
	}
	return toSnapshot(cityKey, resp.Weather, resp.Main)
}

// Tomorrow returns the forecast slot closest to local noon tomorrow, or the
// slot roughly 24 hours ahead when none falls on tomorrow. Forecast
// timestamps (dt_txt) are UTC.
func (p *OpenWeatherMap) Tomorrow(ctx context.Context, cityKey string) (Snapshot, error) {
	var resp owmForecastResponse
	if err := p.get(ctx, "forecast", cityKey, &resp); err != nil {
		return Snapshot{}, err
	}
	if len(resp.List) == 0 {
		return Snapshot{}, fmt.Errorf("%w: empty forecast", ErrUnavailable)
	}

	now := p.now()
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	idx, best := -1, 0
	for i, item := range resp.List {
		ts, err := time.ParseInLocation("2006-01-02 15:04:05", item.DtTxt, time.UTC)
		if err != nil {
			continue
		}
		local := ts.In(now.Location())
		if local.Format("2006-01-02") != tomorrow {
			continue
		}
		dist := local.Hour()*60 + local.Minute() - 12*60
		if dist < 0 {
			dist = -dist
		}
		if idx < 0 || dist < best {
			idx, best = i, dist
		}
	}
	if idx < 0 {
		idx = 0
		if len(resp.List) > 8 {
			idx = 8
		}
	}
	item := resp.List[idx]
	return toSnapshot(cityKey, item.Weather, item.Main)
}

func (p *OpenWeatherMap) get(ctx context.Context, endpoint, cityKey string, out any) error {
	q := url.Values{}
	q.Set("q", cityKey)
	q.Set("appid", p.apiKey)
	q.Set("units", "metric")
	q.Set("lang", p.lang)
	reqURL := fmt.Sprintf("%s/%s?%s", p.apiBase, endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrCityNotFound, cityKey)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func toSnapshot(city string, conds []owmCondition, main owmMain) (Snapshot, error) {
	if len(conds) == 0 || main.Temp == nil {
		return Snapshot{}, fmt.Errorf("%w: incomplete reading", ErrUnavailable)
	}
	snap := Snapshot{
		City:        city,
		Temperature: round1(*main.Temp),
		Description: conds[0].Description,
		Main:        ParseCategory(conds[0].Main),
	}
	if main.FeelsLike != nil {
		v := round1(*main.FeelsLike)
		snap.FeelsLike = &v
	}
	return snap, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
