// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

// Package coach routes chat messages to profile, weather and workout
// handlers.
package coach

import (
	"context"
	"strings"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/dotsetgreg/fitcoach/pkg/video"
	"github.com/dotsetgreg/fitcoach/pkg/weather"
	"github.com/google/uuid"
)

// Message is one inbound chat message.
type Message struct {
	UserID string
	Text   string
}

// Reply is the controller's answer. Missing and Choices are hints for a
// quick-reply picker; Video is an optional recommendation.
type Reply struct {
	Route   string
	Text    string
	Missing []profile.Field
	Choices []string
	Video   *video.Video
}

type route struct {
	name   string
	match  func(text string) bool
	handle func(ctx context.Context, t *turn) Reply
}

// turn is the per-message state handed to a route handler.
type turn struct {
	id      string
	msg     Message
	text    string
	profile *profile.Profile
}

type Controller struct {
	store    profile.Store
	weather  weather.Provider
	videos   video.Provider
	renderer *tone.Renderer
	routes   []route
	now      func() time.Time
}

func NewController(store profile.Store, weatherProvider weather.Provider, videos video.Provider, renderer *tone.Renderer) *Controller {
	if videos == nil {
		videos = video.NewStatic(nil)
	}
	if renderer == nil {
		renderer = tone.NewRenderer(nil)
	}
	c := &Controller{
		store:    store,
		weather:  weatherProvider,
		videos:   videos,
		renderer: renderer,
		now:      time.Now,
	}
	c.routes = c.buildRoutes()
	return c
}

// buildRoutes returns the routing table. Order is priority: the first
// matching route handles the message.
func (c *Controller) buildRoutes() []route {
	return []route{
		{name: "greeting", match: greetingCommand.match, handle: c.handleGreeting},
		{name: "reset", match: resetCommand.match, handle: c.handleReset},
		{name: "profile", match: containsFold(profileKeywords), handle: c.handleShowProfile},
		{name: "home_workout", match: isHomeWorkoutRequest, handle: c.handleHomeWorkoutMenu},
		{name: "video_category", match: video.IsCategory, handle: c.handleVideoCategory},
		{name: "extract", match: isFieldList, handle: c.handleExtract},
		{name: "weather", match: containsFold(weatherKeywords), handle: c.handleWeather},
		{name: "workout", match: containsFold(workoutKeywords), handle: c.handleWorkout},
		{name: "fallback", match: func(string) bool { return true }, handle: c.handleFallback},
	}
}

// Routes lists route names in priority order.
func (c *Controller) Routes() []string {
	names := make([]string, len(c.routes))
	for i, r := range c.routes {
		names[i] = r.name
	}
	return names
}

// Handle routes one message and always produces a reply.
func (c *Controller) Handle(ctx context.Context, msg Message) Reply {
	started := c.now()
	t := &turn{
		id:   uuid.NewString(),
		msg:  msg,
		text: strings.TrimSpace(msg.Text),
	}
	t.profile = c.loadProfile(ctx, msg.UserID)
	t.profile.Condition = tone.ParseCondition(t.text)

	for _, r := range c.routes {
		if !r.match(t.text) {
			continue
		}
		reply := r.handle(ctx, t)
		reply.Route = r.name
		logger.InfoCF("coach", "Handled message", map[string]any{
			"turn_id":     t.id,
			"user_id":     msg.UserID,
			"route":       r.name,
			"missing":     len(reply.Missing),
			"duration_ms": c.now().Sub(started).Milliseconds(),
		})
		return reply
	}
	return Reply{Route: "none", Text: helpText}
}

// loadProfile never fails: a store error degrades to an in-memory default.
func (c *Controller) loadProfile(ctx context.Context, userID string) *profile.Profile {
	p, err := c.store.Get(ctx, userID)
	if err != nil {
		logger.ErrorCF("coach", "Failed to load profile", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return &profile.Profile{UserID: userID, Tone: string(tone.Default)}
	}
	return p
}

func containsFold(keywords []string) func(string) bool {
	return func(text string) bool {
		lower := strings.ToLower(text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}
}

// command matches a message that is only a keyword, optionally preceded by
// one of objects and followed by one of endings.
type command struct {
	keywords []string
	objects  []string
	endings  []string
}

func (c command) match(text string) bool {
	t := strings.TrimSpace(strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), "!?.~ "))
	candidates := []string{t}
	for _, obj := range c.objects {
		if rest, ok := strings.CutPrefix(t, obj); ok {
			candidates = append(candidates, strings.TrimSpace(rest))
		}
	}
	for _, cand := range candidates {
		for _, kw := range c.keywords {
			rest, ok := strings.CutPrefix(cand, kw)
			if !ok {
				continue
			}
			for _, end := range c.endings {
				if strings.TrimSpace(rest) == end {
					return true
				}
			}
		}
	}
	return false
}
