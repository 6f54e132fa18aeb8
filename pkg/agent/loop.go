// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package agent

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/dotsetgreg/fitcoach/pkg/bus"
	"github.com/dotsetgreg/fitcoach/pkg/coach"
	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/dotsetgreg/fitcoach/pkg/utils"
)

// Handler answers one chat message. *coach.Controller implements it.
type Handler interface {
	Handle(ctx context.Context, msg coach.Message) coach.Reply
}

// Loop moves messages from the bus through the coaching handler and back.
type Loop struct {
	bus       *bus.MessageBus
	handler   Handler
	running   atomic.Bool
	processed atomic.Uint64
}

func NewLoop(msgBus *bus.MessageBus, handler Handler) *Loop {
	return &Loop{bus: msgBus, handler: handler}
}

// Run consumes inbound messages until ctx is done, Stop is called or the
// bus closes.
func (l *Loop) Run(ctx context.Context) error {
	l.running.Store(true)
	defer l.running.Store(false)

	for l.running.Load() {
		msg, ok := l.bus.ConsumeInbound(ctx)
		if !ok {
			return nil
		}
		out := l.process(ctx, msg)
		if out.Content == "" {
			continue
		}
		l.bus.PublishOutbound(out)
	}
	return nil
}

func (l *Loop) Stop() {
	l.running.Store(false)
}

func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Processed is the number of messages handled since start.
func (l *Loop) Processed() uint64 {
	return l.processed.Load()
}

// ProcessDirect handles content outside the bus, for the local chat REPL.
func (l *Loop) ProcessDirect(ctx context.Context, content, userID string) bus.OutboundMessage {
	return l.process(ctx, bus.InboundMessage{
		Channel:  "cli",
		SenderID: userID,
		ChatID:   "direct",
		Content:  content,
	})
}

func (l *Loop) process(ctx context.Context, msg bus.InboundMessage) bus.OutboundMessage {
	logger.InfoCF("agent", "Processing message", map[string]any{
		"channel": msg.Channel,
		"chat_id": msg.ChatID,
		"user_id": msg.UserID(),
		"preview": utils.Truncate(msg.Content, 80),
	})

	if strings.TrimSpace(msg.Content) == "" {
		return bus.OutboundMessage{Channel: msg.Channel, ChatID: msg.ChatID}
	}

	reply := l.handler.Handle(ctx, coach.Message{UserID: msg.UserID(), Text: msg.Content})
	l.processed.Add(1)
	return ToOutbound(reply, msg.Channel, msg.ChatID)
}

// ToOutbound converts a coaching reply into a transport message. Missing
// fields become prompt buttons; choices become buttons that answer with
// their own label.
func ToOutbound(reply coach.Reply, channel, chatID string) bus.OutboundMessage {
	out := bus.OutboundMessage{
		Channel: channel,
		ChatID:  chatID,
		Content: reply.Text,
	}
	for _, f := range reply.Missing {
		out.QuickReplies = append(out.QuickReplies, bus.QuickReply{
			Label: profile.FieldLabel(f),
			Reply: profile.FieldPrompt(f),
		})
	}
	for _, choice := range reply.Choices {
		out.QuickReplies = append(out.QuickReplies, bus.QuickReply{
			Label:  choice,
			Reply:  choice,
			Submit: true,
		})
	}
	if reply.Video != nil {
		out.Embed = &bus.Embed{
			Title:    reply.Video.Title,
			URL:      reply.Video.Link,
			ImageURL: reply.Video.Thumbnail,
		}
	}
	return out
}
