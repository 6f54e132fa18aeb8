// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package bus

import "strings"

// InboundMessage is a chat message received from a channel.
type InboundMessage struct {
	Channel  string
	SenderID string
	ChatID   string
	Content  string
	Metadata map[string]string
}

// UserID is the profile key for the sender: the platform id without any
// "|username" suffix.
func (m InboundMessage) UserID() string {
	id, _, _ := strings.Cut(m.SenderID, "|")
	return id
}

// QuickReply is a button. When pressed, Reply is shown to the user, or sent
// back as the user's own message when Submit is set.
type QuickReply struct {
	Label  string
	Reply  string
	Submit bool
}

// Embed is a rich link preview, used for video recommendations.
type Embed struct {
	Title    string
	URL      string
	ImageURL string
}

type OutboundMessage struct {
	Channel      string
	ChatID       string
	Content      string
	QuickReplies []QuickReply
	Embed        *Embed
}
