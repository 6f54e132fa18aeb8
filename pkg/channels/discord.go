// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package channels

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/dotsetgreg/fitcoach/pkg/bus"
	"github.com/dotsetgreg/fitcoach/pkg/config"
	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/utils"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	sendTimeout           = 10 * time.Second
	typingRefreshInterval = 8 * time.Second
	messageLimit          = 1900
	buttonsPerRow         = 5
	maxButtonRows         = 5
	buttonLabelLimit      = 80
	pendingButtonCapacity = 1024
	buttonIDPrefix        = "fc:"
)

type DiscordChannel struct {
	*BaseChannel
	session  *discordgo.Session
	buttons  *lru.Cache[string, bus.QuickReply]
	typing   map[string]*typingSession
	typingMu sync.Mutex
}

type typingSession struct {
	pending int
	cancel  context.CancelFunc
}

func NewDiscordChannel(cfg config.DiscordConfig, messageBus *bus.MessageBus) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return newDiscordChannel(session, messageBus, cfg.AllowFrom)
}

func newDiscordChannel(session *discordgo.Session, messageBus *bus.MessageBus, allowFrom []string) (*DiscordChannel, error) {
	buttons, err := lru.New[string, bus.QuickReply](pendingButtonCapacity)
	if err != nil {
		return nil, fmt.Errorf("create button cache: %w", err)
	}
	return &DiscordChannel{
		BaseChannel: NewBaseChannel("discord", messageBus, allowFrom),
		session:     session,
		buttons:     buttons,
		typing:      make(map[string]*typingSession),
	}, nil
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	logger.InfoC("discord", "Starting Discord bot")

	c.session.AddHandler(c.handleMessage)
	c.session.AddHandler(c.handleInteraction)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	c.setRunning(true)

	botUser, err := c.session.User("@me")
	if err != nil {
		return fmt.Errorf("failed to get bot user: %w", err)
	}
	logger.InfoCF("discord", "Discord bot connected", map[string]any{
		"username": botUser.Username,
		"user_id":  botUser.ID,
	})
	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	logger.InfoC("discord", "Stopping Discord bot")
	c.setRunning(false)
	c.stopAllTyping()

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

// Send delivers text in chunks. Buttons and the embed ride on the last
// chunk.
func (c *DiscordChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("discord bot not running")
	}
	channelID := msg.ChatID
	if channelID == "" {
		return fmt.Errorf("channel ID is empty")
	}
	defer c.endTyping(channelID)

	if msg.Content == "" && msg.Embed == nil && len(msg.QuickReplies) == 0 {
		return nil
	}

	chunks := splitMessage(msg.Content, messageLimit)
	if len(chunks) == 0 {
		chunks = []string{""}
	}
	for i, chunk := range chunks {
		send := &discordgo.MessageSend{Content: chunk}
		if i == len(chunks)-1 {
			send.Components = c.buildComponents(msg.QuickReplies)
			if embed := buildEmbed(msg.Embed); embed != nil {
				send.Embeds = []*discordgo.MessageEmbed{embed}
			}
		}
		if err := c.sendComplex(ctx, channelID, send); err != nil {
			return err
		}
	}
	return nil
}

// buildComponents turns quick replies into button rows. Each button gets a
// random custom id whose payload is kept in the LRU until clicked or evicted.
func (c *DiscordChannel) buildComponents(replies []bus.QuickReply) []discordgo.MessageComponent {
	if len(replies) == 0 {
		return nil
	}
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for _, qr := range replies {
		if len(rows) == maxButtonRows {
			break
		}
		id := buttonIDPrefix + uuid.NewString()
		c.buttons.Add(id, qr)
		row = append(row, discordgo.Button{
			Label:    utils.Truncate(qr.Label, buttonLabelLimit),
			Style:    discordgo.SecondaryButton,
			CustomID: id,
		})
		if len(row) == buttonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 && len(rows) < maxButtonRows {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func buildEmbed(e *bus.Embed) *discordgo.MessageEmbed {
	if e == nil {
		return nil
	}
	embed := &discordgo.MessageEmbed{Title: e.Title, URL: e.URL}
	if e.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	return embed
}

// resolveButton returns the payload of a clicked button.
func (c *DiscordChannel) resolveButton(customID string) (bus.QuickReply, bool) {
	if !strings.HasPrefix(customID, buttonIDPrefix) {
		return bus.QuickReply{}, false
	}
	return c.buttons.Get(customID)
}

// splitMessage cuts content into pieces of at most limit runes, preferring
// newline and then space boundaries in the last part of each window.
func splitMessage(content string, limit int) []string {
	var out []string
	content = strings.TrimSpace(content)
	for content != "" {
		if utf8.RuneCountInString(content) <= limit {
			out = append(out, content)
			break
		}
		runes := []rune(content)
		window := string(runes[:limit])
		cut := lastIndexInTail(window, "\n", limit/5)
		if cut <= 0 {
			cut = lastIndexInTail(window, " ", limit/10)
		}
		if cut <= 0 {
			cut = len(window)
		}
		out = append(out, strings.TrimSpace(content[:cut]))
		content = strings.TrimSpace(content[cut:])
	}
	return out
}

// lastIndexInTail finds the last sep within the final tailRunes runes of s.
func lastIndexInTail(s, sep string, tailRunes int) int {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return -1
	}
	if utf8.RuneCountInString(s[idx:]) > tailRunes {
		return -1
	}
	return idx
}

func (c *DiscordChannel) sendComplex(ctx context.Context, channelID string, send *discordgo.MessageSend) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.session.ChannelMessageSendComplex(channelID, send)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send discord message: %w", err)
		}
		return nil
	case <-sendCtx.Done():
		return fmt.Errorf("send message timeout: %w", sendCtx.Err())
	}
}

func (c *DiscordChannel) sendTyping(channelID string) {
	if channelID == "" || c.session == nil {
		return
	}
	if err := c.session.ChannelTyping(channelID); err != nil {
		logger.ErrorCF("discord", "Failed to send typing indicator", map[string]any{
			"error": err.Error(),
		})
	}
}

func (c *DiscordChannel) beginTyping(channelID string) {
	if channelID == "" {
		return
	}

	c.typingMu.Lock()
	if sess, ok := c.typing[channelID]; ok {
		sess.pending++
		c.typingMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.typing[channelID] = &typingSession{pending: 1, cancel: cancel}
	c.typingMu.Unlock()

	c.sendTyping(channelID)

	go func() {
		ticker := time.NewTicker(typingRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !c.IsRunning() {
					return
				}
				c.sendTyping(channelID)
			}
		}
	}()
}

func (c *DiscordChannel) endTyping(channelID string) {
	if channelID == "" {
		return
	}

	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	sess, ok := c.typing[channelID]
	if !ok {
		return
	}
	sess.pending--
	if sess.pending > 0 {
		return
	}
	delete(c.typing, channelID)
	sess.cancel()
}

func (c *DiscordChannel) stopAllTyping() {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	for channelID, sess := range c.typing {
		sess.cancel()
		delete(c.typing, channelID)
	}
}

func (c *DiscordChannel) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if !c.IsAllowed(m.Author.ID) {
		logger.DebugCF("discord", "Message rejected by allowlist", map[string]any{
			"user_id": m.Author.ID,
		})
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	logger.DebugCF("discord", "Received message", map[string]any{
		"sender_id": m.Author.ID,
		"preview":   utils.Truncate(content, 50),
	})

	c.publish(m.Author.ID, m.ChannelID, content, map[string]string{
		"message_id": m.ID,
		"username":   m.Author.Username,
		"guild_id":   m.GuildID,
		"is_dm":      fmt.Sprintf("%t", m.GuildID == ""),
	})
}

func (c *DiscordChannel) publish(senderID, channelID, content string, metadata map[string]string) {
	c.beginTyping(channelID)
	if !c.HandleMessage(senderID, channelID, content, metadata) {
		c.endTyping(channelID)
		logger.WarnCF("discord", "Inbound message not queued", map[string]any{
			"sender_id": senderID,
		})
	}
}

// handleInteraction answers quick-reply button clicks.
func (c *DiscordChannel) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user == nil || !c.IsAllowed(user.ID) {
		return
	}

	qr, ok := c.resolveButton(i.MessageComponentData().CustomID)
	if !ok {
		c.respond(s, i, "이 버튼은 만료됐어. 다시 말해줘! 🙏", true)
		return
	}
	if !qr.Submit {
		c.respond(s, i, qr.Reply, false)
		return
	}

	c.respond(s, i, "👉 "+qr.Label, false)
	c.publish(user.ID, i.ChannelID, qr.Reply, map[string]string{
		"username":    user.Username,
		"guild_id":    i.GuildID,
		"interaction": "button",
	})
}

func (c *DiscordChannel) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logger.WarnCF("discord", "Failed to answer button", map[string]any{"error": err.Error()})
	}
}
