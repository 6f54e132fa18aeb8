// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultBufferSize     = 100
	defaultPublishTimeout = 100 * time.Millisecond
)

// MessageBus decouples channels from the coaching loop. Publishing blocks
// for at most the publish timeout when a buffer is full, then drops.
type MessageBus struct {
	inbound        chan InboundMessage
	outbound       chan OutboundMessage
	publishTimeout time.Duration
	closed         bool
	stats          counters
	mu             sync.RWMutex
}

type counters struct {
	inbound         atomic.Uint64
	outbound        atomic.Uint64
	droppedInbound  atomic.Uint64
	droppedOutbound atomic.Uint64
}

// Stats is a snapshot of bus throughput.
type Stats struct {
	Inbound         uint64 `json:"inbound"`
	Outbound        uint64 `json:"outbound"`
	DroppedInbound  uint64 `json:"dropped_inbound"`
	DroppedOutbound uint64 `json:"dropped_outbound"`
}

type Option func(*MessageBus)

func WithBufferSize(n int) Option {
	return func(mb *MessageBus) {
		if n > 0 {
			mb.inbound = make(chan InboundMessage, n)
			mb.outbound = make(chan OutboundMessage, n)
		}
	}
}

func WithPublishTimeout(d time.Duration) Option {
	return func(mb *MessageBus) {
		if d > 0 {
			mb.publishTimeout = d
		}
	}
}

func NewMessageBus(opts ...Option) *MessageBus {
	mb := &MessageBus{
		inbound:        make(chan InboundMessage, defaultBufferSize),
		outbound:       make(chan OutboundMessage, defaultBufferSize),
		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(mb)
	}
	return mb
}

// PublishInbound reports whether the message was queued.
func (mb *MessageBus) PublishInbound(msg InboundMessage) bool {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.closed {
		return false
	}
	if publish(mb.inbound, msg, mb.publishTimeout) {
		mb.stats.inbound.Add(1)
		return true
	}
	mb.stats.droppedInbound.Add(1)
	return false
}

func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	return consume(ctx, mb.inbound)
}

// PublishOutbound reports whether the message was queued.
func (mb *MessageBus) PublishOutbound(msg OutboundMessage) bool {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.closed {
		return false
	}
	if publish(mb.outbound, msg, mb.publishTimeout) {
		mb.stats.outbound.Add(1)
		return true
	}
	mb.stats.droppedOutbound.Add(1)
	return false
}

func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	return consume(ctx, mb.outbound)
}

func publish[T any](ch chan T, msg T, timeout time.Duration) bool {
	select {
	case ch <- msg:
		return true
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- msg:
		return true
	case <-timer.C:
		return false
	}
}

func consume[T any](ctx context.Context, ch chan T) (T, bool) {
	var zero T
	select {
	case msg, ok := <-ch:
		if !ok {
			return zero, false
		}
		return msg, true
	case <-ctx.Done():
		return zero, false
	}
}

func (mb *MessageBus) Close() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return
	}
	mb.closed = true
	close(mb.inbound)
	close(mb.outbound)
}

func (mb *MessageBus) Stats() Stats {
	return Stats{
		Inbound:         mb.stats.inbound.Load(),
		Outbound:        mb.stats.outbound.Load(),
		DroppedInbound:  mb.stats.droppedInbound.Load(),
		DroppedOutbound: mb.stats.droppedOutbound.Load(),
	}
}
