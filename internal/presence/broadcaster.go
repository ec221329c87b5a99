// Package presence enforces one active guard session across devices: every
// new session announces itself on a per-guard channel and older sessions
// react by signing out.
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Announcement is the ephemeral broadcast message. It is never persisted.
type Announcement struct {
	SenderDeviceID string `json:"senderDeviceId"`
	Ts             int64  `json:"ts"`
}

// ChannelFor derives the broadcast channel key for a guard identity.
func ChannelFor(userID int64) string {
	return fmt.Sprintf("presence:guard:%d", userID)
}

// Broadcaster announces this session on subscribe and signs the session out
// when a newer announcement for the same guard arrives.
//
// Redis delivers published messages to every subscriber including the
// publisher, so self-echoes are filtered by device id. Equal timestamps lose
// to the newer claimant; two near-simultaneous logins can therefore force
// each other out. That race is accepted rather than papered over with clock
// synchronization.
type Broadcaster struct {
	logger       *slog.Logger
	client       *redis.Client
	userID       int64
	deviceID     string
	sessionStart int64

	onForceLogout func()
	logoutOnce    sync.Once

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

// NewBroadcaster constructs a Broadcaster for one session instance. The
// session-start timestamp is recorded at construction time.
func NewBroadcaster(logger *slog.Logger, client *redis.Client, userID int64, deviceID string, onForceLogout func()) *Broadcaster {
	return &Broadcaster{
		logger:        logger,
		client:        client,
		userID:        userID,
		deviceID:      deviceID,
		sessionStart:  time.Now().UnixMilli(),
		onForceLogout: onForceLogout,
	}
}

// SessionStart exposes the recorded session-start timestamp (epoch ms).
func (b *Broadcaster) SessionStart() int64 {
	return b.sessionStart
}

// Start subscribes to the per-guard channel, announces this session once the
// subscription is confirmed, and begins reacting to announcements.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.pubsub != nil {
		b.mu.Unlock()
		return fmt.Errorf("presence: already started")
	}
	pubsub := b.client.Subscribe(ctx, ChannelFor(b.userID))
	b.pubsub = pubsub
	b.done = make(chan struct{})
	b.mu.Unlock()

	// Receive blocks until the subscription is confirmed, so the announce
	// below cannot be missed by this instance's own listener.
	if _, err := pubsub.Receive(ctx); err != nil {
		b.abort(pubsub)
		return fmt.Errorf("presence: subscribe: %w", err)
	}

	payload, err := json.Marshal(Announcement{SenderDeviceID: b.deviceID, Ts: b.sessionStart})
	if err != nil {
		b.abort(pubsub)
		return err
	}
	if err := b.client.Publish(ctx, ChannelFor(b.userID), payload).Err(); err != nil {
		b.abort(pubsub)
		return fmt.Errorf("presence: announce: %w", err)
	}

	go b.listen(ctx, pubsub)
	return nil
}

// abort unwinds a failed Start. The listener never launched, so done is
// closed here; otherwise any Close would wait on it forever.
func (b *Broadcaster) abort(pubsub *redis.PubSub) {
	_ = pubsub.Close()
	b.mu.Lock()
	close(b.done)
	b.pubsub = nil
	b.done = nil
	b.mu.Unlock()
}

// Close leaves the channel. No force-logout fires after Close returns.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	pubsub, done := b.pubsub, b.done
	b.mu.Unlock()
	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	if done != nil {
		<-done
	}
	return err
}

func (b *Broadcaster) listen(ctx context.Context, pubsub *redis.PubSub) {
	defer close(b.done)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ann Announcement
			if err := json.Unmarshal([]byte(msg.Payload), &ann); err != nil {
				b.logger.Warn("presence: malformed announcement", slog.Any("error", err))
				continue
			}
			if ann.SenderDeviceID == b.deviceID {
				continue
			}
			// Newer (or simultaneous) claimant wins; this session loses.
			if ann.Ts >= b.sessionStart {
				b.logger.Info("presence: newer session detected, signing out",
					slog.Int64("user_id", b.userID),
					slog.String("device_id", b.deviceID))
				if b.onForceLogout != nil {
					b.logoutOnce.Do(b.onForceLogout)
				}
				return
			}
		}
	}
}
