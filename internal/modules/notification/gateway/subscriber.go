package gateway

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"evergreenrx.com/pharmanotify/pkg/wire"
	"github.com/redis/go-redis/v9"
)

const channelPattern = "notifications:*"

// Subscriber bridges Redis pub/sub into hub rooms so that every server
// instance delivers the same notifications regardless of which instance
// persisted them.
type Subscriber struct {
	hub         *Hub
	redisClient *redis.Client
}

func NewSubscriber(hub *Hub, redisClient *redis.Client) *Subscriber {
	return &Subscriber{hub: hub, redisClient: redisClient}
}

// Run blocks forwarding messages until ctx is cancelled. Callers start it in
// a goroutine at boot.
func (s *Subscriber) Run(ctx context.Context) {
	pubsub := s.redisClient.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("failed to subscribe to redis notifications: %v", err)
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.forward(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Subscriber) forward(msg *redis.Message) {
	room, ok := roomForChannel(msg.Channel)
	if !ok {
		return
	}

	payload, err := json.Marshal(wire.Envelope{
		Event: wire.EventNewNotification,
		Data:  json.RawMessage(msg.Payload),
	})
	if err != nil {
		return
	}

	s.hub.Broadcast(room, payload)
}

func roomForChannel(channel string) (string, bool) {
	suffix, ok := strings.CutPrefix(channel, "notifications:")
	if !ok || suffix == "" {
		return "", false
	}
	// "admin" or "user:<id>" map straight to room names.
	return suffix, true
}
