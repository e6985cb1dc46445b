package mq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope carries id and attributes alongside the payload, which plain
// Redis pub/sub has no slot for.
type envelope struct {
	ID         string            `json:"id"`
	Data       []byte            `json:"data"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// RedisPubSub publishes over Redis PUBLISH/SUBSCRIBE. Delivery is
// fire-and-forget: messages sent while nobody listens are dropped.
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub wraps an existing client. Close does not close it.
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

func (r *RedisPubSub) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("redis channel is required")
	}
	msg := envelope{ID: uuid.NewString(), Data: data, Attributes: attrs}
	raw, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	if err := r.client.Publish(ctx, channel, raw).Err(); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// Subscribe blocks until ctx is done. Handler errors are ignored since
// pub/sub cannot redeliver.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("redis channel is required")
	}

	sub := r.client.Subscribe(ctx, channel)
	defer func() {
		_ = sub.Close()
	}()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-messages:
			if !ok {
				return errors.New("redis subscription closed")
			}
			var msg envelope
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			_ = handler(ctx, Message{ID: msg.ID, Data: msg.Data, Attributes: msg.Attributes})
		}
	}
}

func (r *RedisPubSub) Close() error { return nil }
