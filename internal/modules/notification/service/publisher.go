package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/gradenotify/internal/entity"
	"github.com/redis/go-redis/v9"
)

// Publisher announces a freshly persisted notification to whatever delivery
// transport listens for it. Announcing is best effort.
type Publisher interface {
	Publish(ctx context.Context, notification *entity.Notification) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func ChannelFor(notification *entity.Notification) string {
	return fmt.Sprintf("user_notifications:%s", notification.UserID.String())
}

func (p *RedisPublisher) Publish(ctx context.Context, notification *entity.Notification) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, ChannelFor(notification), payload).Err()
}
