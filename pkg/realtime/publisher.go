package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/truckbites/truckbites-backend/pkg/enums"
	"github.com/truckbites/truckbites-backend/pkg/logger"
	"github.com/truckbites/truckbites-backend/pkg/redis"
)

// Envelope is the wire shape pushed to connected clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Publisher pushes per-user events over redis pub/sub. The websocket edge
// subscribes to the per-user channel and relays messages verbatim.
type Publisher struct {
	redis  *redis.Client
	logger *logger.Logger
}

func NewPublisher(redisClient *redis.Client, logg *logger.Logger) *Publisher {
	return &Publisher{
		redis:  redisClient,
		logger: logg,
	}
}

// Channel returns the pub/sub channel carrying one user's events.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:events", userID)
}

// Push serializes the event envelope and publishes it to the user's channel.
func (p *Publisher) Push(ctx context.Context, userID uuid.UUID, event enums.NotificationEvent, data any) error {
	payload, err := json.Marshal(Envelope{
		Event: event.String(),
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", event, err)
	}
	if err := p.redis.Publish(ctx, Channel(userID), payload); err != nil {
		return fmt.Errorf("publishing %s event: %w", event, err)
	}
	return nil
}
