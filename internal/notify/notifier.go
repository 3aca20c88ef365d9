package notify

import (
	"context"
	"encoding/json"

	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ChannelPrefix namespaces the per-user pub/sub channels.
const ChannelPrefix = "notificaciones:"

// Notifier persists a notification and fans it out to online clients.
// Delivery is best-effort: a pub/sub failure never fails the caller's
// business operation.
type Notifier interface {
	Enviar(ctx context.Context, n *model.Notificacion) error
}

type redisNotifier struct {
	repo repository.NotificacionRepository
	rdb  *redis.Client
}

func NewRedisNotifier(repo repository.NotificacionRepository, rdb *redis.Client) Notifier {
	return &redisNotifier{repo: repo, rdb: rdb}
}

func (n *redisNotifier) Enviar(ctx context.Context, notif *model.Notificacion) error {
	if err := n.repo.Create(ctx, notif); err != nil {
		return err
	}
	payload, err := json.Marshal(notif)
	if err != nil {
		return err
	}
	channel := ChannelPrefix + notif.ParaUsuarioID.String()
	if err := n.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("notify: publish failed")
	}
	return nil
}

// Noop discards everything; unit tests use it.
type Noop struct{}

func (Noop) Enviar(context.Context, *model.Notificacion) error { return nil }
