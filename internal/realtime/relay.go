package realtime

import (
	"context"
	"encoding/json"

	redisModels "chatRelay/internal/models/redis"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Relay extends delivery across processes over a redis pub/sub channel.
// Locally-originated events are published as {event, targets}; inbound bus
// messages are replayed through Engine.DeliverToSet, which never publishes,
// so a relayed event cannot loop back onto the bus.
type Relay struct {
	rdb     *redis.Client
	channel string
	engine  *Engine
	log     zerolog.Logger

	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRelay(rdb *redis.Client, channel string, engine *Engine, log zerolog.Logger) *Relay {
	return &Relay{
		rdb:     rdb,
		channel: channel,
		engine:  engine,
		log:     log.With().Str("component", "relay").Logger(),
	}
}

// Start subscribes to the bus and wires the relay into the engine. On any
// failure the process keeps running with local-only delivery.
func (r *Relay) Start(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	r.pubsub = r.rdb.Subscribe(ctx, r.channel)
	if _, err := r.pubsub.Receive(ctx); err != nil {
		_ = r.pubsub.Close()
		r.pubsub = nil
		return err
	}

	listenCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.listen(listenCtx, r.pubsub.Channel())

	r.engine.SetPublisher(r)
	r.log.Info().Str("channel", r.channel).Msg("relay subscribed")
	return nil
}

// Publish implements Publisher. Publish failures degrade to local-only
// delivery.
func (r *Relay) Publish(event json.RawMessage, targets []uint) {
	payload, err := json.Marshal(redisModels.RelayMessage{
		Event:   event,
		Targets: targets,
	})
	if err != nil {
		r.log.Error().Err(err).Msg("failed to marshal relay message")
		return
	}
	if err := r.rdb.Publish(context.Background(), r.channel, payload).Err(); err != nil {
		r.log.Warn().Err(err).Msg("failed to publish to bus, delivering locally only")
	}
}

func (r *Relay) listen(ctx context.Context, ch <-chan *redis.Message) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var relayed redisModels.RelayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &relayed); err != nil {
				r.log.Warn().Err(err).Msg("malformed bus message, skipping")
				continue
			}
			if len(relayed.Event) == 0 || len(relayed.Targets) == 0 {
				continue
			}
			r.engine.deliverToSetRaw(relayed.Targets, relayed.Event)
		}
	}
}

// Stop unblocks the listen loop and unsubscribes. Call before closing the
// redis client.
func (r *Relay) Stop() {
	if r.pubsub == nil {
		return
	}
	r.engine.SetPublisher(nil)
	r.cancel()
	_ = r.pubsub.Unsubscribe(context.Background(), r.channel)
	_ = r.pubsub.Close()
	<-r.done
	r.pubsub = nil
}
