package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
)

const publishWait = 5 * time.Second

// ErrNotConnected is returned when publishing while the broker link is down.
var ErrNotConnected = errors.New("mqtt client not connected")

// client is the subset of paho.Client used for publishing.
type client interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher mirrors station entities to an MQTT broker as retained messages,
// so a late subscriber immediately sees each station's current state.
// It implements pipeline.EntitySink.
type Publisher struct {
	client      client
	topicPrefix string
	logger      *slog.Logger
	connected   atomic.Bool
}

// NewPublisher creates a publisher for broker (e.g. "tcp://localhost:1883").
// Call Connect before publishing.
func NewPublisher(broker, clientID, topicPrefix string, logger *slog.Logger) *Publisher {
	p := &Publisher{
		topicPrefix: strings.Trim(topicPrefix, "/"),
		logger:      logger,
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		p.connected.Store(true)
		logger.Info("mqtt connected", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.connected.Store(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	return p
}

// Connect waits for the initial broker connection, honoring ctx.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.connected.Load() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			p.connected.Store(true)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Publish sends the entity JSON to <prefix>/<station>/entity at QoS 1, retained.
func (p *Publisher) Publish(ctx context.Context, entity domain.StationEntity) error {
	if !p.connected.Load() {
		return ErrNotConnected
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal station entity: %w", err)
	}

	topic := p.Topic(entity.StationID)
	token := p.client.Publish(topic, 1, true, data)

	wait := publishWait
	if deadline, ok := ctx.Deadline(); ok {
		wait = min(wait, time.Until(deadline))
	}
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish entity: %w", err)
	}

	p.logger.Debug("mirrored entity to mqtt", "topic", topic, "entity_id", entity.EntityID)
	return nil
}

// Topic returns the topic a station's entity is published to.
func (p *Publisher) Topic(stationID string) string {
	return fmt.Sprintf("%s/%s/entity", p.topicPrefix, strings.ToUpper(stationID))
}

// Close disconnects, allowing in-flight messages a short grace period.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	p.connected.Store(false)
	return nil
}
