// Package signals feeds price signals received over MQTT into the building
// service and publishes the resulting state back to the broker.
//
// Topics, for prefix "buildings":
//
//	buildings/<id>/signal   inbound  {"price":0.2,"duration_minutes":60}
//	buildings/<id>/state    outbound building snapshot, retained
package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"building_energy/internal/config"
	"building_energy/internal/logger"
	"building_energy/internal/models"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	handleTimeout  = 5 * time.Second
	connectTimeout = 10 * time.Second
	quiesceMillis  = 250

	signalSuffix = "signal"
	stateSuffix  = "state"
)

var (
	errBadTopic     = errors.New("topic does not match <prefix>/<id>/signal")
	errMissingPrice = errors.New("payload has no price")
)

// Adjuster is the slice of the building service the bridge drives.
type Adjuster interface {
	Adjust(ctx context.Context, id string, sig models.Signal) (models.BuildingState, error)
}

// Bridge subscribes to per-building signal topics.
type Bridge struct {
	client   MQTT.Client
	adjuster Adjuster
	prefix   string
	log      *logger.Logger

	mu  sync.Mutex
	ctx context.Context
}

// New wraps an existing client. The client is not connected by New.
func New(client MQTT.Client, adjuster Adjuster, prefix string, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{
		client:   client,
		adjuster: adjuster,
		prefix:   strings.Trim(prefix, "/"),
		log:      log,
		ctx:      context.Background(),
	}
}

// ClientOptions builds paho options from configuration. onConnect runs on
// every (re)connect. Delivery is unordered so each message handler runs on
// its own goroutine and may block on the store and on publish acks.
func ClientOptions(cfg config.MQTTConfig, onConnect MQTT.OnConnectHandler, log *logger.Logger) *MQTT.ClientOptions {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetOnConnectHandler(onConnect)
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		log.Warnw("mqtt_connection_lost", "err", err)
	})
	return opts
}

// Dial connects to the configured broker and subscribes; subscriptions are
// restored after automatic reconnects.
func Dial(ctx context.Context, cfg config.MQTTConfig, adjuster Adjuster, log *logger.Logger) (*Bridge, error) {
	b := New(nil, adjuster, cfg.TopicPrefix, log)
	b.ctx = ctx

	opts := ClientOptions(cfg, func(c MQTT.Client) {
		if err := b.subscribe(c); err != nil {
			b.log.Errorw("mqtt_subscribe_failed", "err", err)
		}
	}, b.log)
	b.client = MQTT.NewClient(opts)

	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	b.log.Infow("mqtt_connected", "broker", cfg.Broker, "topic", b.SignalTopic())
	return b, nil
}

// Start subscribes on an already connected client. ctx bounds the
// lifetime of adjustments triggered by messages.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
	return b.subscribe(b.client)
}

func (b *Bridge) subscribe(c MQTT.Client) error {
	token := c.Subscribe(b.SignalTopic(), qos, b.handle)
	token.Wait()
	return token.Error()
}

// Stop unsubscribes and disconnects.
func (b *Bridge) Stop() {
	if b.client == nil {
		return
	}
	if b.client.IsConnected() {
		b.client.Unsubscribe(b.SignalTopic()).Wait()
	}
	b.client.Disconnect(quiesceMillis)
}

// SignalTopic is the wildcard subscription for all buildings.
func (b *Bridge) SignalTopic() string {
	return b.prefix + "/+/" + signalSuffix
}

// StateTopic is where snapshots for id are published.
func (b *Bridge) StateTopic(id string) string {
	return b.prefix + "/" + id + "/" + stateSuffix
}

// buildingID extracts <id> from <prefix>/<id>/signal.
func (b *Bridge) buildingID(topic string) (string, error) {
	rest, ok := strings.CutPrefix(topic, b.prefix+"/")
	if !ok {
		return "", errBadTopic
	}
	id, suffix, ok := strings.Cut(rest, "/")
	if !ok || suffix != signalSuffix || id == "" {
		return "", errBadTopic
	}
	return id, nil
}

type signalPayload struct {
	Price           *float32 `json:"price"`
	DurationMinutes uint32   `json:"duration_minutes"`
}

func decodeSignal(payload []byte) (models.Signal, error) {
	var p signalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.Signal{}, err
	}
	if p.Price == nil {
		return models.Signal{}, errMissingPrice
	}
	return models.Signal{Price: *p.Price, DurationMinutes: p.DurationMinutes}, nil
}

// handle is the paho message callback. Bad messages are logged and dropped.
// Signals for the same building may be applied out of arrival order.
func (b *Bridge) handle(c MQTT.Client, msg MQTT.Message) {
	id, err := b.buildingID(msg.Topic())
	if err != nil {
		b.log.Warnw("mqtt_signal_dropped", "topic", msg.Topic(), "err", err)
		return
	}
	sig, err := decodeSignal(msg.Payload())
	if err != nil {
		b.log.Warnw("mqtt_signal_dropped", "topic", msg.Topic(), "building_id", id, "err", err)
		return
	}

	b.mu.Lock()
	parent := b.ctx
	b.mu.Unlock()
	ctx, cancel := context.WithTimeout(parent, handleTimeout)
	defer cancel()

	st, err := b.adjuster.Adjust(ctx, id, sig)
	if err != nil {
		b.log.Errorw("mqtt_signal_adjust_failed", "building_id", id, "price", sig.Price, "err", err)
		return
	}
	b.publishState(c, st)
}

func (b *Bridge) publishState(c MQTT.Client, st models.BuildingState) {
	payload, err := json.Marshal(st)
	if err != nil {
		b.log.Errorw("mqtt_state_marshal_failed", "building_id", st.ID, "err", err)
		return
	}
	token := c.Publish(b.StateTopic(st.ID), qos, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		b.log.Errorw("mqtt_state_publish_failed", "building_id", st.ID, "err", err)
		return
	}
	b.log.Debugw("mqtt_state_published", "building_id", st.ID, "mode", st.Mode.String())
}
