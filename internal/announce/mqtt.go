// Package announce publishes the controller's status to an MQTT broker so
// home-automation frontends can follow the light without polling HTTP.
package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lahn92/AquaTimer/internal/models"
)

// Announcer pushes status snapshots somewhere external. Failures are the
// caller's to log; they must never stop the control loop.
type Announcer interface {
	Publish(ctx context.Context, status models.LightStatus) error
	Close()
}

// Nop is used when announcing is disabled in config.
type Nop struct{}

func (Nop) Publish(context.Context, models.LightStatus) error { return nil }
func (Nop) Close()                                            {}

// Config holds MQTT announcer configuration.
type Config struct {
	Broker   string // e.g. "tcp://broker.local:1883"
	ClientID string
	Username string
	Password string
	Topic    string // e.g. "aquatimer/tank1/status"
}

type MQTT struct {
	client mqtt.Client
	topic  string
}

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// NewMQTT connects to the broker and returns a retained-status publisher.
func NewMQTT(cfg Config) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", cfg.Broker, err)
	}

	return &MQTT{client: client, topic: cfg.Topic}, nil
}

// Publish sends the status JSON as a retained message, so a frontend that
// subscribes later still sees the latest snapshot.
func (m *MQTT) Publish(ctx context.Context, status models.LightStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("mqtt: marshal status: %w", err)
	}
	token := m.client.Publish(m.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish to %s timed out", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", m.topic, err)
	}
	return nil
}

func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
