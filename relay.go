package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"i4.energy/across/oocsigw/oocsi"
)

const (
	relayConnectTimeout = 10 * time.Second
	relayQoS            = 1
)

var (
	errMissingChannel = errors.New("'channel' field is required")
	errEmptyMessage   = errors.New("'message' must hold at least one key")
)

// Sender publishes a message on an OOCSI channel.
type Sender interface {
	SendMessage(channel string, msg oocsi.Message) bool
}

// Relay bridges OOCSI and MQTT. Messages received from the broker are
// published on <topic>/inbound; requests on <topic>/outbound are published
// to OOCSI.
type Relay struct {
	client pahomqtt.Client
	topic  string
	sender Sender
	logger *slog.Logger
}

// outboundRequest is the payload accepted on <topic>/outbound.
type outboundRequest struct {
	Channel string        `json:"channel"`
	Message oocsi.Message `json:"message"`
}

// NewRelay prepares a relay. Call Start once the sender is ready.
func NewRelay(config *Config, logger *slog.Logger) *Relay {
	r := &Relay{
		topic:  config.MQTTTopic,
		logger: logger.With("component", "relay"),
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(config.MQTTBroker)
	opts.SetClientID(config.MQTTClientID)
	if config.MQTTUsername != "" {
		opts.SetUsername(config.MQTTUsername)
		opts.SetPassword(config.MQTTPassword)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(relayConnectTimeout)
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		r.subscribe(c)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		r.logger.Warn("MQTT connection lost", "error", err)
	})

	r.client = pahomqtt.NewClient(opts)
	return r
}

// Start connects to the MQTT broker and forwards outbound requests to s.
func (r *Relay) Start(s Sender) error {
	r.sender = s

	token := r.client.Connect()
	if !token.WaitTimeout(relayConnectTimeout) {
		return fmt.Errorf("connect MQTT broker: timeout after %v", relayConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect MQTT broker: %w", err)
	}
	return nil
}

// subscribe runs on every (re)connect; subscriptions do not survive a clean
// session.
func (r *Relay) subscribe(c pahomqtt.Client) {
	topic := r.topic + "/outbound"
	token := c.Subscribe(topic, relayQoS, func(_ pahomqtt.Client, m pahomqtt.Message) {
		if err := r.handleOutbound(m.Payload()); err != nil {
			r.logger.Warn("Dropping outbound request", "topic", m.Topic(), "error", err)
		}
	})
	if token.Wait() && token.Error() != nil {
		r.logger.Error("MQTT subscribe failed", "topic", topic, "error", token.Error())
		return
	}
	r.logger.Info("MQTT relay subscribed", "topic", topic)
}

func (r *Relay) handleOutbound(payload []byte) error {
	var req outboundRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return err
	}
	if req.Channel == "" {
		return errMissingChannel
	}
	if len(req.Message) == 0 {
		return errEmptyMessage
	}
	if r.sender == nil || !r.sender.SendMessage(req.Channel, req.Message) {
		return errors.New("not connected to the broker")
	}
	return nil
}

// Forward publishes msg on <topic>/inbound. It is installed as the OOCSI
// message handler, so it must not block.
func (r *Relay) Forward(msg oocsi.Message) {
	if r.client == nil || !r.client.IsConnectionOpen() {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("Failed to encode inbound message", "error", err)
		return
	}
	r.client.Publish(r.topic+"/inbound", relayQoS, false, payload)
}

// Close disconnects from the MQTT broker.
func (r *Relay) Close() {
	if r.client != nil && r.client.IsConnected() {
		r.client.Disconnect(500)
	}
}
