package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/kgames/security2mqtt/internal/config"
	"github.com/kgames/security2mqtt/internal/log"
	"github.com/kgames/security2mqtt/internal/util"
)

const (
	offlinePayload = "offline"
	onlinePayload  = "online"
)

// InboundKind says which subscribed topic a message arrived on.
type InboundKind int

const (
	InboundCommand InboundKind = iota
	InboundAuthResult
)

// Inbound is one control-plane message, delivered in order through a single
// channel so the gateway loop stays the only owner of controller state.
type Inbound struct {
	Kind    InboundKind
	Payload string
}

type MQTT struct {
	config  *config.MQTTConfig
	name    string
	log     *log.Logger
	client  mqtt.Client
	topics  *Topics
	inbound chan Inbound
}

func NewMQTT(cfg *config.MQTTConfig, name string, logger *log.Logger) *MQTT {
	return &MQTT{
		config:  cfg,
		name:    name,
		log:     logger,
		topics:  NewTopics(cfg.Prefix),
		inbound: make(chan Inbound, 64),
	}
}

func (m *MQTT) Connect() error {
	clientID := m.config.ClientID
	if clientID == "" {
		clientID = util.Slugify(m.name)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", m.config.Host, m.config.Port))
	opts.SetClientID(clientID)
	opts.SetUsername(m.config.Username)
	opts.SetPassword(m.config.Password)
	opts.SetCleanSession(m.config.Clean)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(m.onDisconnect)

	opts.SetWill(m.topics.Status(), offlinePayload, byte(m.config.QOS), true)

	m.client = mqtt.NewClient(opts)

	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}

	m.log.Info("Connected to MQTT broker: %s:%d", m.config.Host, m.config.Port)
	return nil
}

func (m *MQTT) onConnect(client mqtt.Client) {
	m.log.Info("MQTT connection established")
	m.publish(m.topics.Status(), onlinePayload, true)
	m.subscribeTopics()
	m.publishNodeConfig()
}

func (m *MQTT) onDisconnect(client mqtt.Client, err error) {
	m.log.Error("MQTT connection lost: %v", err)
}

func (m *MQTT) subscribeTopics() {
	subscriptions := map[string]InboundKind{
		m.topics.Command():      InboundCommand,
		m.topics.AuthResponse(): InboundAuthResult,
	}

	for topic, kind := range subscriptions {
		kind := kind
		token := m.client.Subscribe(topic, byte(m.config.QOS), func(client mqtt.Client, msg mqtt.Message) {
			m.handleMessage(kind, msg)
		})
		if token.Wait() && token.Error() != nil {
			m.log.Error("Failed to subscribe to topic %s: %v", topic, token.Error())
		} else {
			m.log.Debug("Subscribed to topic: %s", topic)
		}
	}
}

func (m *MQTT) handleMessage(kind InboundKind, msg mqtt.Message) {
	payload := string(msg.Payload())
	m.log.Debug("Received message on topic %s: %s", msg.Topic(), payload)

	select {
	case m.inbound <- Inbound{Kind: kind, Payload: payload}:
	default:
		m.log.Warning("Inbound queue full, dropping message from %s: %s", msg.Topic(), payload)
	}
}

// Inbound returns the ordered queue of subscribed messages. The gateway loop
// drains it; nothing else may consume controller input.
func (m *MQTT) Inbound() <-chan Inbound {
	return m.inbound
}

// PublishEvent publishes a text event on the outbound status topic.
func (m *MQTT) PublishEvent(payload string) {
	m.publish(m.topics.Events(), payload, m.config.Retain)
}

// PublishAuth publishes on the authentication-request topic.
func (m *MQTT) PublishAuth(payload string) {
	m.publish(m.topics.AuthRequest(), payload, false)
}

func (m *MQTT) publishNodeConfig() {
	info := map[string]interface{}{
		"name":   m.name,
		"prefix": m.config.Prefix,
	}
	payload, err := json.Marshal(info)
	if err != nil {
		m.log.Error("Failed to marshal node config: %v", err)
		return
	}
	m.publish(m.topics.Config(), string(payload), true)
}

func (m *MQTT) publish(topic, payload string, retain bool) {
	token := m.client.Publish(topic, byte(m.config.QOS), retain, payload)
	if token.Wait() && token.Error() != nil {
		m.log.Error("Failed to publish message to topic %s: %v", topic, token.Error())
	} else {
		m.log.Debug("Published message to topic %s: %s", topic, payload)
	}
}

func (m *MQTT) Close() {
	if m.client != nil && m.client.IsConnected() {
		m.publish(m.topics.Status(), offlinePayload, true)
		m.client.Disconnect(250)
	}
}
