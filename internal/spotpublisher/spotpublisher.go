// Package spotpublisher publishes decoded "spots" (one complete decoded
// message plus its carrier frequency) to an MQTT broker, generalizing the
// teacher's mqtt_publisher.go connect/publish/reconnect pattern from raw
// spectrum data to this repo's decode-event stream.
package spotpublisher

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Spot is one decoded message, ready to publish as a JSON payload.
type Spot struct {
	Mode        string  `json:"mode"`
	Text        string  `json:"text"`
	FrequencyHz float64 `json:"frequency_hz"`
	Timestamp   int64   `json:"timestamp"`
}

// Publisher connects to an MQTT broker and publishes Spot events under
// "<topicPrefix>/<mode>/spots", reconnecting automatically on broker loss.
type Publisher struct {
	client      mqtt.Client
	topicPrefix string

	mu        sync.Mutex
	connected bool
}

// Config is the connection configuration a Publisher is constructed from.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// NewPublisher connects to the broker described by cfg and returns a
// Publisher. The connection is established asynchronously; Publish calls
// made before the first successful connect are silently dropped, matching
// the teacher's best-effort telemetry behavior.
func NewPublisher(cfg Config) (*Publisher, error) {
	p := &Publisher{topicPrefix: cfg.TopicPrefix}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		p.mu.Lock()
		p.connected = true
		p.mu.Unlock()
		log.Printf("[spotpublisher] connected to %s", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.mu.Lock()
		p.connected = false
		p.mu.Unlock()
		log.Printf("[spotpublisher] connection to %s lost: %v", cfg.Broker, err)
	})

	p.client = mqtt.NewClient(opts)
	token := p.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("spotpublisher: connect to %s: %w", cfg.Broker, token.Error())
	}
	return p, nil
}

// Publish serializes spot and publishes it to "<topicPrefix>/<mode>/spots"
// at QoS 0. Publish failures are logged, not returned, so a broker outage
// never blocks a decode loop.
func (p *Publisher) Publish(spot Spot) {
	p.mu.Lock()
	connected := p.connected
	p.mu.Unlock()
	if !connected {
		return
	}

	payload, err := json.Marshal(spot)
	if err != nil {
		log.Printf("[spotpublisher] marshal spot: %v", err)
		return
	}

	topic := fmt.Sprintf("%s/%s/spots", p.topicPrefix, spot.Mode)
	token := p.client.Publish(topic, 0, false, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("[spotpublisher] publish to %s: %v", topic, token.Error())
		}
	}()
}

// Close disconnects from the broker, waiting up to 250ms to flush.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
