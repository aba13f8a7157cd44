package bridge

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vcsh30/dahuactl/internal/config"
)

// broker is the subset of MQTT operations the bridge needs. It exists so
// tests can run without a live broker.
type broker interface {
	Publish(topic string, payload []byte, retain bool) error
	Subscribe(topic string, cb func([]byte)) error
	Close()
}

type mqttClient struct {
	client mqtt.Client

	mu   sync.Mutex
	subs map[string]func([]byte)
}

// newMQTTClient connects to the broker described by cfg. The will message
// marks the bridge offline if the connection drops uncleanly.
func newMQTTClient(cfg config.MQTTConfig, willTopic, willPayload string) (*mqttClient, error) {
	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(randomClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	if willTopic != "" {
		opts.SetWill(willTopic, willPayload, 0, true)
	}

	mc := &mqttClient{subs: make(map[string]func([]byte))}
	opts.SetDefaultPublishHandler(mc.dispatch)
	opts.OnConnect = func(_ mqtt.Client) {
		mc.resubscribeAll()
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	mc.client = client
	return mc, nil
}

func (c *mqttClient) Publish(topic string, payload []byte, retain bool) error {
	if token := c.client.Publish(topic, 0, retain, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *mqttClient) Subscribe(topic string, cb func([]byte)) error {
	c.mu.Lock()
	c.subs[topic] = cb
	c.mu.Unlock()

	if token := c.client.Subscribe(topic, 0, nil); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *mqttClient) Close() {
	c.client.Disconnect(250)
}

func (c *mqttClient) dispatch(_ mqtt.Client, msg mqtt.Message) {
	c.mu.Lock()
	cb := c.subs[msg.Topic()]
	c.mu.Unlock()
	if cb != nil {
		cb(msg.Payload())
	}
}

func (c *mqttClient) resubscribeAll() {
	c.mu.Lock()
	topics := make([]string, 0, len(c.subs))
	for topic := range c.subs {
		topics = append(topics, topic)
	}
	c.mu.Unlock()
	for _, topic := range topics {
		_ = c.client.Subscribe(topic, 0, nil).Wait()
	}
}

func randomClientID() string {
	nonce := make([]byte, 8)
	_, _ = rand.Read(nonce)
	return "dahuactl-" + base64.RawURLEncoding.EncodeToString(nonce)
}
