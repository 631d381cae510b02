// Package publish republishes decoded OBD-II readings over MQTT on an
// interval. It is adapted from the teacher's internal/mqtt/client.go:
// same MQTTConfig/ticker/StartPublishing shape, but the data source is
// a snapshot of decoded (mode,pid) readings rather than a protocol's
// VehicleData.
package publish

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	DefaultUpdateInterval = 10 * time.Second
	DefaultBroker         = "tcp://localhost:1883"
	DefaultClientID       = "obdpid-collector"
	DefaultTopic          = "obd/readings"
)

// Reading is one decoded (mode,pid) value, ready for JSON publication.
type Reading struct {
	Mode  int     `json:"mode"`
	PID   int     `json:"pid"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Config holds the settings for a Client.
type Config struct {
	Broker         string
	ClientID       string
	Topic          string
	UpdateInterval time.Duration
}

// Client periodically publishes a snapshot of decoded readings.
type Client struct {
	config     Config
	client     mqtt.Client
	stopChan   chan struct{}
	dataSource func() []Reading
}

// NewClient creates a new publishing client. dataSource is invoked
// once per publish tick to gather the current readings.
func NewClient(config Config, dataSource func() []Reading) *Client {
	return &Client{
		config:     config,
		stopChan:   make(chan struct{}),
		dataSource: dataSource,
	}
}

// Connect establishes the MQTT broker connection.
func (c *Client) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Println("connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	})

	c.client = mqtt.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	return nil
}

// StartPublishing starts the periodic publish loop.
func (c *Client) StartPublishing() {
	ticker := time.NewTicker(c.config.UpdateInterval)

	log.Printf("publishing readings to MQTT topic %s every %v", c.config.Topic, c.config.UpdateInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-c.stopChan:
				return
			case <-ticker.C:
				c.publish()
			}
		}
	}()
}

// StopPublishing stops the periodic publish loop.
func (c *Client) StopPublishing() {
	close(c.stopChan)
}

// Disconnect closes the MQTT broker connection.
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

func (c *Client) publish() {
	readings := c.dataSource()
	if len(readings) == 0 {
		return
	}

	data, err := json.Marshal(readings)
	if err != nil {
		log.Printf("failed to marshal readings: %v", err)
		return
	}

	token := c.client.Publish(c.config.Topic, 0, false, data)
	if token.Wait() && token.Error() != nil {
		log.Printf("failed to publish readings: %v", token.Error())
	} else {
		log.Printf("published %d reading(s) (%d bytes)", len(readings), len(data))
	}
}
