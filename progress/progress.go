// Package progress publishes frame sequencer progress events so that long
// renders can be monitored remotely.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Sequencer phases reported in events.
type Phase string

const (
	WarmUp Phase = "warmup"
	Frame  Phase = "frame"
	Encode Phase = "encode"
	Done   Phase = "done"
)

// A progress update.
type Event struct {
	Phase      Phase         `json:"phase"`
	Frame      int           `json:"frame"`
	Total      int           `json:"total"`
	Angle      float64       `json:"angle"`
	RenderTime time.Duration `json:"render_time_ns"`
	Timestamp  time.Time     `json:"timestamp"`
}

// The Notifier interface is implemented by progress sinks.
type Notifier interface {
	Notify(Event) error
	Close()
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) error { return nil }
func (nopNotifier) Close()             {}

// Get a notifier that discards all events.
func Nop() Notifier {
	return nopNotifier{}
}

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

var ErrTimeout = errors.New("progress: timed out waiting for broker")

type MQTTOptions struct {
	URL      string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// The subset of mqtt.Client used for publishing.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publishes JSON encoded events to an MQTT topic.
type MQTTNotifier struct {
	client publisher
	topic  string
	qos    byte
}

// Connect to the broker at opts.URL and return a notifier publishing to
// opts.Topic.
func NewMQTT(opts MQTTOptions) (*MQTTNotifier, error) {
	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.URL).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetConnectTimeout(connectTimeout)
	client := mqtt.NewClient(clientOpts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: connect to %s", ErrTimeout, opts.URL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("progress: could not connect to %s: %w", opts.URL, err)
	}

	return newMQTTNotifier(client, opts.Topic, opts.QoS), nil
}

func newMQTTNotifier(client publisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic, qos: qos}
}

// Publish an event.
func (n *MQTTNotifier) Notify(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	token := n.client.Publish(n.topic, n.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: publish to %s", ErrTimeout, n.topic)
	}
	return token.Error()
}

// Disconnect from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
