package location

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Subscriber is the part of mqtt.Client the relay uses.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// ConnectMQTT connects a paho client to broker.
func ConnectMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return client, nil
}

// MQTTRelay routes JSON fixes published on per-session topics into location feeds.
type MQTTRelay struct {
	client      Subscriber
	qos         byte
	pushTimeout time.Duration
	log         logrus.FieldLogger
}

// NewMQTTRelay creates a relay subscribing with QoS 1.
func NewMQTTRelay(client Subscriber, logger logrus.FieldLogger) *MQTTRelay {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MQTTRelay{
		client:      client,
		qos:         1,
		pushTimeout: time.Second,
		log:         logger,
	}
}

// Attach subscribes to topic and pushes each decoded fix into feed. Malformed
// payloads are logged and dropped. The returned function unsubscribes.
func (r *MQTTRelay) Attach(topic string, feed *Feed) (func(), error) {
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		evt, err := DecodeFix(msg.Payload())
		if err != nil {
			r.log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed location fix")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.pushTimeout)
		defer cancel()
		if err := feed.Push(ctx, evt); err != nil {
			r.log.WithError(err).WithField("topic", msg.Topic()).Debug("Location fix not delivered")
		}
	}

	token := r.client.Subscribe(topic, r.qos, handler)
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", topic, err)
	}
	r.log.WithField("topic", topic).Info("Relaying location fixes")

	return func() {
		if t := r.client.Unsubscribe(topic); t.Wait() && t.Error() != nil {
			r.log.WithError(t.Error()).WithField("topic", topic).Warn("MQTT unsubscribe failed")
		}
	}, nil
}
