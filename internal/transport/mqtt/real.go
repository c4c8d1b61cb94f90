package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/sweeney/steamboiler/internal/wire"
)

const bufferCapacity = 64

// RealTransport publishes to and subscribes from an actual MQTT broker. One
// side's outTopic is the other side's inTopic: the controller publishes on
// TopicControllerOut and subscribes to TopicPlantOut, and the plant does the
// reverse.
type RealTransport struct {
	client   paho.Client
	outTopic string
	buffer   *ringBuffer
	incoming chan boiler.Mailbox
}

// NewRealTransport connects to broker as clientID, publishing on outTopic
// and delivering decoded batches received on inTopic via Incoming.
func NewRealTransport(broker, clientID, outTopic, inTopic string) (*RealTransport, error) {
	t := &RealTransport{
		outTopic: outTopic,
		buffer:   newRingBuffer(bufferCapacity),
		incoming: make(chan boiler.Mailbox, bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(t.onConnect)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	t.client = client

	if token := client.Subscribe(inTopic, 1, t.onMessage); !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		client.Disconnect(1000)
		return nil, fmt.Errorf("subscribe %s: timeout or error", inTopic)
	}

	return t, nil
}

func (t *RealTransport) onMessage(_ paho.Client, msg paho.Message) {
	mb, err := wire.Decode(msg.Payload())
	if err != nil {
		return
	}
	t.incoming <- mb
}

// onConnect replays any batches buffered while disconnected.
func (t *RealTransport) onConnect(client paho.Client) {
	for _, buffered := range t.buffer.drainAll() {
		client.Publish(buffered.topic, buffered.qos, buffered.retained, buffered.payload)
	}
}

// Publish sends this cycle's outbound batch. QoS 1 (at-least-once): a
// dropped command batch could leave the plant holding a stale pump/valve
// state. If the client is disconnected the batch is buffered for replay on
// reconnect rather than dropped.
func (t *RealTransport) Publish(cycle int64, messages []boiler.Message) error {
	payload, err := wire.Encode(cycle, messages)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	if !t.client.IsConnected() {
		t.buffer.push(bufferedMsg{topic: t.outTopic, payload: payload, qos: 1, retained: false})
		return nil
	}
	token := t.client.Publish(t.outTopic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	return token.Error()
}

// PublishSystem sends a system lifecycle event, retained so a late-joining
// monitor sees the most recent one immediately.
func (t *RealTransport) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	token := t.client.Publish(TopicSystem, 1, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	return token.Error()
}

// Incoming returns the channel of decoded mailboxes received from the peer.
func (t *RealTransport) Incoming() <-chan boiler.Mailbox {
	return t.incoming
}

// IsConnected reports the underlying client's connection state.
func (t *RealTransport) IsConnected() bool {
	return t.client.IsConnected()
}

// Close disconnects from the broker.
func (t *RealTransport) Close() error {
	t.client.Disconnect(1000)
	close(t.incoming)
	return nil
}
