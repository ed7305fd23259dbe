package app

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gps_compass/internal/telemetry"
)

const (
	telemetryQueueLen = 4
	connectTimeout    = 5 * time.Second
)

// FramePublisher hands frames to a sender goroutine so the device loop
// never waits on the network. Frames are dropped while the queue is full.
type FramePublisher struct {
	send    func(payload []byte) error
	frames  chan telemetry.Frame
	stop    chan struct{}
	done    chan struct{}
	onClose func()
	dropped atomic.Uint64
	once    sync.Once
}

func newFramePublisher(send func(payload []byte) error, onClose func()) *FramePublisher {
	p := &FramePublisher{
		send:    send,
		frames:  make(chan telemetry.Frame, telemetryQueueLen),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		onClose: onClose,
	}
	go p.run()
	return p
}

// ConnectTelemetry connects to the MQTT broker and publishes frames to
// topic, retained, QoS 0.
func ConnectTelemetry(broker, clientID, topic string) (*FramePublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("telemetry: connect to %s timed out", broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect to %s: %w", broker, token.Error())
	}
	log.Printf("telemetry: connected to MQTT broker at %s", broker)

	send := func(payload []byte) error {
		t := client.Publish(topic, 0, true, payload)
		t.Wait()
		return t.Error()
	}
	return newFramePublisher(send, func() { client.Disconnect(250) }), nil
}

func (p *FramePublisher) Publish(f telemetry.Frame) {
	select {
	case p.frames <- f:
	default:
		if p.dropped.Add(1) == 1 {
			log.Println("telemetry: queue full, dropping frames")
		}
	}
}

// Dropped is the number of frames lost to a full queue.
func (p *FramePublisher) Dropped() uint64 {
	return p.dropped.Load()
}

func (p *FramePublisher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		case f := <-p.frames:
			payload, err := f.Encode()
			if err != nil {
				log.Printf("telemetry: JSON marshal error: %v", err)
				continue
			}
			if err := p.send(payload); err != nil {
				log.Printf("telemetry: publish error: %v", err)
			}
		}
	}
}

// Close stops the sender and disconnects. Queued frames are discarded.
func (p *FramePublisher) Close() error {
	p.once.Do(func() {
		close(p.stop)
		<-p.done
		if p.onClose != nil {
			p.onClose()
		}
	})
	return nil
}

// subscribeTelemetry delivers every decodable frame on topic to fn.
func subscribeTelemetry(client mqtt.Client, topic, who string, fn func(telemetry.Frame)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		f, err := telemetry.Decode(msg.Payload())
		if err != nil {
			log.Printf("%s: payload unmarshal error: %v", who, err)
			return
		}
		fn(f)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("%s: subscribed to MQTT topic %s", who, topic)
	return nil
}

// connectSubscriber opens an MQTT client for one of the viewers.
func connectSubscriber(broker, clientID, who string) (mqtt.Client, error) {
	if broker == "" {
		return nil, fmt.Errorf("%s: MQTT_BROKER is not set", who)
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("%s: connected to MQTT broker at %s", who, broker)
	return client, nil
}
