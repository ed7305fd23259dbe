package app

import (
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/gps_compass/internal/telemetry"
)

func TestFramePublisher_SendsEncodedFrames(t *testing.T) {
	got := make(chan []byte, 1)
	closed := false
	p := newFramePublisher(func(payload []byte) error {
		got <- payload
		return nil
	}, func() { closed = true })

	p.Publish(telemetry.Frame{Units: "metric", SpeedText: "41"})

	select {
	case payload := <-got:
		f, err := telemetry.Decode(payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if f.SpeedText != "41" || f.Units != "metric" {
			t.Fatalf("frame %+v", f)
		}
	case <-time.After(time.Second):
		t.Fatal("frame never sent")
	}

	p.Close()
	p.Close()
	if !closed {
		t.Fatal("onClose not called")
	}
}

func TestFramePublisher_DropsWhenBlocked(t *testing.T) {
	release := make(chan struct{})
	p := newFramePublisher(func([]byte) error {
		<-release
		return errors.New("broker gone")
	}, nil)

	start := time.Now()
	for i := 0; i < 10; i++ {
		p.Publish(telemetry.Frame{Sentences: uint64(i)})
	}
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Fatalf("Publish blocked for %v", d)
	}
	// at most one frame in flight and telemetryQueueLen queued
	if p.Dropped() < uint64(10-1-telemetryQueueLen) {
		t.Fatalf("dropped=%d", p.Dropped())
	}

	close(release)
	p.Close()
}
