package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/gps_compass/internal/clock"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Button reports presses. Pressed never blocks and returns true once per
// press. Buttons holding a pin or a reader also implement io.Closer.
type Button interface {
	Pressed() bool
}

// GPIOButton is a push button to ground on a pulled-up input. The pin is
// sampled on every call; a press is the high-to-low transition, and a
// second transition within the repeat window is contact bounce.
type GPIOButton struct {
	pin    gpio.PinIn
	clk    clock.Clock
	repeat int32 // milliseconds

	down      bool
	armed     bool
	lastPress clock.Ticks
}

// OpenGPIOButton looks the pin up by name (e.g. "GPIO12") in the periph.io
// registry.
func OpenGPIOButton(name string, repeat time.Duration, clk clock.Clock) (*GPIOButton, error) {
	if err := InitHost(); err != nil {
		return nil, fmt.Errorf("button: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("button: pin %q not found", name)
	}
	b, err := NewGPIOButton(p, repeat, clk)
	if err != nil {
		return nil, err
	}
	log.Printf("button: %s pull-up, repeat %s", name, repeat)
	return b, nil
}

// NewGPIOButton configures pin as a pulled-up input without edge
// interrupts.
func NewGPIOButton(pin gpio.PinIn, repeat time.Duration, clk clock.Clock) (*GPIOButton, error) {
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("button: configure %s: %w", pin, err)
	}
	return &GPIOButton{
		pin:    pin,
		clk:    clk,
		repeat: int32(repeat / time.Millisecond),
		down:   pin.Read() == gpio.Low,
	}, nil
}

func (b *GPIOButton) Pressed() bool {
	down := b.pin.Read() == gpio.Low
	edge := down && !b.down
	b.down = down
	if !edge {
		return false
	}

	now := b.clk.Now()
	if b.armed && clock.Diff(now, b.lastPress) < b.repeat {
		return false
	}
	b.armed = true
	b.lastPress = now
	return true
}

// Close releases the pin.
func (b *GPIOButton) Close() error {
	if err := b.pin.Halt(); err != nil {
		return fmt.Errorf("button: halt %s: %w", b.pin, err)
	}
	return nil
}

// StdinButton turns every line read from r (Enter on a terminal) into one
// press. A reader goroutine keeps Pressed from blocking.
type StdinButton struct {
	r       io.Reader
	presses chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewStdinButton(r io.Reader) *StdinButton {
	b := &StdinButton{
		r:       r,
		presses: make(chan struct{}, 8),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go b.read()
	return b
}

func (b *StdinButton) read() {
	defer close(b.done)
	sc := bufio.NewScanner(b.r)
	for sc.Scan() {
		select {
		case <-b.stop:
			return
		case b.presses <- struct{}{}:
		default:
		}
	}
}

// Close stops the reader goroutine. A reader that is also an io.Closer is
// closed to unblock a pending read; otherwise the goroutine exits at the
// next line or EOF.
func (b *StdinButton) Close() error {
	var err error
	b.once.Do(func() {
		close(b.stop)
		if c, ok := b.r.(io.Closer); ok {
			err = c.Close()
			<-b.done
		}
	})
	return err
}

func (b *StdinButton) Pressed() bool {
	select {
	case <-b.presses:
		return true
	default:
		return false
	}
}

// NoButton never reports a press.
type NoButton struct{}

func (NoButton) Pressed() bool { return false }
