package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/gps_compass/internal/config"
	"github.com/relabs-tech/gps_compass/internal/gps"
)

// RunGPSMonitor opens the configured receiver, decodes everything it sends
// and logs the fix once per interval. It is the tool for checking wiring
// and antenna placement without the display attached.
func RunGPSMonitor(ctx context.Context, interval time.Duration) error {
	cfg := config.Get()

	src, err := openGPS(cfg)
	if err != nil {
		return fmt.Errorf("gps: %w", err)
	}
	defer src.Close()

	dec := gps.NewDecoder()
	feed := gps.NewFeed(dec)

	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()
	report := time.NewTicker(interval)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
			drainLines(src, feed)
		case <-report.C:
			fix := dec.Fix()
			log.Printf("gps: fix=%s valid=%v course=%.1f speed=%.1fkn alt=%.1fm sats=%d/%d sentences=%d errors=%d",
				fix.Quality, fix.Valid, fix.Course, fix.Speed.Knots, fix.Altitude,
				fix.SatellitesUsed, fix.SatellitesInView, fix.Sentences, fix.ParseErrors)
		}
	}
}

// drainLines feeds every line src has ready and returns how many there were.
func drainLines(src gps.LineSource, feed *gps.Feed) int {
	n := 0
	for {
		line, ok := src.Poll()
		if !ok {
			return n
		}
		feed.FeedLine(line)
		n++
	}
}
