package gps

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReaderSource_PollNeverBlocks(t *testing.T) {
	pr, pw := io.Pipe()
	src := NewReaderSource("pipe", pr)
	defer src.Close()

	start := time.Now()
	if _, ok := src.Poll(); ok {
		t.Fatalf("got a line from an empty stream")
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("Poll blocked for %v", time.Since(start))
	}

	go func() {
		_, _ = pw.Write([]byte(ggaSample + "\r\n" + rmcSample + "\n"))
	}()

	var got []string
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		if line, ok := src.Poll(); ok {
			got = append(got, string(line))
			continue
		}
		time.Sleep(time.Millisecond)
	}
	if len(got) != 2 || got[0] != ggaSample || got[1] != rmcSample {
		t.Fatalf("lines=%q", got)
	}
}

func TestReaderSource_StopsOnEOF(t *testing.T) {
	src := NewReaderSource("string", io.NopCloser(strings.NewReader(gsaSample)))
	select {
	case <-src.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("reader did not stop at EOF")
	}
	line, ok := src.Poll()
	if !ok || string(line) != gsaSample {
		t.Fatalf("line=%q ok=%v", line, ok)
	}
	if _, ok := src.Poll(); ok {
		t.Fatalf("extra line after EOF")
	}
}

func TestReaderSource_DropsWhenQueueFull(t *testing.T) {
	var b strings.Builder
	for i := 0; i < lineQueueLen+10; i++ {
		b.WriteString(gsaSample + "\n")
	}
	src := NewReaderSource("burst", io.NopCloser(strings.NewReader(b.String())))
	<-src.Done()
	if src.Dropped() != 10 {
		t.Fatalf("dropped=%d want 10", src.Dropped())
	}
}

func TestMockSource_SessionParses(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newMockSource(func() time.Time { return now })
	d := NewDecoder()
	f := NewFeed(d)

	drain := func() {
		for {
			line, ok := m.Poll()
			if !ok {
				return
			}
			f.FeedLine(line)
		}
	}

	drain()
	if d.Fix().Quality != NoFix {
		t.Fatalf("quality=%v want none while acquiring", d.Fix().Quality)
	}

	now = now.Add(5 * time.Second)
	drain()
	if d.Fix().SatellitesInView != 5 {
		t.Fatalf("sats in view=%d want 5", d.Fix().SatellitesInView)
	}

	now = now.Add(4 * time.Second)
	drain()
	if d.Fix().Quality != Fix2D {
		t.Fatalf("quality=%v want 2d", d.Fix().Quality)
	}

	now = now.Add(3 * time.Second)
	drain()
	fix := d.Fix()
	if fix.Quality != Fix3D {
		t.Fatalf("quality=%v want 3d", fix.Quality)
	}
	if fix.ParseErrors != 0 {
		t.Fatalf("mock produced %d unparsable sentences", fix.ParseErrors)
	}
	if fix.Sentences != 16 {
		t.Fatalf("sentences=%d want 16", fix.Sentences)
	}
	if fix.Speed.Knots != 23 || !fix.Valid {
		t.Fatalf("fix=%+v", fix)
	}
}

func TestMockSource_OneBurstPerPeriod(t *testing.T) {
	now := time.Unix(0, 0)
	m := newMockSource(func() time.Time { return now })
	n := 0
	for i := 0; i < 10; i++ {
		if _, ok := m.Poll(); ok {
			n++
		}
	}
	if n != 4 {
		t.Fatalf("lines=%d want 4", n)
	}
}

func TestFileSource_ReplaysAndLoops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.nmea")
	content := gsaSample + "\n\n" + ggaSample + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := OpenFile(path, time.Second)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	now := time.Unix(100, 0)
	src.now = func() time.Time { return now }
	src.next = now

	want := []string{gsaSample, ggaSample, gsaSample}
	for i, w := range want {
		line, ok := src.Poll()
		if !ok || string(line) != w {
			t.Fatalf("poll %d: %q ok=%v", i, line, ok)
		}
		if _, ok := src.Poll(); ok {
			t.Fatalf("poll %d: second line within interval", i)
		}
		now = now.Add(time.Second)
	}
}

func TestOpenFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.nmea")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path, time.Second); err == nil {
		t.Fatalf("expected error for empty replay file")
	}
}
