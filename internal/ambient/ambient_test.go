package ambient

import (
	"math"
	"testing"
)

func TestSampler_AverageAndReset(t *testing.T) {
	var s Sampler
	for _, v := range []uint16{100, 200, 300, 400} {
		s.Accumulate(v)
	}
	if s.Count() != 4 {
		t.Fatalf("count=%d want 4", s.Count())
	}
	if got := s.AverageAndReset(); got != 250 {
		t.Fatalf("avg=%v want 250", got)
	}
	if s.Count() != 0 {
		t.Fatalf("count after reset=%d want 0", s.Count())
	}
	if got := s.AverageAndReset(); got != 0 {
		t.Fatalf("avg after reset=%v want 0", got)
	}
}

func TestSampler_EmptyIsZero(t *testing.T) {
	var s Sampler
	if got := s.AverageAndReset(); got != 0 {
		t.Fatalf("avg=%v want 0", got)
	}
	if s.Count() != 0 {
		t.Fatalf("count=%d want 0", s.Count())
	}
	s.Accumulate(10)
	if got := s.AverageAndReset(); got != 10 {
		t.Fatalf("avg=%v want 10", got)
	}
}

func TestSampler_NoOverflowAtFullScale(t *testing.T) {
	var s Sampler
	for i := 0; i < 100000; i++ {
		s.Accumulate(math.MaxUint16)
	}
	if got := s.AverageAndReset(); got != math.MaxUint16 {
		t.Fatalf("avg=%v want %v", got, math.MaxUint16)
	}
}

func TestController_StaysInBounds(t *testing.T) {
	c := DefaultController()
	for cur := c.MinLevel; cur <= c.MaxLevel+1e-9; cur += 0.01 {
		for _, amb := range []float64{0, 1, 50, 90, 179, 180, 181, 500, 1e6} {
			got := c.NextLevel(amb, cur)
			if got < c.MinLevel || got > c.MaxLevel {
				t.Fatalf("NextLevel(%v, %v)=%v out of [%v,%v]", amb, cur, got, c.MinLevel, c.MaxLevel)
			}
		}
	}
}

func TestController_OneStepTowardTarget(t *testing.T) {
	c := DefaultController()

	// target = 144/180 = 0.8
	if got := c.NextLevel(144, 0.6); math.Abs(got-0.65) > 1e-9 {
		t.Fatalf("up step: got %v want 0.65", got)
	}
	// target = 0.6
	if got := c.NextLevel(108, 0.9); math.Abs(got-0.85) > 1e-9 {
		t.Fatalf("down step: got %v want 0.85", got)
	}
	// target == current
	if got := c.NextLevel(144, 0.8); got != 0.8 {
		t.Fatalf("equal: got %v want 0.8", got)
	}
}

func TestController_Clamps(t *testing.T) {
	c := DefaultController()
	if got := c.NextLevel(1000, 0.99); got != c.MaxLevel {
		t.Fatalf("got %v want max %v", got, c.MaxLevel)
	}
	if got := c.NextLevel(0, 0.52); got != c.MinLevel {
		t.Fatalf("got %v want min %v", got, c.MinLevel)
	}
}

func TestController_ConvergesMonotonically(t *testing.T) {
	c := DefaultController()
	const ambient = 162.0 // target 0.9
	level := c.MinLevel
	steps := 0
	for math.Abs(level-0.9) > c.Step/2 {
		next := c.NextLevel(ambient, level)
		if math.Abs(next-level-c.Step) > 1e-9 {
			t.Fatalf("step %d: %v -> %v, want +%v", steps, level, next, c.Step)
		}
		level = next
		steps++
		if steps > 20 {
			t.Fatalf("did not converge, level=%v", level)
		}
	}
	if steps != 8 {
		t.Fatalf("steps=%d want 8", steps)
	}

	// Once there it stays within one step of the target.
	for i := 0; i < 10; i++ {
		level = c.NextLevel(ambient, level)
		if math.Abs(level-0.9) > c.Step+1e-9 {
			t.Fatalf("settled level=%v drifted from 0.9", level)
		}
	}
}
