package display

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/relabs-tech/gps_compass/internal/gps"
)

func TestSector_Table(t *testing.T) {
	want := map[Direction][]float64{
		North:     {0, 44, 360, 720},
		NorthEast: {45, 89},
		East:      {90, 134},
		SouthEast: {135, 179},
		South:     {180, 224},
		SouthWest: {225, 269},
		West:      {270, 314},
		NorthWest: {315, 350 - 22.5, 359, 359.9 - 22.5},
	}
	for dir, bearings := range want {
		for _, b := range bearings {
			if got := sector(b); got != dir {
				t.Errorf("sector(%v)=%v want %v", b, got, dir)
			}
		}
	}

	// every whole bearing lands in floor(b/45)
	for b := 0; b < 360; b++ {
		if got := sector(float64(b)); int(got) != b/45 {
			t.Fatalf("sector(%d)=%v want index %d", b, got, b/45)
		}
	}
}

func TestDirectionFor_Course(t *testing.T) {
	cases := []struct {
		course float64
		want   Direction
	}{
		{0, North},
		{22.4, North},
		{22.5, NorthEast},
		{90, East},
		{180, South},
		{270, West},
		{327.5, NorthWest},
		{337.5, North},
		{350, North},
		{359, North},
		{370, North},
		{-45, NorthWest},
		{-720, North},
		{math.NaN(), North},
		{math.Inf(1), North},
	}
	for _, c := range cases {
		if got := DirectionFor(c.course); got != c.want {
			t.Errorf("DirectionFor(%v)=%v want %v", c.course, got, c.want)
		}
	}
}

func TestDirection_AssetPerPoint(t *testing.T) {
	seen := map[string]bool{}
	for d := North; d <= NorthWest; d++ {
		a := d.Asset()
		if !strings.HasSuffix(a, "-"+d.String()+".jpg") {
			t.Fatalf("asset %q does not match direction %s", a, d)
		}
		if seen[a] {
			t.Fatalf("asset %q used twice", a)
		}
		seen[a] = true
	}
}

func TestUnits_ToggleAndLabels(t *testing.T) {
	u := Metric
	if u.SpeedLabel() != "km/h" || u.AltitudeLabel() != "m" {
		t.Fatalf("metric labels %q %q", u.SpeedLabel(), u.AltitudeLabel())
	}
	u = u.Toggle()
	if u != Imperial || u.SpeedLabel() != "mph" || u.AltitudeLabel() != "ft" {
		t.Fatalf("imperial labels %v %q %q", u, u.SpeedLabel(), u.AltitudeLabel())
	}
	if u.Toggle() != Metric {
		t.Fatalf("double toggle is not metric")
	}
	if got := Imperial.Altitude(100); math.Abs(got-328.084) > 1e-9 {
		t.Fatalf("100 m = %v ft", got)
	}
}

func TestSelect_RegionsFollowQuality(t *testing.T) {
	base := gps.Fix{
		Course:           90,
		Speed:            gps.SpeedFromKnots(10),
		Altitude:         250,
		SatellitesInView: 5,
	}

	noFix := base
	v := Select(noFix, Metric)
	if v.Heading || v.SpeedText != Placeholder || v.AltitudeText != Placeholder {
		t.Fatalf("no fix view %+v", v)
	}

	twoD := base
	twoD.Quality = gps.Fix2D
	v = Select(twoD, Metric)
	if !v.Heading || v.Direction != East || v.SpeedText != "19" {
		t.Fatalf("2D view %+v", v)
	}
	if v.AltitudeText != Placeholder {
		t.Fatalf("2D altitude %q want placeholder", v.AltitudeText)
	}

	threeD := base
	threeD.Quality = gps.Fix3D
	v = Select(threeD, Metric)
	if v.AltitudeText != "250" || v.AltitudeWide {
		t.Fatalf("3D altitude %q wide=%v", v.AltitudeText, v.AltitudeWide)
	}
}

func TestSelect_WideAltitudeAndNegativeZero(t *testing.T) {
	fix := gps.Fix{Quality: gps.Fix3D, Altitude: 1000}
	if v := Select(fix, Metric); v.AltitudeText != "1000" || !v.AltitudeWide {
		t.Fatalf("view %+v", v)
	}
	// the shift follows the value, not the number of characters
	fix.Altitude = -1500
	if v := Select(fix, Metric); v.AltitudeText != "-1500" || v.AltitudeWide {
		t.Fatalf("negative view %+v", v)
	}
	fix.Altitude = 999.6
	if v := Select(fix, Metric); v.AltitudeText != "1000" || v.AltitudeWide {
		t.Fatalf("rounded-up view %+v", v)
	}
	fix.Altitude = -0.3
	if v := Select(fix, Metric); v.AltitudeText != "0" {
		t.Fatalf("altitude %q want 0", v.AltitudeText)
	}
	fix.Altitude = 999
	if v := Select(fix, Metric); v.AltitudeWide {
		t.Fatalf("999 should not be wide")
	}
	// 305 m is 1000.66 ft
	fix.Altitude = 305
	if v := Select(fix, Imperial); v.AltitudeText != "1001" || !v.AltitudeWide {
		t.Fatalf("imperial view %+v", v)
	}
}

func TestRender_NoFixShowsAcquiring(t *testing.T) {
	rec := &Recorder{}
	fix := gps.Fix{Quality: gps.NoFix, SatellitesInView: 7}
	if _, err := (Renderer{}).Render(rec, fix, Metric, true); err != nil {
		t.Fatalf("render: %v", err)
	}

	texts := strings.Join(rec.Texts(), "|")
	for _, want := range []string{"Acquiring", "satellites", "in view:", "|7|", "km/h", "m"} {
		if !strings.Contains(texts, want) {
			t.Fatalf("frame %q missing %q", texts, want)
		}
	}
	if n := strings.Count(texts, Placeholder); n != 2 {
		t.Fatalf("placeholders=%d want 2 in %q", n, texts)
	}
	for _, op := range rec.Ops {
		if op.Kind == "image" {
			t.Fatalf("compass image drawn without a fix")
		}
	}
	if rec.Presented != 1 {
		t.Fatalf("presented=%d want 1", rec.Presented)
	}
}

func TestRender_Fix3DScenario(t *testing.T) {
	rec := &Recorder{}
	fix := gps.Fix{
		Quality:  gps.Fix3D,
		Course:   370,
		Speed:    gps.Speed{KPH: 42.6},
		Altitude: 1234.0,
	}
	v, err := (Renderer{}).Render(rec, fix, Metric, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if v.Direction != North {
		t.Fatalf("direction=%v want N", v.Direction)
	}

	if _, ok := rec.FindText("N"); !ok {
		t.Fatalf("direction text missing: %v", rec.Texts())
	}
	if op, ok := rec.FindText("43"); !ok || op.X != speedX {
		t.Fatalf("speed op %+v ok=%v", op, ok)
	}
	op, ok := rec.FindText("1234")
	if !ok {
		t.Fatalf("altitude missing: %v", rec.Texts())
	}
	if op.X != altitudeWideX {
		t.Fatalf("altitude x=%d want %d", op.X, altitudeWideX)
	}
	if _, ok := rec.FindText("o"); !ok {
		t.Fatalf("heartbeat off glyph missing")
	}

	var image Op
	for _, o := range rec.Ops {
		if o.Kind == "image" {
			image = o
		}
	}
	if image.Text != "compass-160-N.jpg" {
		t.Fatalf("compass asset %q", image.Text)
	}
}

func TestRender_UnitToggleConvertsAltitude(t *testing.T) {
	rec := &Recorder{}
	fix := gps.Fix{Quality: gps.Fix3D, Altitude: 100}
	r := Renderer{}

	if _, err := r.Render(rec, fix, Metric, true); err != nil {
		t.Fatal(err)
	}
	if op, ok := rec.FindText("100"); !ok || op.X != altitudeNarrowX {
		t.Fatalf("metric altitude %+v ok=%v", op, ok)
	}

	if _, err := r.Render(rec, fix, Metric.Toggle(), true); err != nil {
		t.Fatal(err)
	}
	if _, ok := rec.FindText("328"); !ok {
		t.Fatalf("imperial altitude missing: %v", rec.Texts())
	}
	if _, ok := rec.FindText("ft"); !ok {
		t.Fatalf("ft label missing")
	}
	if fix.Altitude != 100 {
		t.Fatalf("fix altitude changed to %v", fix.Altitude)
	}
}

func TestRender_ImageErrorDoesNotStopFrame(t *testing.T) {
	missing := errors.New("missing")
	rec := &Recorder{ImageErr: missing}
	fix := gps.Fix{Quality: gps.Fix2D, Course: 180}

	_, err := (Renderer{}).Render(rec, fix, Metric, true)
	if !errors.Is(err, missing) {
		t.Fatalf("err=%v want %v", err, missing)
	}
	if _, ok := rec.FindText("S"); !ok {
		t.Fatalf("direction text missing after image error")
	}
	if rec.Presented != 1 {
		t.Fatalf("frame not presented")
	}
}

func TestRender_Deterministic(t *testing.T) {
	fix := gps.Fix{Quality: gps.Fix3D, Course: 200, Speed: gps.SpeedFromKnots(3), Altitude: 12}
	var frames [][]Op
	rec := &Recorder{Frames: func(ops []Op) { frames = append(frames, ops) }}
	for i := 0; i < 2; i++ {
		if _, err := (Renderer{}).Render(rec, fix, Imperial, true); err != nil {
			t.Fatal(err)
		}
	}
	if len(frames) != 2 || len(frames[0]) != len(frames[1]) {
		t.Fatalf("frames %d", len(frames))
	}
	for i := range frames[0] {
		if frames[0][i].String() != frames[1][i].String() {
			t.Fatalf("op %d differs: %s vs %s", i, frames[0][i], frames[1][i])
		}
	}
}
