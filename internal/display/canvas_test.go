package display

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/relabs-tech/gps_compass/internal/gps"
)

type fakePanel struct {
	bounds image.Rectangle
	last   image.Image
	draws  int
}

func (p *fakePanel) Bounds() image.Rectangle { return p.bounds }

func (p *fakePanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	p.last = src
	p.draws++
	return nil
}

type fakeBacklight struct{ level float64 }

func (b *fakeBacklight) SetLevel(level float64) error {
	b.level = level
	return nil
}

func sameRGB(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return ar == br && ag == bg && ab == bb
}

func countColor(img *image.RGBA, r image.Rectangle, c color.Color) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if sameRGB(img.At(x, y), c) {
				n++
			}
		}
	}
	return n
}

func TestCanvas_ClearAndText(t *testing.T) {
	c := NewCanvas(0, 0, nil, nil, t.TempDir())
	if b := c.Frame().Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Fatalf("bounds %v", b)
	}

	c.SetColor(BackgroundBlue)
	c.Clear()
	if !sameRGB(c.Frame().At(319, 239), BackgroundBlue) {
		t.Fatalf("corner not cleared to background")
	}

	c.SetColor(White)
	c.DrawText("43", 200, 35, 319, 1.4)
	if n := countColor(c.Frame(), image.Rect(200, 35, 260, 80), White); n == 0 {
		t.Fatalf("no text pixels drawn")
	}
	if n := countColor(c.Frame(), image.Rect(0, 0, 190, 30), White); n != 0 {
		t.Fatalf("%d text pixels outside the text box", n)
	}
}

func TestCanvas_WrapLines(t *testing.T) {
	c := NewCanvas(0, 0, nil, nil, "")
	// 7 px glyphs at scale 2: "in view:" is 112 px wide
	if got := c.wrapLines("in view:", 160, 2); len(got) != 1 {
		t.Fatalf("lines=%q want one", got)
	}
	got := c.wrapLines("in view:", 80, 2)
	if len(got) != 2 || got[0] != "in" || got[1] != "view:" {
		t.Fatalf("lines=%q", got)
	}
	if got := c.wrapLines("satellites", 10, 2); len(got) != 1 {
		t.Fatalf("single word split: %q", got)
	}
}

func TestCanvas_Line(t *testing.T) {
	c := NewCanvas(0, 0, nil, nil, "")
	c.SetColor(BackgroundBlue)
	c.Clear()
	c.SetColor(LineBlue)
	c.DrawLine(170, 125, 310, 125, 4)

	if !sameRGB(c.Frame().At(240, 125), LineBlue) {
		t.Fatalf("line centre not drawn")
	}
	if !sameRGB(c.Frame().At(240, 130), BackgroundBlue) {
		t.Fatalf("line thicker than requested")
	}
	if !sameRGB(c.Frame().At(100, 125), BackgroundBlue) {
		t.Fatalf("line drawn past its start")
	}
}

func writeJPEG(t *testing.T, dir, name string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatal(err)
	}
}

func TestCanvas_ImageAssetCached(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, dir, North.Asset(), 16, 16, color.RGBA{R: 255, A: 255})

	c := NewCanvas(0, 0, nil, nil, dir)
	if err := c.DrawImage(North.Asset(), 2, 4, 1); err != nil {
		t.Fatalf("draw: %v", err)
	}
	r, g, _, _ := c.Frame().At(10, 10).RGBA()
	if r>>8 < 200 || g>>8 > 60 {
		t.Fatalf("asset pixel not red: r=%d g=%d", r>>8, g>>8)
	}

	// cached: removing the file does not matter any more
	if err := os.Remove(filepath.Join(dir, North.Asset())); err != nil {
		t.Fatal(err)
	}
	if err := c.DrawImage(North.Asset(), 2, 4, 1); err != nil {
		t.Fatalf("cached draw: %v", err)
	}

	if err := c.DrawImage(South.Asset(), 2, 4, 1); err == nil {
		t.Fatalf("missing asset drew without error")
	}
}

func TestCanvas_PresentScalesToPanel(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, 128, 64)}
	bl := &fakeBacklight{}
	c := NewCanvas(0, 0, panel, bl, t.TempDir())

	fix := gps.Fix{Quality: gps.NoFix, SatellitesInView: 3}
	if _, err := (Renderer{}).Render(c, fix, Metric, true); err != nil {
		t.Fatalf("render: %v", err)
	}
	if panel.draws != 1 {
		t.Fatalf("draws=%d want 1", panel.draws)
	}
	if panel.last.Bounds() != panel.bounds {
		t.Fatalf("presented %v want %v", panel.last.Bounds(), panel.bounds)
	}

	if err := c.SetBacklight(1.7); err != nil {
		t.Fatal(err)
	}
	if bl.level != 1 {
		t.Fatalf("backlight=%v want clamped 1", bl.level)
	}
}
