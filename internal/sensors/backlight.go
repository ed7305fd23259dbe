package sensors

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SysfsBacklight drives a Linux backlight class device by writing its
// brightness file. The scale comes from max_brightness next to it.
type SysfsBacklight struct {
	path string
	max  int
	last int
}

func OpenSysfsBacklight(path string) (*SysfsBacklight, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("backlight: %w", err)
	}
	max := 255
	if b, err := os.ReadFile(filepath.Join(filepath.Dir(path), "max_brightness")); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(string(b))); err == nil && v > 0 {
			max = v
		}
	}
	return &SysfsBacklight{path: path, max: max, last: -1}, nil
}

// SetLevel writes level (0..1) scaled to max_brightness. Repeating the
// current value does not touch the file.
func (b *SysfsBacklight) SetLevel(level float64) error {
	v := int(math.Round(clamp01(level) * float64(b.max)))
	if v == b.last {
		return nil
	}
	if err := os.WriteFile(b.path, []byte(strconv.Itoa(v)), 0644); err != nil {
		return fmt.Errorf("backlight write: %w", err)
	}
	b.last = v
	return nil
}
