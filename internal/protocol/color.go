package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB triple for the device's status LED.
type Color struct {
	R, G, B uint8
}

// Predefined LED colors.
var (
	ColorOff    = Color{0, 0, 0}
	ColorRed    = Color{255, 0, 0}
	ColorGreen  = Color{0, 255, 0}
	ColorBlue   = Color{0, 0, 255}
	ColorYellow = Color{255, 255, 0}
	ColorPurple = Color{255, 0, 255}
	ColorCyan   = Color{0, 255, 255}
	ColorWhite  = Color{255, 255, 255}
	ColorOrange = Color{255, 165, 0}
)

// RGB renders the color in the wire payload format "R,G,B".
func (c Color) RGB() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.RGB()
}

// ParseColor parses "R,G,B" decimal or "RRGGBB" hex text into a Color.
// Decimal channels are clamped to [0,255]; anything else is an error.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return Color{}, fmt.Errorf("invalid color %q: want 3 channels, got %d", s, len(parts))
		}
		var ch [3]uint8
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return Color{}, fmt.Errorf("invalid color %q: channel %d: %v", s, i+1, err)
			}
			ch[i] = clampChannel(v)
		}
		return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
	}

	if len(s) == 6 {
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %v", s, err)
		}
		return Color{
			R: uint8(v >> 16),
			G: uint8(v >> 8),
			B: uint8(v),
		}, nil
	}

	return Color{}, fmt.Errorf("invalid color %q: want \"R,G,B\" or \"RRGGBB\"", s)
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
