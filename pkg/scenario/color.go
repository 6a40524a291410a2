package scenario

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultColor is used for bodies without a parsable color.
var DefaultColor = color.RGBA{200, 200, 255, 255}

// ParseColor accepts "r-g-b" decimal triples and "#rrggbb" hex strings.
func ParseColor(s string) color.RGBA {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		var r, g, b uint8
		if len(s) == 7 {
			n, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
			if err == nil && n == 3 {
				return color.RGBA{r, g, b, 255}
			}
		}
		return DefaultColor
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return DefaultColor
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return DefaultColor
		}
		rgb[i] = uint8(v)
	}
	return color.RGBA{rgb[0], rgb[1], rgb[2], 255}
}

// FormatColor renders c in the "r-g-b" form.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("%d-%d-%d", c.R, c.G, c.B)
}
