package colors

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

func rgb(r, g, b float64) colorful.Color { return colorful.Color{R: r, G: g, B: b} }

// named holds the Magics colour palette plus the CSS names weather charts
// commonly use.
var named = map[string]colorful.Color{
	"automatic":        rgb(0, 0, 0),
	"background":       rgb(1, 1, 1),
	"foreground":       rgb(0, 0, 0),
	"ecmwf_blue":       rgb(0.25, 0.43, 0.7),
	"red":              rgb(1, 0, 0),
	"green":            rgb(0, 1, 0),
	"blue":             rgb(0, 0, 1),
	"yellow":           rgb(1, 1, 0),
	"cyan":             rgb(0, 1, 1),
	"magenta":          rgb(1, 0, 1),
	"black":            rgb(0, 0, 0),
	"avocado":          rgb(0.4225, 0.65, 0.195),
	"beige":            rgb(0.85, 0.7178, 0.4675),
	"brick":            rgb(0.6, 0.0844, 0.03),
	"brown":            rgb(0.4078, 0.0643, 0),
	"burgundy":         rgb(0.5, 0, 0.1727),
	"charcoal":         rgb(0.2, 0.2, 0.2),
	"chestnut":         rgb(0.32, 0.0112, 0),
	"coral":            rgb(0.9, 0.2895, 0.225),
	"cream":            rgb(1, 0.886, 0.67),
	"evergreen":        rgb(0, 0.45, 0.2945),
	"gold":             rgb(0.75, 0.5751, 0.075),
	"grey":             rgb(0.7, 0.7, 0.7),
	"khaki":            rgb(0.58, 0.4798, 0.29),
	"kelly_green":      rgb(0, 0.55, 0.19),
	"lavender":         rgb(0.617, 0.407, 0.94),
	"mustard":          rgb(0.6, 0.3927, 0),
	"navy":             rgb(0, 0, 0.4),
	"ochre":            rgb(0.68, 0.4501, 0.068),
	"olive":            rgb(0.3012, 0.3765, 0),
	"peach":            rgb(0.94, 0.4739, 0.3788),
	"pink":             rgb(0.9, 0.36, 0.4116),
	"rose":             rgb(0.8, 0.24, 0.4335),
	"rust":             rgb(0.7, 0.201, 0),
	"sky":              rgb(0.45, 0.64, 1),
	"tan":              rgb(0.4, 0.3309, 0.2),
	"tangerine":        rgb(0.8784, 0.4226, 0),
	"turquoise":        rgb(0.1111, 0.7216, 0.6503),
	"violet":           rgb(0.4823, 0.07, 0.7),
	"reddish_purple":   rgb(1, 0, 0.8536),
	"purple_red":       rgb(1, 0, 0.5),
	"purplish_red":     rgb(1, 0, 0.273),
	"orangish_red":     rgb(1, 0.0381, 0),
	"red_orange":       rgb(1, 0.1464, 0),
	"reddish_orange":   rgb(1, 0.3087, 0),
	"orange":           rgb(1, 0.5, 0),
	"yellowish_orange": rgb(1, 0.6913, 0),
	"orange_yellow":    rgb(1, 0.8536, 0),
	"orangish_yellow":  rgb(1, 0.9619, 0),
	"greenish_yellow":  rgb(0.8536, 1, 0),
	"yellow_green":     rgb(0.5, 1, 0),
	"yellowish_green":  rgb(0.1464, 1, 0),
	"bluish_green":     rgb(0, 1, 0.5),
	"blue_green":       rgb(0, 1, 1),
	"greenish_blue":    rgb(0, 0.5, 1),
	"purplish_blue":    rgb(0.1464, 0, 1),
	"blue_purple":      rgb(0.5, 0, 1),
	"bluish_purple":    rgb(0.8536, 0, 1),
	"purple":           rgb(1, 0, 1),
	"white":            rgb(1, 1, 1),

	// CSS
	"gray":      rgb(0.5, 0.5, 0.5),
	"silver":    rgb(0.75, 0.75, 0.75),
	"maroon":    rgb(0.5, 0, 0),
	"teal":      rgb(0, 0.5, 0.5),
	"lime":      rgb(0, 1, 0),
	"aqua":      rgb(0, 1, 1),
	"fuchsia":   rgb(1, 0, 1),
	"darkblue":  rgb(0, 0, 0.545),
	"lightgrey": rgb(0.827, 0.827, 0.827),
	"darkgrey":  rgb(0.663, 0.663, 0.663),
}

// Names returns the known colour names in sorted order.
func Names() []string {
	out := make([]string, 0, len(named))
	for name := range named {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
