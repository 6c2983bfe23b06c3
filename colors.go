package sbmigrate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// knownColors maps common literal hexes to the palette custom
// properties Site Builder themes define. Only exact matches convert;
// anything else is left alone.
var knownColors = map[string]string{
	"#fff":    "white",
	"#ffffff": "white",
	"#000":    "black",
	"#000000": "black",
	"#333":    "gray-dark",
	"#333333": "gray-dark",
	"#666":    "gray",
	"#666666": "gray",
	"#999":    "gray-light",
	"#999999": "gray-light",
	"#ccc":    "gray-lighter",
	"#cccccc": "gray-lighter",
	"#eee":    "off-white",
	"#eeeeee": "off-white",
	"#f5f5f5": "off-white",
}

var hexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

// convertKnownColors swaps recognized hex literals for var() references
// with the literal kept as fallback. Hexes already sitting inside a
// var() expression stay untouched so repeated runs are stable.
func convertKnownColors(content string) string {
	matches := hexColorPattern.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	var out strings.Builder
	out.Grow(len(content) + 32*len(matches))
	last := 0

	for _, m := range matches {
		hex := strings.ToLower(content[m[0]:m[1]])
		name, ok := knownColors[hex]
		if !ok || insideVarExpr(content, m[0]) {
			continue
		}
		out.WriteString(content[last:m[0]])
		out.WriteString("var(--" + name + ", " + hex + ")")
		last = m[1]
	}

	out.WriteString(content[last:])
	return out.String()
}

// insideVarExpr reports whether pos sits inside an open var(...) on its
// line.
func insideVarExpr(content string, pos int) bool {
	lineStart := strings.LastIndexByte(content[:pos], '\n') + 1
	seg := content[lineStart:pos]

	inVar := false
	depth := 0
	for i := 0; i < len(seg); i++ {
		switch seg[i] {
		case '(':
			if inVar {
				depth++
			} else if i >= 3 && seg[i-3:i] == "var" && (i == 3 || !isWordByte(seg[i-4])) {
				inVar = true
				depth = 1
			}
		case ')':
			if inVar {
				depth--
				if depth == 0 {
					inVar = false
				}
			}
		}
	}
	return inVar
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// parseHexColor accepts #rgb and #rrggbb forms.
func parseHexColor(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff), true
}

// darkenHex lowers the HSL lightness of a hex color by pct points,
// matching what the Sass darken() function produced in the legacy
// stylesheets. Output is always the six-digit lowercase form.
func darkenHex(hex string, pct float64) (string, bool) {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return "", false
	}

	h, s, l := rgbToHSL(r, g, b)
	l -= pct / 100
	if l < 0 {
		l = 0
	}
	if l > 1 {
		l = 1
	}
	r, g, b = hslToRGB(h, s, l)

	return fmt.Sprintf("#%02x%02x%02x", r, g, b), true
}

func rgbToHSL(r, g, b int) (h, s, l float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case rf:
		h = (gf - bf) / d
		if gf < bf {
			h += 6
		}
	case gf:
		h = (bf-rf)/d + 2
	case bf:
		h = (rf-gf)/d + 4
	}
	h /= 6
	return h, s, l
}

func hslToRGB(h, s, l float64) (r, g, b int) {
	if s == 0 {
		v := int(math.Round(l * 255))
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	rf := hueToChannel(p, q, h+1.0/3)
	gf := hueToChannel(p, q, h)
	bf := hueToChannel(p, q, h-1.0/3)

	return int(math.Round(rf * 255)), int(math.Round(gf * 255)), int(math.Round(bf * 255))
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
