package sbmigrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Site Builder media tiers. Mobile styles cap at 767px, desktop styles
// start at 768px; every legacy breakpoint collapses into one of the two.
const (
	MobileMaxWidth  = 767
	DesktopMinWidth = 768
)

var mediaWidthPattern = regexp.MustCompile(`\(\s*(min-width|max-width)\s*:\s*([0-9]+(?:\.[0-9]+)?)\s*px\s*\)`)

// normalizeBreakpoints rewrites every width feature inside a media
// expression to the nearest standard tier. Widths already on a tier
// pass through unchanged; widths outside media expressions (element
// max-width and friends) are never touched.
func normalizeBreakpoints(content string) string {
	return mediaWidthPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := mediaWidthPattern.FindStringSubmatch(m)
		width, err := strconv.ParseFloat(sub[2], 64)
		if err != nil {
			return m
		}
		return fmt.Sprintf("(%s: %dpx)", sub[1], nearestTier(width))
	})
}

func nearestTier(width float64) int {
	if width-MobileMaxWidth <= DesktopMinWidth-width {
		return MobileMaxWidth
	}
	return DesktopMinWidth
}

// mediaQueryFor resolves a legacy breakpoint mixin argument (a named
// alias or a pixel width) to its standard media expression.
func mediaQueryFor(arg string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "mobile", "phone", "small", "xs", "sm":
		return fmt.Sprintf("(max-width: %dpx)", MobileMaxWidth), true
	case "tablet", "desktop", "medium", "large", "md", "lg", "xl":
		return fmt.Sprintf("(min-width: %dpx)", DesktopMinWidth), true
	}

	width, ok := parsePixelWidth(arg)
	if !ok {
		return "", false
	}
	if width <= MobileMaxWidth {
		return fmt.Sprintf("(max-width: %dpx)", MobileMaxWidth), true
	}
	return fmt.Sprintf("(min-width: %dpx)", DesktopMinWidth), true
}

func parsePixelWidth(arg string) (float64, bool) {
	arg = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(arg), "px"))
	if arg == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(arg, 64)
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}
