package sbmigrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// indentUnit is the step used when an expansion adds a nesting level.
const indentUnit = "  "

// defaultMixinRegistry holds the legacy dealer mixin library. Each
// handler receives split arguments and returns the literal replacement,
// or ok=false to leave the call site untouched and report it.
func defaultMixinRegistry() map[string]mixinHandler {
	handlers := []mixinHandler{
		// Positioning
		{name: "center", minArgs: 0, maxArgs: 1, expand: expandCenter},

		// Flexbox
		{name: "flexbox", minArgs: 0, maxArgs: 0, expand: expandFlexbox},
		{name: "inline-flex", minArgs: 0, maxArgs: 0, expand: expandInlineFlex},
		{name: "justify-content", minArgs: 1, maxArgs: 1, expand: expandJustifyContent},
		{name: "align-items", minArgs: 1, maxArgs: 1, expand: expandAlignItems},
		{name: "flex-direction", minArgs: 1, maxArgs: 1, expand: expandFlexDirection},

		// Effects
		{name: "transform", minArgs: 1, maxArgs: 1, expand: expandTransform},
		{name: "transition", minArgs: 1, maxArgs: -1, expand: expandTransition},

		// Typography
		{name: "responsive-font", minArgs: 3, maxArgs: 3, expand: expandResponsiveFont},
		{name: "font-smoothing", minArgs: 0, maxArgs: 0, expand: expandFontSmoothing},

		// Gradients
		{name: "gradient", minArgs: 2, maxArgs: 2, expand: expandGradientVertical},
		{name: "gradient-horizontal", minArgs: 2, maxArgs: 2, expand: expandGradientHorizontal},

		// Box model
		{name: "border-radius", minArgs: 1, maxArgs: 1, expand: expandBorderRadius},
		{name: "box-shadow", minArgs: 1, maxArgs: -1, expand: expandBoxShadow},
		{name: "box-sizing", minArgs: 1, maxArgs: 1, expand: expandBoxSizing},

		// Vendor-prefixed properties
		{name: "appearance", minArgs: 1, maxArgs: 1, expand: expandAppearance},
		{name: "user-select", minArgs: 1, maxArgs: 1, expand: expandUserSelect},

		// Utility boilerplate
		{name: "clearfix", minArgs: 0, maxArgs: 0, expand: expandClearfix},
		{name: "visually-hidden", minArgs: 0, maxArgs: 0, expand: expandVisuallyHidden},

		// Block forms
		{name: "breakpoint", minArgs: 1, maxArgs: 1, block: true, expand: expandBreakpoint},
		{name: "placeholder", minArgs: 0, maxArgs: 0, block: true, expand: expandPlaceholder},

		// Value helpers
		{name: "z-index", minArgs: 1, maxArgs: 1, expand: expandZIndex},
		{name: "darken", minArgs: 2, maxArgs: 2, expand: expandDarken},
	}

	registry := make(map[string]mixinHandler, len(handlers))
	for _, h := range handlers {
		registry[h.name] = h
	}
	return registry
}

// indentLines joins declaration lines at the call site's indentation.
// The first line lands where the call began, so it carries no prefix.
func indentLines(lines []string, indent string) string {
	return strings.Join(lines, "\n"+indent)
}

func expandCenter(call mixinCall) (string, bool) {
	axis := "both"
	if len(call.args) == 1 {
		axis = strings.ToLower(call.args[0])
	}

	var lines []string
	switch axis {
	case "both", "":
		lines = []string{
			"position: absolute;",
			"top: 50%;",
			"left: 50%;",
			"-webkit-transform: translate(-50%, -50%);",
			"transform: translate(-50%, -50%);",
		}
	case "vertical":
		lines = []string{
			"position: absolute;",
			"top: 50%;",
			"-webkit-transform: translateY(-50%);",
			"transform: translateY(-50%);",
		}
	case "horizontal":
		lines = []string{
			"position: absolute;",
			"left: 50%;",
			"-webkit-transform: translateX(-50%);",
			"transform: translateX(-50%);",
		}
	default:
		return "", false
	}
	return indentLines(lines, call.indent), true
}

func expandFlexbox(call mixinCall) (string, bool) {
	return indentLines([]string{
		"display: -webkit-box;",
		"display: -ms-flexbox;",
		"display: flex;",
	}, call.indent), true
}

func expandInlineFlex(call mixinCall) (string, bool) {
	return indentLines([]string{
		"display: -webkit-inline-box;",
		"display: -ms-inline-flexbox;",
		"display: inline-flex;",
	}, call.indent), true
}

// Old flexbox spec keywords differ from the final ones.
var flexPackNames = map[string]string{
	"flex-start":    "start",
	"flex-end":      "end",
	"space-between": "justify",
	"space-around":  "distribute",
}

func expandJustifyContent(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	pack := value
	if legacy, ok := flexPackNames[value]; ok {
		pack = legacy
	}
	return indentLines([]string{
		"-webkit-box-pack: " + pack + ";",
		"-ms-flex-pack: " + pack + ";",
		"justify-content: " + value + ";",
	}, call.indent), true
}

func expandAlignItems(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	align := strings.TrimPrefix(value, "flex-")
	return indentLines([]string{
		"-webkit-box-align: " + align + ";",
		"-ms-flex-align: " + align + ";",
		"align-items: " + value + ";",
	}, call.indent), true
}

func expandFlexDirection(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	orient := "vertical"
	if strings.HasPrefix(value, "row") {
		orient = "horizontal"
	}
	direction := "normal"
	if strings.HasSuffix(value, "-reverse") {
		direction = "reverse"
	}
	return indentLines([]string{
		"-webkit-box-orient: " + orient + ";",
		"-webkit-box-direction: " + direction + ";",
		"-ms-flex-direction: " + value + ";",
		"flex-direction: " + value + ";",
	}, call.indent), true
}

func expandTransform(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	return indentLines([]string{
		"-webkit-transform: " + value + ";",
		"-ms-transform: " + value + ";",
		"transform: " + value + ";",
	}, call.indent), true
}

func expandTransition(call mixinCall) (string, bool) {
	value := strings.Join(call.args, ", ")
	return indentLines([]string{
		"-webkit-transition: " + value + ";",
		"-o-transition: " + value + ";",
		"transition: " + value + ";",
	}, call.indent), true
}

func expandResponsiveFont(call mixinCall) (string, bool) {
	return fmt.Sprintf("font-size: clamp(%s, %s, %s);",
		strings.TrimSpace(call.args[0]),
		strings.TrimSpace(call.args[1]),
		strings.TrimSpace(call.args[2])), true
}

func expandFontSmoothing(call mixinCall) (string, bool) {
	return indentLines([]string{
		"-webkit-font-smoothing: antialiased;",
		"-moz-osx-font-smoothing: grayscale;",
	}, call.indent), true
}

func expandGradientVertical(call mixinCall) (string, bool) {
	return expandGradient(call, "to bottom")
}

func expandGradientHorizontal(call mixinCall) (string, bool) {
	return expandGradient(call, "to right")
}

func expandGradient(call mixinCall, direction string) (string, bool) {
	from := strings.TrimSpace(call.args[0])
	to := strings.TrimSpace(call.args[1])
	gradient := fmt.Sprintf("linear-gradient(%s, %s, %s)", direction, from, to)
	if !call.standalone {
		return gradient, true
	}
	return indentLines([]string{
		"background: " + from + ";",
		"background: " + gradient + ";",
	}, call.indent), true
}

func expandBorderRadius(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	return indentLines([]string{
		"-webkit-border-radius: " + value + ";",
		"-moz-border-radius: " + value + ";",
		"border-radius: " + value + ";",
	}, call.indent), true
}

func expandBoxShadow(call mixinCall) (string, bool) {
	value := strings.Join(call.args, ", ")
	return indentLines([]string{
		"-webkit-box-shadow: " + value + ";",
		"-moz-box-shadow: " + value + ";",
		"box-shadow: " + value + ";",
	}, call.indent), true
}

func expandBoxSizing(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	return indentLines([]string{
		"-webkit-box-sizing: " + value + ";",
		"-moz-box-sizing: " + value + ";",
		"box-sizing: " + value + ";",
	}, call.indent), true
}

func expandAppearance(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	return indentLines([]string{
		"-webkit-appearance: " + value + ";",
		"-moz-appearance: " + value + ";",
		"appearance: " + value + ";",
	}, call.indent), true
}

func expandUserSelect(call mixinCall) (string, bool) {
	value := strings.TrimSpace(call.args[0])
	return indentLines([]string{
		"-webkit-user-select: " + value + ";",
		"-moz-user-select: " + value + ";",
		"-ms-user-select: " + value + ";",
		"user-select: " + value + ";",
	}, call.indent), true
}

func expandClearfix(call mixinCall) (string, bool) {
	return indentLines([]string{
		"&::after {",
		indentUnit + `content: "";`,
		indentUnit + "display: table;",
		indentUnit + "clear: both;",
		"}",
	}, call.indent), true
}

func expandVisuallyHidden(call mixinCall) (string, bool) {
	return indentLines([]string{
		"position: absolute;",
		"width: 1px;",
		"height: 1px;",
		"padding: 0;",
		"margin: -1px;",
		"overflow: hidden;",
		"clip: rect(0, 0, 0, 0);",
		"white-space: nowrap;",
		"border: 0;",
	}, call.indent), true
}

func expandBreakpoint(call mixinCall) (string, bool) {
	query, ok := mediaQueryFor(call.args[0])
	if !ok {
		return "", false
	}
	return "@media " + query + " {" + call.block + "}", true
}

func expandPlaceholder(call mixinCall) (string, bool) {
	selectors := []string{
		"&::-webkit-input-placeholder",
		"&:-ms-input-placeholder",
		"&::-moz-placeholder",
		"&::placeholder",
	}
	parts := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		parts = append(parts, sel+" {"+call.block+"}")
	}
	return strings.Join(parts, "\n"+call.indent), true
}

// zIndexScale is the stacking ladder the legacy z-index mixin resolved
// its named levels against.
var zIndexScale = map[string]int{
	"below":    -1,
	"base":     1,
	"content":  10,
	"dropdown": 100,
	"sticky":   200,
	"fixed":    300,
	"overlay":  400,
	"modal":    500,
	"popover":  600,
	"tooltip":  700,
}

func expandZIndex(call mixinCall) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(call.args[0]))
	level, ok := zIndexScale[key]
	if !ok {
		n, err := strconv.Atoi(key)
		if err != nil {
			return "", false
		}
		level = n
	}
	// In value position only the integer is wanted.
	if !call.standalone {
		return strconv.Itoa(level), true
	}
	return fmt.Sprintf("z-index: %d;", level), true
}

// varFallbackPattern matches var(--name, fallback) the color pass emits
// around known hex literals.
var varFallbackPattern = regexp.MustCompile(`^var\(\s*--([a-zA-Z0-9_-]+)\s*,\s*([^()]+?)\s*\)$`)

func expandDarken(call mixinCall) (string, bool) {
	color := strings.TrimSpace(call.args[0])
	pctText := strings.TrimSuffix(strings.TrimSpace(call.args[1]), "%")
	pct, err := strconv.ParseFloat(pctText, 64)
	if err != nil {
		return "", false
	}

	if strings.HasPrefix(color, "$") {
		// Cannot compute on a symbolic value; the theme palette defines
		// a pre-darkened companion property instead.
		return "var(--" + strings.TrimPrefix(color, "$") + "-dark)", true
	}

	if m := varFallbackPattern.FindStringSubmatch(color); m != nil {
		// A known hex the color pass already wrapped. Darken the
		// fallback and keep the palette linkage through the -dark
		// companion property.
		darker, ok := darkenHex(m[2], pct)
		if !ok {
			return "", false
		}
		return "var(--" + m[1] + "-dark, " + darker + ")", true
	}

	darker, ok := darkenHex(color, pct)
	if !ok {
		return "", false
	}
	return darker, true
}
