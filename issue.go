package sbmigrate

// Violation represents a single audit finding in golangci-lint format,
// so editor integrations that understand that shape can consume the
// JSON output directly.
type Violation struct {
	FromCheck   string       `json:"FromLinter"`  // "chrome-exclusion"
	Text        string       `json:"Text"`        // `header selector ".site-header" will be dropped by migration`
	Severity    string       `json:"Severity"`    // "", "warning", "error"
	SourceLines []string     `json:"SourceLines"` // Lines of code with the finding
	Pos         ViolationPos `json:"Pos"`         // File location
	LineRange   *LineRange   `json:"LineRange"`   // Optional range for multi-line selectors

	// Category and Selector carry the classification detail for the
	// text reporters; the JSON shape above is what external tools see.
	Category Category `json:"-"`
	Selector string   `json:"-"`
}

// ViolationPos specifies the exact location of a finding
type ViolationPos struct {
	Filename string `json:"Filename"` // "css/style.scss"
	Line     int    `json:"Line"`     // 35
	Column   int    `json:"Column"`   // 15 (1-based, start of the matched fragment)
}

// LineRange specifies a range of lines
type LineRange struct {
	From int `json:"From"`
	To   int `json:"To"`
}

// Severity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = ""
)

// Check names
const (
	CheckChromeExclusion = "chrome-exclusion"
)
