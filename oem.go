package sbmigrate

import "strings"

// OEMHandler supplies brand-specific map detection overrides. Brands
// ship their own map partials under different names, so the generic
// keyword tables miss them; a handler's lists REPLACE the generic
// ones rather than extend them.
type OEMHandler interface {
	// Name identifies the brand family.
	Name() string

	// MapPatterns returns regular expressions matched against
	// @import references. Empty keeps the generic keyword matching.
	MapPatterns() []string

	// PartialKeywords returns the tokens that mark a template
	// partial as map-related. Empty keeps the generic keywords.
	PartialKeywords() []string

	// ForceMapMigration reports whether explicitly imported map
	// stylesheets should also be treated as implicit components, so
	// their partials are migrated even when the import already works.
	ForceMapMigration() bool
}

// OEMFor resolves a brand name to its handler. Unknown and empty
// names get the generic handler.
func OEMFor(name string) OEMHandler {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "toyota", "lexus":
		return toyotaOEM{}
	case "honda", "acura":
		return hondaOEM{}
	case "stellantis", "chrysler", "dodge", "jeep", "ram", "fiat":
		return stellantisOEM{}
	default:
		return genericOEM{}
	}
}

type genericOEM struct{}

func (genericOEM) Name() string              { return "generic" }
func (genericOEM) MapPatterns() []string     { return nil }
func (genericOEM) PartialKeywords() []string { return nil }
func (genericOEM) ForceMapMigration() bool   { return false }

// Toyota/Lexus themes name their map bundle after the store locator
// component.
type toyotaOEM struct{}

func (toyotaOEM) Name() string { return "toyota" }
func (toyotaOEM) MapPatterns() []string {
	return []string{
		`(?i)(?:^|/)_?(?:dealer-?locator|store-?locator)(?:\.scss)?$`,
		`(?i)(?:^|/)_?map(?:s)?(?:[-_][a-z0-9]+)*(?:\.scss)?$`,
	}
}
func (toyotaOEM) PartialKeywords() []string {
	return []string{"map", "maps", "locator", "dealer-locator", "store-locator"}
}
func (toyotaOEM) ForceMapMigration() bool { return false }

// Honda/Acura themes fold directions into the map partials.
type hondaOEM struct{}

func (hondaOEM) Name() string { return "honda" }
func (hondaOEM) MapPatterns() []string {
	return []string{
		`(?i)(?:^|/)_?(?:map|maps|directions?)(?:[-_][a-z0-9]+)*(?:\.scss)?$`,
	}
}
func (hondaOEM) PartialKeywords() []string {
	return []string{"map", "maps", "directions", "direction", "hours-directions"}
}
func (hondaOEM) ForceMapMigration() bool { return false }

// Stellantis brands reuse one platform map that only renders through
// Site Builder, so even working explicit imports have to migrate.
type stellantisOEM struct{}

func (stellantisOEM) Name() string { return "stellantis" }
func (stellantisOEM) MapPatterns() []string {
	return []string{
		`(?i)(?:^|/)_?(?:map|maps|location|locations)(?:[-_][a-z0-9]+)*(?:\.scss)?$`,
	}
}
func (stellantisOEM) PartialKeywords() []string {
	return []string{"map", "maps", "location", "locations", "find-us"}
}
func (stellantisOEM) ForceMapMigration() bool { return true }
