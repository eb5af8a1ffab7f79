package coupon

import "strings"

// mapCatalog implements Catalog using a map keyed by upper-cased code.
type mapCatalog struct {
	rules map[string]Rule
}

// NewMapCatalog creates a new map-based catalog.
func NewMapCatalog(capacity int) Catalog {
	return &mapCatalog{
		rules: make(map[string]Rule, capacity),
	}
}

// Lookup returns the rule for code, ignoring case.
func (c *mapCatalog) Lookup(code string) (Rule, bool) {
	r, ok := c.rules[normalizeCode(code)]
	return r, ok
}

// Size returns the number of coupons in the catalog.
func (c *mapCatalog) Size() int {
	return len(c.rules)
}

// Add stores r, replacing any earlier rule with the same code.
func (c *mapCatalog) Add(r Rule) {
	r.Code = normalizeCode(r.Code)
	c.rules[r.Code] = r
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
