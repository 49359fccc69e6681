package domain

import "strings"

// categoryPrefix is the hierarchical prefix every category page lives under
// on the storefront, e.g. "/kategoria/glosniki/".
const categoryPrefix = "/kategoria/"

// AttributeValue is a single custom attribute carried by a product. An
// attribute is either a discrete dropdown value (StringValue set) or a
// continuous range value (NumericValue set), never both. A given attribute
// name appears at most once per product.
type AttributeValue struct {
	Name         string   `json:"name"`
	StringValue  *string  `json:"string_value,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
}

// ProductFilterMetadata is the flat, read-only filter record kept per catalog
// product. It is the engine's sole input shape; the engine never mutates it.
type ProductFilterMetadata struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	CategoryPath   string           `json:"category_path"`
	CategoryPaths  []string         `json:"category_paths,omitempty"`
	BrandSlug      string           `json:"brand_slug"`
	BasePriceCents *int64           `json:"base_price_cents,omitempty"`
	CertifiedUsed  bool             `json:"certified_used"`
	Attributes     []AttributeValue `json:"attributes,omitempty"`
}

// NormalizeCategoryPath reduces a category reference to its bare slug form so
// that the short slug "glosniki" and the full path "/kategoria/glosniki/"
// compare equal.
func NormalizeCategoryPath(path string) string {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, categoryPrefix)
	p = strings.Trim(p, "/")
	return p
}

// MatchesCategory reports whether the product belongs to the given category,
// referenced either as a short slug or a full hierarchical path. The primary
// category path and every secondary membership path are considered.
func (p *ProductFilterMetadata) MatchesCategory(category string) bool {
	want := NormalizeCategoryPath(category)
	if want == "" {
		return true
	}
	if NormalizeCategoryPath(p.CategoryPath) == want {
		return true
	}
	for _, cp := range p.CategoryPaths {
		if NormalizeCategoryPath(cp) == want {
			return true
		}
	}
	return false
}

// AllCategoryPaths returns the product's primary path plus every secondary
// path, deduplicated by normalized form. Raw path strings are preserved so
// callers can key counts by the stored representation.
func (p *ProductFilterMetadata) AllCategoryPaths() []string {
	seen := make(map[string]struct{}, 1+len(p.CategoryPaths))
	paths := make([]string, 0, 1+len(p.CategoryPaths))

	add := func(raw string) {
		norm := NormalizeCategoryPath(raw)
		if norm == "" {
			return
		}
		if _, ok := seen[norm]; ok {
			return
		}
		seen[norm] = struct{}{}
		paths = append(paths, raw)
	}

	add(p.CategoryPath)
	for _, cp := range p.CategoryPaths {
		add(cp)
	}
	return paths
}

// Attribute returns the attribute with the given name, or nil if the product
// does not carry it.
func (p *ProductFilterMetadata) Attribute(name string) *AttributeValue {
	for i := range p.Attributes {
		if p.Attributes[i].Name == name {
			return &p.Attributes[i]
		}
	}
	return nil
}
