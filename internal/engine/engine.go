// Package engine computes the available filter options for the storefront
// product listing. It is a pure, synchronous computation over an in-memory
// product slice: no I/O, no cross-call state, fresh output maps per call.
//
// The central discipline is exclude-self filtering: the option list or bounds
// for a facet are computed from the catalog narrowed by every active
// constraint EXCEPT that facet's own selection. Applying a facet's selection
// to itself would make it impossible to broaden or change a selection within
// that facet once narrowed.
package engine

import (
	"sort"

	"github.com/kryptonum-dev/audiofast-filters/internal/domain"
)

// Constraints is the configuration record for one pass of the generic filter
// predicate. A nil or empty field is a no-op pass-through for that facet.
type Constraints struct {
	Category      *string
	Brands        []string
	MinPriceCents *int64
	MaxPriceCents *int64
	Attributes    []domain.AttributeMatch
	Ranges        []domain.RangeMatch
	CertifiedOnly bool
}

// From builds the full constraint set corresponding to the active selection.
func From(active domain.ActiveFilters) Constraints {
	return Constraints{
		Category:      active.CategoryPath,
		Brands:        active.Brands,
		MinPriceCents: active.MinPriceCents,
		MaxPriceCents: active.MaxPriceCents,
		Attributes:    active.Attributes,
		Ranges:        active.Ranges,
		CertifiedOnly: active.CertifiedOnly,
	}
}

func (c Constraints) withoutCategory() Constraints {
	c.Category = nil
	return c
}

func (c Constraints) withoutBrands() Constraints {
	c.Brands = nil
	return c
}

func (c Constraints) withoutPrice() Constraints {
	c.MinPriceCents = nil
	c.MaxPriceCents = nil
	return c
}

func (c Constraints) withoutAttributes() Constraints {
	c.Attributes = nil
	return c
}

func (c Constraints) withoutRanges() Constraints {
	c.Ranges = nil
	return c
}

// Filter returns the products satisfying every constraint. The predicates are
// applied left to right: category, brand set, min price, max price, discrete
// attributes, numeric ranges, certified flag. Each step is a pure narrowing
// intersection, so the order only fixes determinism, not the result.
func Filter(products []domain.ProductFilterMetadata, c Constraints) []domain.ProductFilterMetadata {
	out := make([]domain.ProductFilterMetadata, 0, len(products))
	for i := range products {
		if matches(&products[i], c) {
			out = append(out, products[i])
		}
	}
	return out
}

func matches(p *domain.ProductFilterMetadata, c Constraints) bool {
	// Category filter (dual-format tolerant).
	if c.Category != nil && *c.Category != "" {
		if !p.MatchesCategory(*c.Category) {
			return false
		}
	}

	// Brand filter: any of the selected brands.
	if len(c.Brands) > 0 {
		found := false
		for _, b := range c.Brands {
			if p.BrandSlug == b {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Price bounds. A product without a defined price never satisfies an
	// active bound; absence is not coalesced to zero.
	if c.MinPriceCents != nil {
		if p.BasePriceCents == nil || *p.BasePriceCents < *c.MinPriceCents {
			return false
		}
	}
	if c.MaxPriceCents != nil {
		if p.BasePriceCents == nil || *p.BasePriceCents > *c.MaxPriceCents {
			return false
		}
	}

	// Discrete attributes: the product must match every selected value.
	for _, m := range c.Attributes {
		av := p.Attribute(m.Name)
		if av == nil || av.StringValue == nil || *av.StringValue != m.Value {
			return false
		}
	}

	// Numeric ranges: the product must have a defined value inside every
	// active interval. A product lacking the attribute fails the filter even
	// when both bounds are open.
	for _, rm := range c.Ranges {
		av := p.Attribute(rm.Name)
		if av == nil || av.NumericValue == nil {
			return false
		}
		v := *av.NumericValue
		if rm.Min != nil && v < *rm.Min {
			return false
		}
		if rm.Max != nil && v > *rm.Max {
			return false
		}
	}

	// Certified pre-owned flag.
	if c.CertifiedOnly && !p.CertifiedUsed {
		return false
	}

	return true
}

// Compute derives the complete filter state for the given catalog and active
// selection. The input slice is treated as read-only; the result is freshly
// allocated on every call.
func Compute(products []domain.ProductFilterMetadata, active domain.ActiveFilters) *domain.ComputedFilters {
	c := From(active)
	out := domain.NewComputedFilters()

	// Each facet gets its own subset with that facet's selection omitted.
	brandSet := Filter(products, c.withoutBrands())
	categorySet := Filter(products, c.withoutCategory())
	priceSet := Filter(products, c.withoutPrice())
	attrBase := Filter(products, c.withoutAttributes())
	rangeBase := Filter(products, c.withoutRanges())

	for i := range brandSet {
		if brandSet[i].BrandSlug != "" {
			out.BrandCounts[brandSet[i].BrandSlug]++
		}
	}

	// A product counts toward every category it belongs to, not just its
	// primary one.
	for i := range categorySet {
		for _, path := range categorySet[i].AllCategoryPaths() {
			out.CategoryCounts[path]++
		}
	}

	out.PriceRange = priceBounds(priceSet)
	out.TotalCount = len(Filter(products, c))
	out.AllProductsCount = len(categorySet)
	out.AttributeValues = availableAttributeValues(attrBase, active.Attributes)
	out.RangeBounds = availableRangeBounds(rangeBase, active.Ranges)

	return out
}

// priceBounds returns the min/max over defined prices, or a zeroed range when
// no product has a defined price.
func priceBounds(products []domain.ProductFilterMetadata) domain.PriceRange {
	var bounds domain.PriceRange
	seen := false
	for i := range products {
		price := products[i].BasePriceCents
		if price == nil {
			continue
		}
		if !seen {
			bounds.MinCents = *price
			bounds.MaxCents = *price
			seen = true
			continue
		}
		if *price < bounds.MinCents {
			bounds.MinCents = *price
		}
		if *price > bounds.MaxCents {
			bounds.MaxCents = *price
		}
	}
	return bounds
}

// availableAttributeValues computes, per discrete attribute name observed in
// the base set, the sorted distinct values still available. The base set
// already excludes ALL discrete selections; for each attribute the OTHER
// active discrete selections are re-applied before collecting values, so a
// facet's own selection never narrows its own option list.
func availableAttributeValues(base []domain.ProductFilterMetadata, selected []domain.AttributeMatch) map[string][]string {
	names := make(map[string]struct{})
	for i := range base {
		for _, av := range base[i].Attributes {
			if av.StringValue != nil {
				names[av.Name] = struct{}{}
			}
		}
	}

	out := make(map[string][]string, len(names))
	for name := range names {
		others := withoutName(selected, name)
		subset := Filter(base, Constraints{Attributes: others})

		distinct := make(map[string]struct{})
		for i := range subset {
			av := subset[i].Attribute(name)
			if av != nil && av.StringValue != nil {
				distinct[*av.StringValue] = struct{}{}
			}
		}
		if len(distinct) == 0 {
			continue
		}

		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)
		out[name] = values
	}
	return out
}

// availableRangeBounds is the numeric counterpart of
// availableAttributeValues: per numeric attribute name, the min/max and
// product count over defined values after re-applying the other active range
// filters. Attributes with no qualifying values are omitted entirely.
func availableRangeBounds(base []domain.ProductFilterMetadata, selected []domain.RangeMatch) map[string]domain.RangeBounds {
	names := make(map[string]struct{})
	for i := range base {
		for _, av := range base[i].Attributes {
			if av.NumericValue != nil {
				names[av.Name] = struct{}{}
			}
		}
	}

	out := make(map[string]domain.RangeBounds, len(names))
	for name := range names {
		others := withoutRangeName(selected, name)
		subset := Filter(base, Constraints{Ranges: others})

		var bounds domain.RangeBounds
		for i := range subset {
			av := subset[i].Attribute(name)
			if av == nil || av.NumericValue == nil {
				continue
			}
			v := *av.NumericValue
			if bounds.ProductCount == 0 {
				bounds.Min = v
				bounds.Max = v
			} else {
				if v < bounds.Min {
					bounds.Min = v
				}
				if v > bounds.Max {
					bounds.Max = v
				}
			}
			bounds.ProductCount++
		}
		if bounds.ProductCount == 0 {
			continue
		}
		out[name] = bounds
	}
	return out
}

func withoutName(matches []domain.AttributeMatch, name string) []domain.AttributeMatch {
	out := make([]domain.AttributeMatch, 0, len(matches))
	for _, m := range matches {
		if m.Name != name {
			out = append(out, m)
		}
	}
	return out
}

func withoutRangeName(matches []domain.RangeMatch, name string) []domain.RangeMatch {
	out := make([]domain.RangeMatch, 0, len(matches))
	for _, m := range matches {
		if m.Name != name {
			out = append(out, m)
		}
	}
	return out
}
