package domain

// AttributeMatch selects one discrete dropdown value of a named attribute.
type AttributeMatch struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RangeMatch constrains a named numeric attribute to an inclusive interval.
// A nil bound leaves that side open.
type RangeMatch struct {
	Name string   `json:"name"`
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

// ActiveFilters is the transient selection state, reconstructed from URL
// query parameters (or component state) on every interaction.
type ActiveFilters struct {
	CategoryPath  *string          `json:"category_path,omitempty"`
	Brands        []string         `json:"brands,omitempty"`
	MinPriceCents *int64           `json:"min_price_cents,omitempty"`
	MaxPriceCents *int64           `json:"max_price_cents,omitempty"`
	Attributes    []AttributeMatch `json:"attributes,omitempty"`
	Ranges        []RangeMatch     `json:"ranges,omitempty"`
	CertifiedOnly bool             `json:"certified_only,omitempty"`
}

// PriceRange is the inclusive price span of the currently-visible set, in the
// smallest currency unit.
type PriceRange struct {
	MinCents int64 `json:"min_cents"`
	MaxCents int64 `json:"max_cents"`
}

// RangeBounds describes the available interval of a numeric attribute, plus
// how many products carry a defined value for it.
type RangeBounds struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	ProductCount int     `json:"product_count"`
}

// ComputedFilters is the full computed filter state returned to the UI after
// every interaction. Every field is freshly allocated per computation; the
// struct has no identity beyond a single call.
type ComputedFilters struct {
	// BrandCounts maps brand slug to the number of matching products,
	// computed without the brand selection itself.
	BrandCounts map[string]int `json:"brand_counts"`

	// CategoryCounts maps category path to matching product count, computed
	// without the category selection itself. A product contributes to every
	// category it belongs to.
	CategoryCounts map[string]int `json:"category_counts"`

	// PriceRange spans the defined prices of the currently-visible set,
	// computed without the price bounds themselves. Zeroed when no visible
	// product has a defined price.
	PriceRange PriceRange `json:"price_range"`

	// TotalCount is the number of products matching all active filters.
	TotalCount int `json:"total_count"`

	// AllProductsCount is the size of the set matching everything except the
	// category selection. It backs the "all products" pseudo-option and is
	// deliberately not the raw catalog size.
	AllProductsCount int `json:"all_products_count"`

	// AttributeValues maps discrete attribute name to its sorted available
	// values. Attributes with no qualifying values are omitted.
	AttributeValues map[string][]string `json:"attribute_values"`

	// RangeBounds maps numeric attribute name to its available bounds.
	// Attributes with no qualifying values are omitted.
	RangeBounds map[string]RangeBounds `json:"range_bounds"`
}

// NewComputedFilters returns an all-empty computed state with maps allocated,
// the shape produced for an empty catalog.
func NewComputedFilters() *ComputedFilters {
	return &ComputedFilters{
		BrandCounts:     make(map[string]int),
		CategoryCounts:  make(map[string]int),
		AttributeValues: make(map[string][]string),
		RangeBounds:     make(map[string]RangeBounds),
	}
}
