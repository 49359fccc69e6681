// Package main implements a standalone seed script that populates the
// filters service with a realistic audio-equipment catalog: speakers,
// amplifiers, sources and cables across the distributed brands, complete
// with filterable attributes.
//
// Run: go run scripts/seed_catalog.go
//   (from the repo root, or: cd scripts && go run seed_catalog.go)
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	totalProducts = 2000
	batchSize     = 200
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// deterministicID produces a stable product ID from a namespace and an
// integer index so that re-runs always produce the same catalog.
func deterministicID(namespace string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", namespace, index)))
	return fmt.Sprintf("%x", h[:12])
}

type brandDef struct {
	Name string
	Slug string
}

var brands = []brandDef{
	{"Audio Research", "audio-research"},
	{"Sonus Faber", "sonus-faber"},
	{"McIntosh", "mcintosh"},
	{"Wilson Audio", "wilson-audio"},
	{"dCS", "dcs"},
	{"Rotel", "rotel"},
	{"Pro-Ject", "pro-ject"},
	{"Nordost", "nordost"},
	{"REL", "rel"},
	{"Bassocontinuo", "bassocontinuo"},
}

type categoryDef struct {
	Name   string
	Path   string
	Weight float64 // share of total products (sums to 1.0)
}

var categories = []categoryDef{
	{"Głośniki", "/kategoria/glosniki/", 0.30},
	{"Wzmacniacze", "/kategoria/wzmacniacze/", 0.25},
	{"Odtwarzacze", "/kategoria/odtwarzacze/", 0.15},
	{"Gramofony", "/kategoria/gramofony/", 0.10},
	{"Kable", "/kategoria/kable/", 0.12},
	{"Akcesoria", "/kategoria/akcesoria/", 0.08},
}

var colors = []string{"czarny", "orzech", "biały", "wiśnia", "srebrny"}

var modelWords = []string{
	"Reference", "Signature", "Classic", "Studio", "Virtuoso",
	"Concerto", "Sonata", "Prelude", "Forte", "Aria",
}

// attributeValue mirrors the service's attribute payload shape.
type attributeValue struct {
	Name         string   `json:"name"`
	StringValue  *string  `json:"string_value,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
}

type product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	CategoryPath   string           `json:"category_path"`
	CategoryPaths  []string         `json:"category_paths,omitempty"`
	BrandSlug      string           `json:"brand_slug"`
	BasePriceCents *int64           `json:"base_price_cents,omitempty"`
	CertifiedUsed  bool             `json:"certified_used"`
	Attributes     []attributeValue `json:"attributes,omitempty"`
}

func strv(name, value string) attributeValue {
	return attributeValue{Name: name, StringValue: &value}
}

func numv(name string, value float64) attributeValue {
	return attributeValue{Name: name, NumericValue: &value}
}

// pickCategory selects a category according to the weight distribution.
func pickCategory(rng *rand.Rand) categoryDef {
	roll := rng.Float64()
	acc := 0.0
	for _, c := range categories {
		acc += c.Weight
		if roll < acc {
			return c
		}
	}
	return categories[len(categories)-1]
}

// attributesFor generates category-appropriate attributes.
func attributesFor(rng *rand.Rand, category categoryDef) []attributeValue {
	attrs := []attributeValue{strv("Kolor", colors[rng.Intn(len(colors))])}

	switch category.Path {
	case "/kategoria/glosniki/":
		attrs = append(attrs,
			strv("Typ", []string{"podłogowe", "podstawkowe", "ścienne"}[rng.Intn(3)]),
			numv("Moc", float64(50+rng.Intn(400))),
			numv("Impedancja", []float64{4, 6, 8}[rng.Intn(3)]),
			numv("Waga", 5+rng.Float64()*80),
		)
	case "/kategoria/wzmacniacze/":
		attrs = append(attrs,
			strv("Typ", []string{"zintegrowany", "końcówka mocy", "przedwzmacniacz"}[rng.Intn(3)]),
			numv("Moc", float64(30+rng.Intn(500))),
			numv("Waga", 8+rng.Float64()*40),
		)
	case "/kategoria/kable/":
		attrs = append(attrs,
			strv("Typ", []string{"głośnikowy", "interkonekt", "zasilający"}[rng.Intn(3)]),
			numv("Długość", []float64{1, 1.5, 2, 3, 5}[rng.Intn(5)]),
		)
	}

	return attrs
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

func generate(rng *rand.Rand) []product {
	products := make([]product, 0, totalProducts)

	for i := 0; i < totalProducts; i++ {
		brand := brands[rng.Intn(len(brands))]
		category := pickCategory(rng)

		name := fmt.Sprintf("%s %s %d",
			brand.Name, modelWords[rng.Intn(len(modelWords))], 100+rng.Intn(900))

		p := product{
			ID:            deterministicID("audiofast-seed", i),
			Name:          name,
			Slug:          fmt.Sprintf("%s-%d", slugify(name), i),
			CategoryPath:  category.Path,
			BrandSlug:     brand.Slug,
			CertifiedUsed: rng.Float64() < 0.1,
			Attributes:    attributesFor(rng, category),
		}

		// Roughly 5% of records have no price yet (price on request).
		if rng.Float64() >= 0.05 {
			price := int64(50000 + rng.Intn(10000000))
			p.BasePriceCents = &price
		}

		// A small share of products belongs to a second category.
		if p.CertifiedUsed {
			p.CategoryPaths = []string{category.Path, "/kategoria/outlet/"}
		}

		products = append(products, p)
	}

	return products
}

func postBatch(client *http.Client, baseURL string, batch []product) error {
	body, err := json.Marshal(map[string]any{"products": batch})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	resp, err := client.Post(baseURL+"/api/v1/products/bulk", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func main() {
	baseURL := getEnv("FILTERS_BASE_URL", "http://localhost:8020")
	rng := rand.New(rand.NewSource(42))
	client := &http.Client{Timeout: 30 * time.Second}

	log.Printf("seeding %d products into %s", totalProducts, baseURL)
	products := generate(rng)

	for start := 0; start < len(products); start += batchSize {
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := postBatch(client, baseURL, products[start:end]); err != nil {
			log.Fatalf("batch %d-%d failed: %v", start, end, err)
		}
		log.Printf("seeded %d/%d", end, len(products))
	}

	log.Println("done")
}
