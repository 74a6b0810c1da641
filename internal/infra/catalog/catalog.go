package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"voice-shop/internal/domain"
)

//go:embed products.json
var bundled []byte

//go:embed schema.json
var schema []byte

// Catalog is the read-only product list. It is safe for concurrent use
// because nothing mutates it after Load.
type Catalog struct {
	products []domain.Product
}

func New(products []domain.Product) *Catalog {
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return &Catalog{products: cp}
}

// Bundled loads the catalog shipped inside the binary.
func Bundled() (*Catalog, error) {
	return Load(bundled)
}

// LoadFile loads a catalog from path, or the bundled one when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Bundled()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Load(data)
}

func Load(data []byte) (*Catalog, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var products []domain.Product
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	return &Catalog{products: products}, nil
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validating catalog: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Match scans in catalog order and returns the first hit.
func (c *Catalog) Match(normalized string) (*domain.Product, bool) {
	for i := range c.products {
		if c.products[i].MatchesTranscript(normalized) {
			p := c.products[i]
			return &p, true
		}
	}
	return nil, false
}

func (c *Catalog) Products() []domain.Product {
	result := make([]domain.Product, len(c.products))
	copy(result, c.products)
	return result
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func (c *Catalog) Summary() string {
	var sb strings.Builder

	sb.WriteString("## สินค้าในร้าน:\n")
	for _, p := range c.products {
		sb.WriteString(fmt.Sprintf("- %s (%s, คงเหลือ: %d)\n", p.Name, p.SKU, p.Stock))
	}

	return sb.String()
}
