package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-shop/internal/domain"
	"voice-shop/internal/infra/catalog"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{SKU: "ssd", Name: "SSD 1TB", Price: 1990, Stock: 5, Tags: []string{"ssd", "1tb"}},
		{SKU: "nvme", Name: "NVMe SSD 2TB", Price: 3990, Stock: 2, Tags: []string{"NVMe", "ssd"}},
		{SKU: "mouse", Name: "Mouse", Price: 390, Stock: 20, Tags: []string{"", "เมาส์"}},
	}
}

func TestBundled(t *testing.T) {
	c, err := catalog.Bundled()
	require.NoError(t, err)
	require.Greater(t, c.Len(), 0)

	p, ok := c.Match(domain.NormalizeTranscript("มี SSD 1TB ไหม"))
	require.True(t, ok)
	assert.Equal(t, "SSD 1TB", p.Name)
	assert.Equal(t, "SSD 1TB ราคา 1990 บาท เหลือ 5 ชิ้น", p.Answer())
}

func TestCatalog_MatchFirstInOrder(t *testing.T) {
	c := catalog.New(testProducts())

	p, ok := c.Match("nvme หรือ ssd")
	require.True(t, ok)
	assert.Equal(t, "ssd", p.SKU, "first product in catalog order wins")

	p, ok = c.Match("มี nvme ไหม")
	require.True(t, ok)
	assert.Equal(t, "nvme", p.SKU, "tags compare case-insensitively")
}

func TestCatalog_NoMatch(t *testing.T) {
	c := catalog.New(testProducts())

	_, ok := c.Match("มีคีย์บอร์ดไหม")
	assert.False(t, ok)
}

func TestCatalog_EmptyTagNeverMatches(t *testing.T) {
	c := catalog.New([]domain.Product{{SKU: "x", Tags: []string{""}}})

	_, ok := c.Match("anything")
	assert.False(t, ok)
}

func TestCatalog_ProductsIsACopy(t *testing.T) {
	c := catalog.New(testProducts())

	products := c.Products()
	products[0].Name = "changed"

	assert.Equal(t, "SSD 1TB", c.Products()[0].Name)
}

func TestLoad_RejectsInvalidCatalog(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not an array", data: `{"sku":"a"}`},
		{name: "missing tags", data: `[{"sku":"a","name":"A","category":"c","price":1,"stock":1,"warranty_months":1}]`},
		{name: "negative stock", data: `[{"sku":"a","name":"A","category":"c","price":1,"stock":-1,"warranty_months":1,"tags":[]}]`},
		{name: "price as string", data: `[{"sku":"a","name":"A","category":"c","price":"1","stock":1,"warranty_months":1,"tags":[]}]`},
		{name: "empty tag", data: `[{"sku":"a","name":"A","category":"c","price":1,"stock":1,"warranty_months":1,"tags":["ok",""]}]`},
		{name: "broken json", data: `[{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Load([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	data := `[{"sku":"a","name":"Cable","category":"c","price":49.5,"stock":3,"warranty_months":0,"tags":["cable"]}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	p, ok := c.Match("usb cable")
	require.True(t, ok)
	assert.Equal(t, "Cable ราคา 49.5 บาท เหลือ 3 ชิ้น", p.Answer())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := catalog.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
