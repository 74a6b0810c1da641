package domain

import (
	"strconv"
	"strings"
)

type Product struct {
	SKU            string   `json:"sku"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Price          float64  `json:"price"`
	Stock          int      `json:"stock"`
	WarrantyMonths int      `json:"warranty_months"`
	Tags           []string `json:"tags"`
}

// MatchesTranscript reports whether any tag, compared case-insensitively,
// is contained in the already normalized transcript.
func (p Product) MatchesTranscript(normalized string) bool {
	for _, tag := range p.Tags {
		tag = strings.ToLower(tag)
		if tag == "" {
			continue
		}
		if strings.Contains(normalized, tag) {
			return true
		}
	}
	return false
}

// Answer renders the spoken reply for a local catalog hit.
func (p Product) Answer() string {
	price := strconv.FormatFloat(p.Price, 'f', -1, 64)
	return p.Name + " ราคา " + price + " บาท เหลือ " + strconv.Itoa(p.Stock) + " ชิ้น"
}
