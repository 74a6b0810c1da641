package application

import "voice-shop/internal/domain"

type Catalog interface {
	// Match returns the first product in catalog order whose tags occur in
	// the normalized transcript.
	Match(normalized string) (*domain.Product, bool)
	Products() []domain.Product
	Len() int
}
