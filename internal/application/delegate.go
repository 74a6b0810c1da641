package application

import (
	"context"

	"voice-shop/internal/domain"
)

type Delegate interface {
	Forward(ctx context.Context, req domain.DelegateRequest) (*domain.DelegateResponse, error)
}
