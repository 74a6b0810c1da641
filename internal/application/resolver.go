package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"voice-shop/internal/domain"
)

// Result is a resolved query ready to be written back to the caller.
type Result struct {
	Source     domain.Source
	StatusCode int
	Body       json.RawMessage
	Product    *domain.Product
}

type Resolver struct {
	catalog  Catalog
	delegate Delegate
	recorder Recorder
	logger   *slog.Logger
}

// NewResolver wires a resolver. A nil delegate means no webhook is
// configured; unmatched queries then fail with a configuration error.
func NewResolver(catalog Catalog, delegate Delegate, recorder Recorder, logger *slog.Logger) *Resolver {
	if recorder == nil {
		recorder = &NoopRecorder{}
	}
	return &Resolver{
		catalog:  catalog,
		delegate: delegate,
		recorder: recorder,
		logger:   logger,
	}
}

func (r *Resolver) DelegateConfigured() bool {
	return r.delegate != nil
}

func (r *Resolver) Resolve(ctx context.Context, text string) (*Result, error) {
	result, err := r.resolve(ctx, text)
	if err != nil {
		kind := KindServer
		var appErr *Error
		if errors.As(err, &appErr) {
			kind = appErr.Kind
		}
		r.recorder.Failed(kind)
		return nil, err
	}
	r.recorder.Resolved(result.Source)
	return result, nil
}

func (r *Resolver) resolve(ctx context.Context, text string) (*Result, error) {
	transcript := domain.NormalizeTranscript(text)
	if transcript == "" {
		return nil, BadRequest(MsgEmptyTranscript)
	}

	if product, ok := r.catalog.Match(transcript); ok {
		r.logger.Info("catalog match",
			"sku", product.SKU,
			"name", product.Name,
			"transcript", transcript,
		)
		body, err := json.Marshal(domain.QueryResult{Answer: product.Answer()})
		if err != nil {
			return nil, ServerError(fmt.Errorf("encoding answer: %w", err))
		}
		return &Result{
			Source:     domain.SourceCatalog,
			StatusCode: http.StatusOK,
			Body:       body,
			Product:    product,
		}, nil
	}

	if r.delegate == nil {
		r.logger.Warn("no catalog match and delegate webhook not configured", "transcript", transcript)
		return nil, ConfigurationError(MsgDelegateNotSet)
	}

	r.logger.Info("no catalog match, forwarding to delegate", "transcript", transcript)

	start := time.Now()
	resp, err := r.delegate.Forward(ctx, domain.DelegateRequest{
		Transcript: transcript,
		Products:   r.catalog.Products(),
		Lang:       domain.DelegateLang,
	})
	if err != nil {
		return nil, ServerError(fmt.Errorf("forwarding to delegate: %w", err))
	}
	r.recorder.DelegateCalled(resp.StatusCode, time.Since(start))

	body := resp.Body
	if !json.Valid(body) {
		r.logger.Warn("delegate returned unparsable body, relaying empty object", "status", resp.StatusCode)
		body = json.RawMessage("{}")
	}

	status := http.StatusOK
	if !resp.OK() {
		r.logger.Warn("delegate returned failure status", "status", resp.StatusCode)
		status = resp.StatusCode
	}

	return &Result{
		Source:     domain.SourceDelegate,
		StatusCode: status,
		Body:       body,
	}, nil
}
