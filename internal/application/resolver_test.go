package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-shop/internal/application"
	"voice-shop/internal/domain"
)

type mockCatalog struct {
	products []domain.Product
}

func (m *mockCatalog) Match(normalized string) (*domain.Product, bool) {
	for i := range m.products {
		if m.products[i].MatchesTranscript(normalized) {
			return &m.products[i], true
		}
	}
	return nil, false
}

func (m *mockCatalog) Products() []domain.Product { return m.products }
func (m *mockCatalog) Len() int                   { return len(m.products) }

type mockDelegate struct {
	requests []domain.DelegateRequest
	status   int
	body     string
	err      error
}

func (m *mockDelegate) Forward(_ context.Context, req domain.DelegateRequest) (*domain.DelegateResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DelegateResponse{StatusCode: m.status, Body: json.RawMessage(m.body)}, nil
}

type countingRecorder struct {
	resolved map[domain.Source]int
	failed   map[application.ErrorKind]int
	delegate int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		resolved: make(map[domain.Source]int),
		failed:   make(map[application.ErrorKind]int),
	}
}

func (c *countingRecorder) Resolved(source domain.Source)         { c.resolved[source]++ }
func (c *countingRecorder) Failed(kind application.ErrorKind)     { c.failed[kind]++ }
func (c *countingRecorder) DelegateCalled(_ int, _ time.Duration) { c.delegate++ }

func shopCatalog() *mockCatalog {
	return &mockCatalog{products: []domain.Product{
		{SKU: "ssd", Name: "SSD 1TB", Price: 1990, Stock: 5, Tags: []string{"ssd", "1tb"}},
		{SKU: "hdd", Name: "HDD 1TB", Price: 1490, Stock: 9, Tags: []string{"HDD", "1TB"}},
		{SKU: "psu", Name: "Power Supply 650W", Price: 1750.5, Stock: 0, Tags: []string{"psu"}},
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireKind(t *testing.T, err error, kind application.ErrorKind) *application.Error {
	t.Helper()
	var appErr *application.Error
	require.True(t, errors.As(err, &appErr), "expected *application.Error, got %v", err)
	require.Equal(t, kind, appErr.Kind)
	return appErr
}

func TestResolver_CatalogMatch(t *testing.T) {
	delegate := &mockDelegate{status: http.StatusOK, body: `{}`}
	rec := newCountingRecorder()
	r := application.NewResolver(shopCatalog(), delegate, rec, discardLogger())

	result, err := r.Resolve(context.Background(), "มี SSD 1TB ไหม")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceCatalog, result.Source)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `{"answer":"SSD 1TB ราคา 1990 บาท เหลือ 5 ชิ้น"}`, string(result.Body))
	assert.Empty(t, delegate.requests, "delegate must not be called on a catalog match")
	assert.Equal(t, 1, rec.resolved[domain.SourceCatalog])
}

func TestResolver_FirstMatchWins(t *testing.T) {
	r := application.NewResolver(shopCatalog(), nil, nil, discardLogger())

	// "1tb" is a tag of both the SSD and the HDD; the HDD also matches "hdd".
	result, err := r.Resolve(context.Background(), "HDD 1TB ราคาเท่าไหร่")
	require.NoError(t, err)

	assert.Equal(t, "ssd", result.Product.SKU)
}

func TestResolver_AnswerFormatsPrice(t *testing.T) {
	r := application.NewResolver(shopCatalog(), nil, nil, discardLogger())

	result, err := r.Resolve(context.Background(), "PSU")
	require.NoError(t, err)

	assert.JSONEq(t, `{"answer":"Power Supply 650W ราคา 1750.5 บาท เหลือ 0 ชิ้น"}`, string(result.Body))
}

func TestResolver_EmptyTranscript(t *testing.T) {
	delegate := &mockDelegate{status: http.StatusOK, body: `{}`}
	rec := newCountingRecorder()
	r := application.NewResolver(shopCatalog(), delegate, rec, discardLogger())

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := r.Resolve(context.Background(), text)
		appErr := requireKind(t, err, application.KindBadRequest)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
		assert.Equal(t, application.MsgEmptyTranscript, appErr.Message)
	}

	assert.Empty(t, delegate.requests)
	assert.Equal(t, 3, rec.failed[application.KindBadRequest])
}

func TestResolver_DelegateNotConfigured(t *testing.T) {
	r := application.NewResolver(shopCatalog(), nil, nil, discardLogger())

	_, err := r.Resolve(context.Background(), "มีการ์ดจอไหม")
	appErr := requireKind(t, err, application.KindConfiguration)

	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
	assert.Equal(t, application.MsgDelegateNotSet, appErr.Message)
	assert.False(t, r.DelegateConfigured())
}

func TestResolver_DelegateForward(t *testing.T) {
	delegate := &mockDelegate{status: http.StatusOK, body: `{"answer":"มีครับ RTX 4060"}`}
	rec := newCountingRecorder()
	catalog := shopCatalog()
	r := application.NewResolver(catalog, delegate, rec, discardLogger())

	result, err := r.Resolve(context.Background(), "  มีการ์ดจอ RTX ไหม  ")
	require.NoError(t, err)

	require.Len(t, delegate.requests, 1)
	req := delegate.requests[0]
	assert.Equal(t, "มีการ์ดจอ rtx ไหม", req.Transcript)
	assert.Equal(t, "th", req.Lang)
	assert.Equal(t, catalog.products, req.Products)

	assert.Equal(t, domain.SourceDelegate, result.Source)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `{"answer":"มีครับ RTX 4060"}`, string(result.Body))
	assert.Equal(t, 1, rec.delegate)
}

func TestResolver_DelegateRelay(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "ok", status: 200, body: `{"a":1}`, wantStatus: 200, wantBody: `{"a":1}`},
		{name: "accepted maps to ok", status: 202, body: `{"a":1}`, wantStatus: 200, wantBody: `{"a":1}`},
		{name: "failure passes through", status: 503, body: `{"error":"busy"}`, wantStatus: 503, wantBody: `{"error":"busy"}`},
		{name: "unparsable body", status: 200, body: `oops`, wantStatus: 200, wantBody: `{}`},
		{name: "empty body", status: 500, body: ``, wantStatus: 500, wantBody: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delegate := &mockDelegate{status: tt.status, body: tt.body}
			r := application.NewResolver(shopCatalog(), delegate, nil, discardLogger())

			result, err := r.Resolve(context.Background(), "unknown thing")
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.StatusCode)
			assert.Equal(t, tt.wantBody, string(result.Body))
		})
	}
}

func TestResolver_DelegateFailureIsHidden(t *testing.T) {
	delegate := &mockDelegate{err: errors.New("dial tcp 10.0.0.1:5678: connection refused")}
	rec := newCountingRecorder()
	r := application.NewResolver(shopCatalog(), delegate, rec, discardLogger())

	_, err := r.Resolve(context.Background(), "unknown thing")
	appErr := requireKind(t, err, application.KindServer)

	assert.Equal(t, application.MsgServerError, appErr.Message)
	assert.False(t, strings.Contains(appErr.Message, "connection refused"))
	assert.ErrorIs(t, err, delegate.err)
	assert.Equal(t, 1, rec.failed[application.KindServer])
}
