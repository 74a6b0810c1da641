package domain

import (
	"encoding/json"
	"strings"
)

// DelegateLang is the language tag sent along with every delegated query.
const DelegateLang = "th"

type Source string

const (
	SourceCatalog  Source = "catalog"
	SourceDelegate Source = "delegate"
)

// NormalizeTranscript trims and lowercases a transcript before matching.
func NormalizeTranscript(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// VoiceRequest is the inbound body of the resolver endpoint.
type VoiceRequest struct {
	Text *string `json:"text"`
}

// DelegateRequest is the body posted to the external webhook.
type DelegateRequest struct {
	Transcript string    `json:"transcript"`
	Products   []Product `json:"products"`
	Lang       string    `json:"lang"`
}

// DelegateResponse is the delegate's reply, kept opaque.
type DelegateResponse struct {
	StatusCode int
	Body       json.RawMessage
}

func (r *DelegateResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// QueryResult is what the capture front ends render.
type QueryResult struct {
	Transcript string `json:"transcript,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Error      string `json:"error,omitempty"`
}
