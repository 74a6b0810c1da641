package voiceapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-shop/internal/infra/voiceapi"
)

func TestClient_Query(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"answer":"SSD 1TB ราคา 1990 บาท เหลือ 5 ชิ้น"}`))
	}))
	defer server.Close()

	client := voiceapi.NewClient(server.URL, time.Second)

	result, err := client.Query(context.Background(), "มี SSD 1TB ไหม")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"text": "มี SSD 1TB ไหม"}, got)
	assert.Equal(t, "SSD 1TB ราคา 1990 บาท เหลือ 5 ชิ้น", result.Answer)
	assert.Empty(t, result.Error)
}

func TestClient_QueryErrorReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"ยังไม่ได้ตั้งค่า N8N_WEBHOOK_URL"}`))
	}))
	defer server.Close()

	result, err := voiceapi.NewClient(server.URL, time.Second).Query(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ยังไม่ได้ตั้งค่า N8N_WEBHOOK_URL", result.Error)
}

func TestClient_QueryUndecodableReply(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	_, err := voiceapi.NewClient(server.URL, time.Second).Query(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, 1, calls)
}

func TestClient_QueryUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := voiceapi.NewClient(url, time.Second).Query(context.Background(), "x")
	assert.Error(t, err)
}
