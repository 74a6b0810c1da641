// Package openai transcribes recorded utterances with the hosted Whisper API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	defaultLanguage = "th"
	whisperModel    = "whisper-1"
	maxErrorBody    = 4096
)

type WhisperClient struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, defaultBaseURL)
}

func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	if language == "" {
		language = defaultLanguage
	}
	return &WhisperClient{
		apiKey:     apiKey,
		language:   language,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Transcribe sends one recording and returns its text. The request is made
// once; a failed transcription is reported to the caller as is.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body, contentType, err := c.form(audio)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Text, nil
}

func (c *WhisperClient) form(audio []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", audioFilename(audio))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}

	fields := [][2]string{
		{"model", whisperModel},
		{"language", c.language},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("writing %s field: %w", f[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// audioFilename names the upload after the container found in the header,
// since Whisper picks the decoder from the file extension.
func audioFilename(audio []byte) string {
	switch {
	case bytes.HasPrefix(audio, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "audio.webm"
	case bytes.HasPrefix(audio, []byte("ID3")), len(audio) > 1 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return "audio.mp3"
	case len(audio) >= 8 && string(audio[4:8]) == "ftyp":
		return "audio.m4a"
	default:
		return "audio.wav"
	}
}
