//go:build !portaudio
// +build !portaudio

package speech

import (
	"context"
	"fmt"
	"log/slog"

	"voice-shop/internal/application"
)

// MicrophoneRecognizer stub when portaudio is not available
type MicrophoneRecognizer struct{}

func NewMicrophoneRecognizer(_ int, _ application.SpeechToText, _ *slog.Logger) (*MicrophoneRecognizer, error) {
	return nil, fmt.Errorf("microphone not available, rebuild with -tags portaudio: %w", application.ErrUnsupported)
}

func (m *MicrophoneRecognizer) Name() string {
	return "microphone"
}

func (m *MicrophoneRecognizer) Start(_ context.Context, _ application.RecognitionHandler) error {
	return application.ErrUnsupported
}

func (m *MicrophoneRecognizer) Stop() error {
	return nil
}

func (m *MicrophoneRecognizer) Close() error {
	return nil
}
