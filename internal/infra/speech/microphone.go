//go:build portaudio
// +build portaudio

package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"voice-shop/internal/application"
)

const (
	framesPerBuffer  = 1024
	silenceThreshold = int16(500)
)

// MicrophoneRecognizer records one utterance per session, ending on a second
// of silence, and hands it to a SpeechToText backend.
type MicrophoneRecognizer struct {
	sampleRate int
	stt        application.SpeechToText
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func NewMicrophoneRecognizer(sampleRate int, stt application.SpeechToText, logger *slog.Logger) (*MicrophoneRecognizer, error) {
	if stt == nil {
		return nil, fmt.Errorf("microphone needs a transcriber: %w", application.ErrUnsupported)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	return &MicrophoneRecognizer{
		sampleRate: sampleRate,
		stt:        stt,
		logger:     logger,
	}, nil
}

func (m *MicrophoneRecognizer) Name() string {
	return "microphone"
}

func (m *MicrophoneRecognizer) Start(ctx context.Context, h application.RecognitionHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return application.ErrAlreadyStarted
	}

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("starting stream: %w", err)
	}

	stop := make(chan struct{})
	m.stop = stop
	m.running = true

	go func() {
		h.OnStart()
		m.logger.Info("microphone listening", "sampleRate", m.sampleRate)

		samples, err := m.record(ctx, stream, buffer, stop)
		stream.Stop()
		stream.Close()
		m.finish()

		if err != nil {
			h.OnError(err)
			return
		}
		if len(samples) == 0 {
			h.OnEnd()
			return
		}

		text, err := m.stt.Transcribe(ctx, encodeWAV(samples, m.sampleRate))
		if err != nil {
			h.OnError(fmt.Errorf("transcribing: %w", err))
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			h.OnError(ErrNoSpeech)
			return
		}

		h.OnResult(text)
		h.OnEnd()
	}()

	return nil
}

func (m *MicrophoneRecognizer) record(ctx context.Context, stream *portaudio.Stream, buffer []int16, stop <-chan struct{}) ([]int16, error) {
	samples := make([]int16, 0, m.sampleRate*5)
	silenceDuration := 0
	heardSpeech := false

	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case <-stop:
			if !heardSpeech {
				return nil, nil
			}
			return samples, nil
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		samples = append(samples, buffer...)

		if silent(buffer, silenceThreshold) {
			silenceDuration += len(buffer)
		} else {
			silenceDuration = 0
			heardSpeech = true
		}

		if heardSpeech && silenceDuration > m.sampleRate {
			return samples, nil
		}

		if len(samples) > m.sampleRate*10 {
			if !heardSpeech {
				return nil, ErrNoSpeech
			}
			return samples, nil
		}
	}
}

func (m *MicrophoneRecognizer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running && m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	return nil
}

func (m *MicrophoneRecognizer) Close() error {
	return portaudio.Terminate()
}

func (m *MicrophoneRecognizer) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.stop = nil
}
