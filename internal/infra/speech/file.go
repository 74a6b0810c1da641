package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"voice-shop/internal/application"
)

var audioExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".webm": true,
}

// FileRecognizer takes each new recording dropped into dir as one
// utterance. Processed files are renamed with a .processed suffix.
type FileRecognizer struct {
	dir      string
	stt      application.SpeechToText
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func NewFileRecognizer(dir string, stt application.SpeechToText) (*FileRecognizer, error) {
	if stt == nil {
		return nil, fmt.Errorf("file source needs a transcriber: %w", application.ErrUnsupported)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating audio dir: %w", err)
	}
	return &FileRecognizer{
		dir:      dir,
		stt:      stt,
		interval: 500 * time.Millisecond,
	}, nil
}

func (f *FileRecognizer) Name() string {
	return "file"
}

func (f *FileRecognizer) Start(ctx context.Context, h application.RecognitionHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return application.ErrAlreadyStarted
	}

	stop := make(chan struct{})
	f.stop = stop
	f.running = true

	go func() {
		h.OnStart()

		audio, err := f.waitForFile(ctx, stop)
		if err != nil {
			f.finish()
			h.OnError(err)
			return
		}
		if audio == nil {
			f.finish()
			h.OnEnd()
			return
		}

		text, err := f.stt.Transcribe(ctx, audio)
		f.finish()
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

func (f *FileRecognizer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running && f.stop != nil {
		close(f.stop)
		f.stop = nil
	}
	return nil
}

func (f *FileRecognizer) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	f.stop = nil
}

// waitForFile returns nil audio when the session is stopped first.
func (f *FileRecognizer) waitForFile(ctx context.Context, stop <-chan struct{}) ([]byte, error) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		audio, err := f.nextFile()
		if err != nil || audio != nil {
			return audio, err
		}

		select {
		case <-ctx.Done():
			return nil, nil
		case <-stop:
			return nil, nil
		case <-ticker.C:
		}
	}
}

func (f *FileRecognizer) nextFile() ([]byte, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !audioExts[filepath.Ext(entry.Name())] {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		if err := os.Rename(path, path+".processed"); err != nil {
			return nil, fmt.Errorf("marking %s processed: %w", path, err)
		}

		return data, nil
	}

	return nil, nil
}
