// Package speech holds Recognizer implementations for the terminal client.
package speech

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"voice-shop/internal/application"
)

// ErrNoSpeech ends a session that produced nothing to send.
var ErrNoSpeech = errors.New("no-speech")

type line struct {
	text string
	err  error
}

// LineRecognizer treats every line read from r as one final utterance.
type LineRecognizer struct {
	r     io.Reader
	lines chan line
	once  sync.Once

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{
		r:     r,
		lines: make(chan line),
	}
}

func (l *LineRecognizer) Name() string {
	return "text"
}

func (l *LineRecognizer) Start(ctx context.Context, h application.RecognitionHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return application.ErrAlreadyStarted
	}

	l.once.Do(func() { go l.readLoop() })

	stop := make(chan struct{})
	l.stop = stop
	l.running = true

	go func() {
		h.OnStart()

		select {
		case <-ctx.Done():
			l.finish()
			h.OnEnd()
		case <-stop:
			l.finish()
			h.OnEnd()
		case ln := <-l.lines:
			l.finish()
			if ln.err != nil {
				h.OnError(ln.err)
				return
			}
			text := strings.TrimSpace(ln.text)
			if text == "" {
				h.OnError(ErrNoSpeech)
				return
			}
			h.OnResult(text)
			h.OnEnd()
		}
	}()

	return nil
}

func (l *LineRecognizer) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running && l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
	return nil
}

func (l *LineRecognizer) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
	l.stop = nil
}

// readLoop feeds lines to sessions. After the reader is exhausted every
// session receives io.EOF or the scan error.
func (l *LineRecognizer) readLoop() {
	scanner := bufio.NewScanner(l.r)
	for scanner.Scan() {
		l.lines <- line{text: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		l.lines <- line{err: err}
	}
}
