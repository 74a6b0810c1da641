package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"voice-shop/internal/domain"
)

type CaptureState string

const (
	StateIdle      CaptureState = "idle"
	StateListening CaptureState = "listening"
	StateError     CaptureState = "error"
	StateDisabled  CaptureState = "disabled"
)

const (
	StatusReady       = "พร้อมพูด"
	StatusListening   = "กำลังฟัง... พูดคำถามได้เลย"
	StatusStopped     = "หยุดฟังแล้ว"
	StatusSending     = "ได้ข้อความแล้ว กำลังส่งไปถามระบบ..."
	StatusDone        = "เสร็จสิ้น"
	StatusFailed      = "เกิดข้อผิดพลาด"
	StatusUnsupported = "อุปกรณ์นี้ไม่รองรับการรับเสียง"
)

var (
	// ErrAlreadyStarted is returned by a Recognizer asked to start while a
	// session is still running.
	ErrAlreadyStarted = errors.New("recognition already started")
	ErrUnsupported    = errors.New("speech recognition not supported")
)

// RecognitionHandler receives the events of one recognition session.
// A session finishes with exactly one of OnEnd or OnError, and OnResult,
// when it fires, comes before OnEnd.
type RecognitionHandler interface {
	OnStart()
	OnEnd()
	OnError(err error)
	OnResult(transcript string)
}

// Recognizer reports final results only, one transcript per utterance.
type Recognizer interface {
	Start(ctx context.Context, h RecognitionHandler) error
	Stop() error
	Name() string
}

type QueryClient interface {
	Query(ctx context.Context, text string) (*domain.QueryResult, error)
}

type View interface {
	SetListening(listening bool)
	SetStatus(status string)
	SetResult(result domain.QueryResult)
}

type NoopView struct{}

func (n *NoopView) SetListening(_ bool)            {}
func (n *NoopView) SetStatus(_ string)             {}
func (n *NoopView) SetResult(_ domain.QueryResult) {}

// Capture drives a Recognizer and forwards each final transcript to the
// resolver endpoint.
type Capture struct {
	recognizer Recognizer
	client     QueryClient
	view       View
	logger     *slog.Logger

	mu       sync.Mutex
	state    CaptureState
	ctx      context.Context
	active   bool
	queried  bool
	ended    chan struct{}
	lastErr  error
	inflight sync.WaitGroup
}

// NewCapture returns a disabled capture when recognizer is nil.
func NewCapture(recognizer Recognizer, client QueryClient, view View, logger *slog.Logger) *Capture {
	if view == nil {
		view = &NoopView{}
	}
	c := &Capture{
		recognizer: recognizer,
		client:     client,
		view:       view,
		logger:     logger,
		state:      StateIdle,
		ctx:        context.Background(),
		ended:      make(chan struct{}),
	}
	if recognizer == nil {
		c.state = StateDisabled
		view.SetStatus(StatusUnsupported)
		return c
	}
	view.SetStatus(StatusReady)
	return c
}

func (c *Capture) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a recognition session. Starting while a session is already
// running is not an error.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateDisabled {
		c.mu.Unlock()
		return ErrUnsupported
	}
	c.ctx = ctx
	c.active = true
	c.view.SetResult(domain.QueryResult{})
	c.mu.Unlock()

	err := c.recognizer.Start(ctx, c)
	if errors.Is(err, ErrAlreadyStarted) {
		c.logger.Debug("recognizer already started, ignoring", "recognizer", c.recognizer.Name())
		return nil
	}
	if err != nil {
		c.OnError(err)
		return fmt.Errorf("starting recognizer: %w", err)
	}
	return nil
}

// Stop ends the current session. Queries already sent keep running.
func (c *Capture) Stop() error {
	if c.State() == StateDisabled {
		return nil
	}
	return c.recognizer.Stop()
}

// RunOnce runs a single session to its end and waits for the query it
// produced, if any. It returns the recognition error the session ended with.
func (c *Capture) RunOnce(ctx context.Context) error {
	c.mu.Lock()
	ended := c.ended
	c.mu.Unlock()

	if err := c.Start(ctx); err != nil {
		c.inflight.Wait()
		return err
	}

	select {
	case <-ended:
	case <-ctx.Done():
		_ = c.Stop()
		return ctx.Err()
	}

	c.inflight.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Wait blocks until every query sent so far has been answered.
func (c *Capture) Wait() {
	c.inflight.Wait()
}

func (c *Capture) OnStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateListening
	c.lastErr = nil
	c.queried = false
	c.view.SetListening(true)
	c.view.SetStatus(StatusListening)
}

func (c *Capture) OnEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.view.SetListening(false)
	// A sent query owns the status line from here on.
	if !c.queried {
		c.view.SetStatus(StatusStopped)
	}
	c.endSession()
}

func (c *Capture) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		err = errors.New("unknown")
	}
	c.logger.Warn("recognition error", "recognizer", c.recognizer.Name(), "error", err)
	c.state = StateError
	c.lastErr = err
	c.view.SetListening(false)
	c.view.SetStatus(StatusFailed + ": " + err.Error())
	c.view.SetResult(domain.QueryResult{Error: err.Error()})
	c.endSession()
}

func (c *Capture) OnResult(transcript string) {
	c.mu.Lock()
	ctx := c.ctx
	c.queried = true
	c.view.SetStatus(StatusSending)
	c.view.SetResult(domain.QueryResult{Transcript: transcript})
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()
		c.query(ctx, transcript)
	}()
}

func (c *Capture) query(ctx context.Context, transcript string) {
	result, err := c.client.Query(ctx, transcript)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error("querying resolver", "error", err)
		c.view.SetResult(domain.QueryResult{Transcript: transcript, Error: err.Error()})
		c.view.SetStatus(StatusFailed)
		return
	}

	if result.Transcript == "" {
		result.Transcript = transcript
	}
	c.view.SetResult(*result)
	if result.Error != "" {
		c.view.SetStatus(StatusFailed)
		return
	}
	c.view.SetStatus(StatusDone)
}

// endSession wakes everyone waiting on the current session. Callers hold mu.
func (c *Capture) endSession() {
	if !c.active {
		return
	}
	c.active = false
	close(c.ended)
	c.ended = make(chan struct{})
}
