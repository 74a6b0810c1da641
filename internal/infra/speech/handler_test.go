package speech_test

import (
	"sync"
	"time"
)

// eventLog records session callbacks and signals when a session finishes.
type eventLog struct {
	mu     sync.Mutex
	events []string
	errs   []error
	done   chan struct{}
}

func newEventLog() *eventLog {
	return &eventLog{done: make(chan struct{}, 16)}
}

func (e *eventLog) add(ev string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventLog) OnStart() { e.add("start") }

func (e *eventLog) OnEnd() {
	e.add("end")
	e.done <- struct{}{}
}

func (e *eventLog) OnError(err error) {
	e.mu.Lock()
	e.events = append(e.events, "error")
	e.errs = append(e.errs, err)
	e.mu.Unlock()
	e.done <- struct{}{}
}

func (e *eventLog) OnResult(transcript string) { e.add("result:" + transcript) }

func (e *eventLog) wait() bool {
	select {
	case <-e.done:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func (e *eventLog) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

func (e *eventLog) lastErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[len(e.errs)-1]
}
