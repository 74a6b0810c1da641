package application

import (
	"time"

	"voice-shop/internal/domain"
)

type Recorder interface {
	Resolved(source domain.Source)
	Failed(kind ErrorKind)
	DelegateCalled(statusCode int, elapsed time.Duration)
}

type NoopRecorder struct{}

func (n *NoopRecorder) Resolved(_ domain.Source)              {}
func (n *NoopRecorder) Failed(_ ErrorKind)                    {}
func (n *NoopRecorder) DelegateCalled(_ int, _ time.Duration) {}
