// Package terminal renders capture state as plain text lines.
package terminal

import (
	"fmt"
	"io"
	"sync"

	"voice-shop/internal/domain"
)

type View struct {
	mu        sync.Mutex
	w         io.Writer
	listening bool
}

func NewView(w io.Writer) *View {
	return &View{w: w}
}

func (v *View) SetListening(listening bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listening = listening
}

func (v *View) Listening() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.listening
}

func (v *View) SetStatus(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "[%s]\n", status)
}

// SetResult prints the non-empty fields of result. An empty result clears
// the display and prints nothing.
func (v *View) SetResult(result domain.QueryResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if result.Transcript != "" {
		fmt.Fprintf(v.w, "  คุณพูดว่า: %s\n", result.Transcript)
	}
	if result.Answer != "" {
		fmt.Fprintf(v.w, "  คำตอบ: %s\n", result.Answer)
	}
	if result.Error != "" {
		fmt.Fprintf(v.w, "  ข้อผิดพลาด: %s\n", result.Error)
	}
}
