// Package output provides output formatting for authgate-cli.
package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// spinnerInterval is the frame advance rate.
const spinnerInterval = 100 * time.Millisecond

// Spinner displays a progress animation while a network call runs.
// Stopping more than once is safe.
type Spinner struct {
	w       io.Writer
	message string
	frames  string
	done    chan struct{}
	once    sync.Once
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		frames:  `|/-\`,
		done:    make(chan struct{}),
	}
}

// Start starts the animation in a background goroutine.
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%c %s", s.frames[i%len(s.frames)], s.message)
			}
		}
	}()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.finish("\r\033[K")
}

// Success halts the animation with a success line.
func (s *Spinner) Success(message string) {
	s.finish("\r\033[K" + message + "\n")
}

// Fail halts the animation with a failure line.
func (s *Spinner) Fail(message string) {
	s.finish("\r\033[Kerror: " + message + "\n")
}

func (s *Spinner) finish(tail string) {
	s.once.Do(func() {
		close(s.done)
		fmt.Fprint(s.w, tail)
	})
}
