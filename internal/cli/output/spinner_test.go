package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards the buffer against the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_StartStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Authenticating")

	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Authenticating") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "\r") {
		t.Error("output should redraw with carriage returns")
	}
}

func TestSpinner_Success(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Authenticating")

	s.Start()
	s.Success("Logged in")

	if !strings.Contains(buf.String(), "Logged in") {
		t.Errorf("output %q missing success message", buf.String())
	}
}

func TestSpinner_Fail(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Authenticating")

	s.Start()
	s.Fail("credentials rejected")

	if !strings.Contains(buf.String(), "error: credentials rejected") {
		t.Errorf("output %q missing failure message", buf.String())
	}
}

func TestSpinner_DoubleStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "x")

	s.Stop()
	s.Stop()
	s.Success("late")

	if strings.Contains(buf.String(), "late") {
		t.Error("a stopped spinner should not print again")
	}
}
