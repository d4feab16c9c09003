package input

import (
	"log"
	"sync"
)

// LogSink logs every call instead of injecting it. Used for --dry-run.
type LogSink struct {
	mu sync.Mutex
}

// NewLogSink creates a dry-run sink
func NewLogSink() *LogSink {
	log.Println("Input: dry-run mode, synthetic input is logged only")
	return &LogSink{}
}

func (s *LogSink) logf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("Input(dry-run): "+format, args...)
}

func (s *LogSink) Key(k Key, down bool) error {
	s.logf("key %s down=%v", k, down)
	return nil
}

func (s *LogSink) ScanCode(code uint16, down bool) error {
	s.logf("scan 0x%04X down=%v", code, down)
	return nil
}

func (s *LogSink) Text(text string) error {
	s.logf("text %q", text)
	return nil
}

func (s *LogSink) MouseMove(dx, dy int) error {
	s.logf("move %d,%d", dx, dy)
	return nil
}

func (s *LogSink) MouseButton(b MouseButton, down bool) error {
	s.logf("button %s down=%v", b, down)
	return nil
}

func (s *LogSink) Scroll(amount int, horizontal bool) error {
	s.logf("scroll %d horizontal=%v", amount, horizontal)
	return nil
}

func (s *LogSink) Foreground() (Window, error) {
	return 0, ErrNoForeground
}

func (s *LogSink) SetForeground(Window) error {
	return ErrNoForeground
}

func (s *LogSink) Close() error {
	return nil
}
