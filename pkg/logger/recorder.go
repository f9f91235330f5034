package logger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eapache/queue"
)

type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Entry is one recorded message.
type Entry struct {
	Level   Level
	Message string
	At      time.Time
}

func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.At.Format("15:04:05.000"), e.Level, e.Message)
}

// Recorder keeps the most recent messages in memory. When capacity is
// reached the oldest entry is dropped. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	entries  *queue.Queue
	dropped  int
	next     []Logger
}

// NewRecorder creates a recorder holding at most capacity entries;
// capacity <= 0 means unbounded. Every message is also passed on to next,
// in order, after it has been recorded.
func NewRecorder(capacity int, next ...Logger) *Recorder {
	return &Recorder{capacity: capacity, entries: queue.New(), next: next}
}

func (r *Recorder) Info(format string, args ...interface{}) {
	r.add(LevelInfo, format, args...)
	for _, l := range r.next {
		l.Info(format, args...)
	}
}

func (r *Recorder) Warning(format string, args ...interface{}) {
	r.add(LevelWarning, format, args...)
	for _, l := range r.next {
		l.Warning(format, args...)
	}
}

func (r *Recorder) Error(format string, args ...interface{}) {
	r.add(LevelError, format, args...)
	for _, l := range r.next {
		l.Error(format, args...)
	}
}

// Close closes the loggers messages are passed on to and returns the first
// error. The recorded entries stay readable.
func (r *Recorder) Close() error {
	var firstErr error
	for _, l := range r.next {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Recorder) add(level Level, format string, args ...interface{}) {
	e := Entry{Level: level, Message: fmt.Sprintf(format, args...), At: time.Now()}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capacity > 0 && r.entries.Length() >= r.capacity {
		r.entries.Remove()
		r.dropped++
	}
	r.entries.Add(e)
}

// Entries returns a snapshot, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, r.entries.Length())
	for i := 0; i < r.entries.Length(); i++ {
		out = append(out, r.entries.Get(i).(Entry))
	}
	return out
}

// Messages returns the recorded messages at the given level, or at every
// level when none is given.
func (r *Recorder) Messages(levels ...Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if len(levels) == 0 || containsLevel(levels, e.Level) {
			out = append(out, e.Message)
		}
	}
	return out
}

// Count returns how many recorded messages contain substr.
func (r *Recorder) Count(substr string) int {
	n := 0
	for _, e := range r.Entries() {
		if strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

// Dropped returns how many entries were evicted.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func containsLevel(levels []Level, l Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

var _ Logger = (*Recorder)(nil)
