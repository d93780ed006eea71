// Package runlog accumulates the step-by-step progress of one invocation
// and writes it as a plain-text log artifact, named with a timestamp. The
// log is written exactly once, including on fatal abort.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Log collects timestamped step lines for one run. Safe for concurrent use
// (fan-out generation logs per-group failures from worker goroutines).
type Log struct {
	mu      sync.Mutex
	started time.Time
	lines   []string
	written bool
}

// New starts an empty run log.
func New() *Log {
	l := &Log{started: time.Now()}
	l.Step("run started")
	return l
}

// Step records one progress line.
func (l *Log) Step(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%s %s", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
	l.lines = append(l.lines, line)
}

// Error records the final error of the run.
func (l *Log) Error(err error) {
	if err == nil {
		return
	}
	l.Step("ERROR: %v", err)
}

// Write writes the accumulated log to dir as run_<timestamp>.log and
// returns the path. It is a no-op on second call so a deferred write after
// an explicit one does not produce a duplicate artifact.
func (l *Log) Write(dir string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.written {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("runlog: create dir: %w", err)
	}
	name := fmt.Sprintf("run_%s.log", l.started.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	body := strings.Join(l.lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("runlog: write: %w", err)
	}
	l.written = true
	return path, nil
}

// Lines returns a copy of the accumulated lines, for tests and for the
// final console summary.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
