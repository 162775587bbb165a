package formdata

import (
	"strings"
	"time"
)

// DefaultDismissAfter is how long intake errors stay visible.
const DefaultDismissAfter = 5 * time.Second

// IntakeError reports why a single file was not accepted.
type IntakeError struct {
	FileName string    `json:"fileName"`
	Message  string    `json:"error"`
	At       time.Time `json:"at"`
}

func (e IntakeError) Error() string {
	return e.FileName + ": " + e.Message
}

// IntakeLog keeps the errors of the latest intake batch until they expire.
// Each recorded batch replaces the previous one.
type IntakeLog struct {
	window  time.Duration
	now     func() time.Time
	entries []IntakeError
}

// NewIntakeLog constructs a log. A zero window uses DefaultDismissAfter and a
// nil clock uses time.Now.
func NewIntakeLog(window time.Duration, now func() time.Time) *IntakeLog {
	if window <= 0 {
		window = DefaultDismissAfter
	}
	if now == nil {
		now = time.Now
	}
	return &IntakeLog{window: window, now: now}
}

// Record stamps errs and replaces the current batch. An empty batch clears
// the log.
func (l *IntakeLog) Record(errs []IntakeError) {
	if l == nil {
		return
	}
	if len(errs) == 0 {
		l.entries = nil
		return
	}
	at := l.now()
	l.entries = make([]IntakeError, 0, len(errs))
	for _, err := range errs {
		err.At = at
		l.entries = append(l.entries, err)
	}
}

// Active returns the entries still inside the display window.
func (l *IntakeLog) Active() []IntakeError {
	if l == nil || len(l.entries) == 0 {
		return nil
	}
	cutoff := l.now().Add(-l.window)
	var out []IntakeError
	for _, entry := range l.entries {
		if entry.At.After(cutoff) {
			out = append(out, entry)
		}
	}
	if len(out) == 0 {
		l.entries = nil
	}
	return out
}

// Messages flattens errs into "name: message" strings, trimming blanks and
// dropping duplicates while preserving order.
func Messages(errs []IntakeError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(errs))
	seen := make(map[string]struct{}, len(errs))
	for _, err := range errs {
		msg := strings.TrimSpace(err.Error())
		if msg == "" || msg == ":" {
			continue
		}
		if _, exists := seen[msg]; exists {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
