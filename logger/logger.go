package logger

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/katanacore/machine/errors"
)

// Permission gates whether a call site is allowed to log. Modules that want
// to be quietened (for example a MMIO region with trace gating switched off
// in config) pass a Permission whose AllowLogging reports false.
type Permission interface {
	AllowLogging() bool
}

type allowPermission struct{}

func (allowPermission) AllowLogging() bool { return true }

// Allow is the Permission used by call sites that are always willing to log.
var Allow Permission = allowPermission{}

type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s\n", e.tag, e.detail)
}

// Logger is a capped ring buffer of log entries paired with a zap core. Entries
// written through Log/Logf/LogSeverity land in both: the ring buffer backs
// Write/Tail, the zap core backs whatever sink the caller configured with
// SetCore.
type Logger struct {
	crit    sync.Mutex
	entries []entry
	cap     int
	head    int
	count   int

	core *zap.Logger
}

// NewLogger creates a Logger with room for capacity entries. Once full,
// the oldest entry is discarded to make room for a new one.
func NewLogger(capacity int) *Logger {
	core, _ := zap.NewDevelopment()
	return &Logger{
		entries: make([]entry, capacity),
		cap:     capacity,
		core:    core,
	}
}

// SetCore replaces the zap logger backing structured output, in place of
// the development console core NewLogger starts with.
func (l *Logger) SetCore(core *zap.Logger) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.core = core
}

func detailString(detail interface{}) string {
	switch v := detail.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Log records a message at errors.INFO if perm allows logging.
func (l *Logger) Log(perm Permission, tag string, detail interface{}) {
	l.LogSeverity(errors.INFO, perm, tag, detailString(detail))
}

// Logf records a formatted message at errors.INFO if perm allows logging.
func (l *Logger) Logf(perm Permission, tag string, format string, args ...interface{}) {
	l.LogSeverity(errors.INFO, perm, tag, fmt.Sprintf(format, args...))
}

// LogSeverity records detail at the given severity if perm allows logging.
// FATAL entries are always recorded regardless of perm, matching the core's
// rule that a module cannot silence a fatal condition (spec.md §7).
func (l *Logger) LogSeverity(sev errors.Severity, perm Permission, tag string, detail interface{}) {
	if sev != errors.FATAL && perm != nil && !perm.AllowLogging() {
		return
	}

	d := detailString(detail)

	l.crit.Lock()
	l.entries[l.head] = entry{tag: tag, detail: d}
	l.head = (l.head + 1) % l.cap
	if l.count < l.cap {
		l.count++
	}
	core := l.core
	l.crit.Unlock()

	if core != nil {
		field := zap.String("tag", tag)
		switch sev {
		case errors.FATAL, errors.ERR:
			core.Error(d, field)
		case errors.WARN:
			core.Warn(d, field)
		case errors.DEBUG:
			core.Debug(d, field)
		case errors.TRACE:
			core.Debug(d, field, zap.Bool("trace", true))
		default:
			core.Info(d, field)
		}
	}
}

// Clear empties the ring buffer without touching the zap core.
func (l *Logger) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.head = 0
	l.count = 0
}

// Write writes every retained entry, oldest first, to w.
func (l *Logger) Write(w io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.writeLocked(w, l.count)
}

// Tail writes at most the n most recently retained entries, oldest first.
func (l *Logger) Tail(w io.Writer, n int) {
	l.crit.Lock()
	defer l.crit.Unlock()
	if n > l.count {
		n = l.count
	}
	l.writeLocked(w, n)
}

func (l *Logger) writeLocked(w io.Writer, n int) {
	start := (l.head - n + l.cap) % l.cap
	if l.count < l.cap {
		start = l.count - n
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % l.cap
		io.WriteString(w, l.entries[idx].String())
	}
}

// Sync flushes the underlying zap core.
func (l *Logger) Sync() error {
	l.crit.Lock()
	core := l.core
	l.crit.Unlock()
	if core == nil {
		return nil
	}
	return core.Sync()
}

var central = NewLogger(1024)

// Central returns the package-level Logger instance every hardware/* package
// logs through by default.
func Central() *Logger { return central }

// Log records a message on the central logger at errors.INFO.
func Log(tag string, detail interface{}) {
	central.Log(Allow, tag, detail)
}

// Logf records a formatted message on the central logger at errors.INFO.
func Logf(tag string, format string, args ...interface{}) {
	central.Logf(Allow, tag, format, args...)
}

// LogSeverity records a message on the central logger at the given severity.
func LogSeverity(sev errors.Severity, tag string, detail interface{}) {
	central.LogSeverity(sev, Allow, tag, detail)
}

// Write writes the central logger's retained entries to w.
func Write(w io.Writer) { central.Write(w) }

// Tail writes the central logger's n most recent entries to w.
func Tail(w io.Writer, n int) { central.Tail(w, n) }
