// Package console serializes all user-facing log output through a single
// writer goroutine. Dependency tasks run concurrently; each gets a tagged
// *Logger that only enqueues records, so lines never interleave and their
// relative order is exactly the order in which they were emitted.
package console

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

const defaultBuffer = 256

// Options configures a Console.
type Options struct {
	Level      string // debug, info, warn, error; default info
	Timestamps bool
	Buffer     int // queued records before emitters block
}

type record struct {
	level log.Level
	tag   string
	msg   string
	kv    []any
}

// Console owns the output writer.
type Console struct {
	base    *log.Logger
	records chan record
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// New starts a Console writing to w. Close must be called to flush it.
func New(w io.Writer, opts Options) (*Console, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	size := opts.Buffer
	if size <= 0 {
		size = defaultBuffer
	}

	base := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: opts.Timestamps,
	})
	c := &Console{
		base:    base,
		records: make(chan record, size),
		done:    make(chan struct{}),
	}
	go c.drain()
	return c, nil
}

// Discard returns a running Console that drops everything.
func Discard() *Console {
	c, _ := New(io.Discard, Options{Level: "error"})
	return c
}

func (c *Console) drain() {
	defer close(c.done)
	tagged := make(map[string]*log.Logger)
	for rec := range c.records {
		l := c.base
		if rec.tag != "" {
			if tl, ok := tagged[rec.tag]; ok {
				l = tl
			} else {
				l = c.base.WithPrefix(rec.tag)
				tagged[rec.tag] = l
			}
		}
		l.Log(rec.level, rec.msg, rec.kv...)
	}
}

func (c *Console) emit(rec record) {
	if rec.level < c.base.GetLevel() {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	c.records <- rec
}

// Close stops accepting records and waits until every queued record has
// been written. It is safe to call more than once.
func (c *Console) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.records)
	}
	c.mu.Unlock()
	<-c.done
}

// Logger returns a logger whose records carry tag as their prefix. A nil
// Console yields loggers that drop everything.
func (c *Console) Logger(tag string) *Logger {
	return &Logger{console: c, tag: tag}
}

// Logger is a cheap, immutable handle onto a Console.
type Logger struct {
	console *Console
	tag     string
	kv      []any
}

// Tag returns a copy of l with a different prefix.
func (l *Logger) Tag(tag string) *Logger {
	return &Logger{console: l.console, tag: tag, kv: l.kv}
}

// With returns a copy of l that appends keyvals to every record.
func (l *Logger) With(keyvals ...any) *Logger {
	kv := make([]any, 0, len(l.kv)+len(keyvals))
	kv = append(kv, l.kv...)
	kv = append(kv, keyvals...)
	return &Logger{console: l.console, tag: l.tag, kv: kv}
}

func (l *Logger) log(level log.Level, msg string, keyvals []any) {
	if l == nil || l.console == nil {
		return
	}
	kv := keyvals
	if len(l.kv) > 0 {
		kv = make([]any, 0, len(l.kv)+len(keyvals))
		kv = append(kv, l.kv...)
		kv = append(kv, keyvals...)
	}
	l.console.emit(record{level: level, tag: l.tag, msg: msg, kv: kv})
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.log(log.DebugLevel, msg, keyvals) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.log(log.InfoLevel, msg, keyvals) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.log(log.WarnLevel, msg, keyvals) }
func (l *Logger) Error(msg string, keyvals ...any) { l.log(log.ErrorLevel, msg, keyvals) }
