package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes leveled, printf-style messages to the terminal and,
// optionally, to a log file that receives every level.
type Logger struct {
	Verbose   bool
	out       io.Writer
	errOut    io.Writer
	mu        sync.Mutex
	fileLog   *os.File
	hasBar    bool
	timestamp func() time.Time
}

// New creates a Logger writing to stdout and stderr.
func New(verbose bool) *Logger {
	return NewWithWriters(verbose, os.Stdout, os.Stderr)
}

// NewWithWriters creates a Logger with explicit terminal writers.
func NewWithWriters(verbose bool, out, errOut io.Writer) *Logger {
	return &Logger{
		Verbose:   verbose,
		out:       out,
		errOut:    errOut,
		timestamp: time.Now,
	}
}

// Discard returns a Logger that drops all output.
func Discard() *Logger {
	return NewWithWriters(false, io.Discard, io.Discard)
}

// SetFileLog enables logging to a file
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	return nil
}

// SetProgressBar hides terminal output (except errors) while a bar is drawn.
func (l *Logger) SetProgressBar(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hasBar = active
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		err := l.fileLog.Close()
		l.fileLog = nil
		return err
	}
	return nil
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log("INFO", format, args...)
}

// Debug reaches the terminal only in verbose mode, the log file always.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log("DEBUG", format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log("ERROR", format, args...)
}

func (l *Logger) log(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	text := fmt.Sprintf(format, args...)

	var line string
	if level == "INFO" {
		line = text + "\n"
	} else {
		line = "[" + level + "] " + text + "\n"
	}

	switch {
	case level == "ERROR":
		fmt.Fprint(l.errOut, line)
	case level == "DEBUG" && !l.Verbose:
	case l.Verbose || !l.hasBar:
		fmt.Fprint(l.out, line)
	}

	if l.fileLog != nil {
		l.fileLog.WriteString(l.timestamp().Format("2006-01-02 15:04:05") + " " + "[" + level + "] " + text + "\n")
	}
}
