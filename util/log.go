package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

const maxEntries = 256

// Entry is a single tagged log line.
type Entry struct {
	Tag, Detail string
	Repeated    int
}

func (e Entry) String() string {
	if e.Repeated > 0 {
		return fmt.Sprintf("%s: %s (repeat x%d)", e.Tag, e.Detail, e.Repeated+1)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Detail)
}

var (
	mtxLog          sync.Mutex
	entries         []Entry
	echo            = true
	flagEnableTrace = false
	output          = log.New(os.Stderr, "", log.LstdFlags)
	traceOutput     = log.New(os.Stderr, "", 0)
)

func EnableTrace() {
	flagEnableTrace = true
}

func DisableTrace() {
	flagEnableTrace = false
}

func TraceEnabled() bool {
	return flagEnableTrace
}

// Trace prints per-instruction diagnostics. It is a no-op unless tracing has
// been enabled and is never recorded in the entry ring.
func Trace(format string, v ...interface{}) {
	if flagEnableTrace {
		traceOutput.Printf(format, v...)
	}
}

// SetOutput redirects echoed log lines and trace output.
func SetOutput(w io.Writer) {
	mtxLog.Lock()
	defer mtxLog.Unlock()
	output.SetOutput(w)
	traceOutput.SetOutput(w)
}

// SetEcho controls whether Logf also writes to the output.
func SetEcho(b bool) {
	mtxLog.Lock()
	defer mtxLog.Unlock()
	echo = b
}

// Logf records a tagged message. Consecutive identical messages are folded
// into one entry.
func Logf(tag, format string, v ...interface{}) {
	detail := strings.ReplaceAll(fmt.Sprintf(format, v...), "\n", "")

	mtxLog.Lock()
	defer mtxLog.Unlock()

	if n := len(entries); n > 0 && entries[n-1].Tag == tag && entries[n-1].Detail == detail {
		entries[n-1].Repeated++
	} else {
		entries = append(entries, Entry{Tag: tag, Detail: detail})
		if len(entries) > maxEntries {
			entries = entries[len(entries)-maxEntries:]
		}
	}

	if echo {
		output.Printf("%s: %s", tag, detail)
	}
}

// Entries returns a copy of the recorded log.
func Entries() []Entry {
	mtxLog.Lock()
	defer mtxLog.Unlock()
	c := make([]Entry, len(entries))
	copy(c, entries)
	return c
}

// ClearLog drops every recorded entry.
func ClearLog() {
	mtxLog.Lock()
	defer mtxLog.Unlock()
	entries = entries[:0]
}
