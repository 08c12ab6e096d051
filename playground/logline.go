package playground

import (
	"bytes"
	"strings"
	"sync"
)

// Output panel row classes.
const (
	ClassInfo    = "info"
	ClassSuccess = "success"
	ClassWarning = "warning"
	ClassError   = "error"
)

var levelClass = map[string]string{
	"TRC": ClassInfo,
	"DBG": ClassInfo,
	"INF": ClassInfo,
	"WRN": ClassWarning,
	"ERR": ClassError,
	"CRT": ClassError,
}

// parseLogLine splits a logger line of the form
// "2006-01-02 15:04:05.000 [WRN] AUDO: message" into its panel class and
// message. Lines without a level tag are shown as info.
func parseLogLine(line string) (class, msg string) {
	line = strings.TrimRight(line, "\r\n")
	open := strings.Index(line, "[")
	if open < 0 || len(line) < open+5 || line[open+4] != ']' {
		return ClassInfo, line
	}
	class, ok := levelClass[line[open+1:open+4]]
	if !ok {
		return ClassInfo, line
	}
	msg = strings.TrimLeft(line[open+5:], " ")
	if colon := strings.Index(msg, ": "); colon >= 0 && !strings.Contains(msg[:colon], " ") {
		msg = msg[colon+2:]
	}
	return class, msg
}

// panelWriter turns logger output into one sink call per complete line.
type panelWriter struct {
	mu   sync.Mutex
	buf  []byte
	sink func(class, msg string)
}

func newPanelWriter(sink func(class, msg string)) *panelWriter {
	return &panelWriter{sink: sink}
}

func (w *panelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf = append(w.buf, p...)
	var lines []string
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	w.mu.Unlock()

	for _, line := range lines {
		w.sink(parseLogLine(line))
	}
	return len(p), nil
}
