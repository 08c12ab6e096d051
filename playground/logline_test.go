package playground

import (
	"fmt"
	"testing"

	"github.com/decred/slog"
)

// TestParseLogLine tests that logger lines map to output panel classes.
func TestParseLogLine(t *testing.T) {
	cases := []struct {
		line, class, msg string
	}{
		{"2024-01-02 10:00:00.000 [INF] AUDO: audio ready\n", ClassInfo, "audio ready"},
		{"2024-01-02 10:00:00.000 [WRN] AUDO: play note: unknown note: H9", ClassWarning, "play note: unknown note: H9"},
		{"2024-01-02 10:00:00.000 [ERR] AUDO: decode audio: bad header", ClassError, "decode audio: bad header"},
		{"2024-01-02 10:00:00.000 [CRT] PLAY: boom", ClassError, "boom"},
		{"2024-01-02 10:00:00.000 [DBG] PLAY: a b: c", ClassInfo, "a b: c"},
		{"no level here", ClassInfo, "no level here"},
		{"[XYZ] odd", ClassInfo, "[XYZ] odd"},
		{"[WR", ClassInfo, "[WR"},
	}
	for _, c := range cases {
		class, msg := parseLogLine(c.line)
		if class != c.class || msg != c.msg {
			t.Errorf("Expected %q -> (%s, %q), got (%s, %q)", c.line, c.class, c.msg, class, msg)
		}
	}
}

// TestPanelWriter tests that a slog backend writing through the panel
// writer yields one row per log call.
func TestPanelWriter(t *testing.T) {
	type row struct{ class, msg string }
	var rows []row
	w := newPanelWriter(func(class, msg string) {
		rows = append(rows, row{class, msg})
	})

	log := slog.NewBackend(w).Logger("AUDO")
	log.SetLevel(slog.LevelDebug)
	log.Infof("audio ready")
	log.Warnf("play chord: %v", fmt.Errorf("unknown note: X1"))
	log.Errorf("decode audio: truncated")

	want := []row{
		{ClassInfo, "audio ready"},
		{ClassWarning, "play chord: unknown note: X1"},
		{ClassError, "decode audio: truncated"},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %v", len(want), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("Expected row %d to be %v, got %v", i, want[i], rows[i])
		}
	}

	w.Write([]byte("partial"))
	if len(rows) != 3 {
		t.Errorf("Expected a partial line to wait for its newline")
	}
	w.Write([]byte(" line\n"))
	if len(rows) != 4 || rows[3].msg != "partial line" {
		t.Errorf("Expected the joined line, got %v", rows)
	}
}
