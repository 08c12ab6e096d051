package main

import (
	"strings"
	"testing"
)

// TestSeconds tests the duration labels used in log messages.
func TestSeconds(t *testing.T) {
	if got := seconds(0); got != "0s" {
		t.Errorf("Expected 0s, got %q", got)
	}
	got := seconds(2.4)
	if !strings.Contains(got, "2") || !strings.Contains(got, "400") {
		t.Errorf("Expected 2 seconds and 400 milliseconds, got %q", got)
	}
	if got := seconds(90); !strings.Contains(got, "1") || !strings.Contains(got, "30") {
		t.Errorf("Expected 1 minute 30 seconds, got %q", got)
	}
}

// TestSize tests byte counts in log messages.
func TestSize(t *testing.T) {
	if got := size(1500); got != "1.5 kB" {
		t.Errorf("Expected 1.5 kB, got %q", got)
	}
}
