package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	type spec struct {
		in       string
		expLevel Level
		expErr   bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{" INFO ", Info, false},
		{"Notice", Notice, false},
		{"warning", Warning, false},
		{"error", Error, false},
		{"verbose", Notice, true},
	}

	for index, s := range specs {
		level, err := ParseLevel(s.in)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error: %t; got %v", index, s.expErr, err)
		}
		if level != s.expLevel {
			t.Fatalf("[spec %d] expected level %s; got %s", index, s.expLevel, level)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	SetLevel(Warning)
	defer SetLevel(Notice)

	logger := New("test")
	logger.Notice("hidden message")
	logger.Warningf("visible %s", "message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("expected notice message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "[test]") || !strings.Contains(out, "visible message") {
		t.Fatalf("expected warning message with module name; got %q", out)
	}
}
