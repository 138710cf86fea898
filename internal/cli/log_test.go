package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		emit  map[string]bool
	}{
		{"debug", map[string]bool{"debug": true, "info": true, "warn": true}},
		{"info", map[string]bool{"debug": false, "info": true, "warn": true}},
		{"warn", map[string]bool{"debug": false, "info": false, "warn": true}},
		{"error", map[string]bool{"debug": false, "info": false, "warn": false}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := log.ParseLevel(tt.level)
			if err != nil {
				t.Fatalf("ParseLevel(%q): %v", tt.level, err)
			}
			var buf bytes.Buffer
			logger := newLogger(&buf, level)
			logger.Debug("debug-line")
			logger.Info("info-line")
			logger.Warn("warn-line")

			out := buf.String()
			for name, want := range tt.emit {
				if got := strings.Contains(out, name+"-line"); got != want {
					t.Errorf("%s message written = %v, want %v", name, got, want)
				}
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.start = p.start.Add(-25 * time.Millisecond)

	if got := p.elapsed(); got < 25*time.Millisecond {
		t.Errorf("elapsed() = %v, want >= 25ms", got)
	}
	if got := p.elapsed(); got != got.Round(time.Millisecond) {
		t.Errorf("elapsed() = %v, not rounded to the millisecond", got)
	}

	p.done("Loaded 12 style records")
	out := buf.String()
	if !strings.Contains(out, "Loaded 12 style records (") || !strings.Contains(out, "ms)") {
		t.Errorf("done() output = %q", out)
	}
}

func TestProgressDoneBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.WarnLevel)).done("quiet")
	if buf.Len() != 0 {
		t.Errorf("done() wrote %q at warn level", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield log.Default()")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Fatal("loggerFromContext did not return the attached logger")
	}

	child, cancel := context.WithCancel(ctx)
	defer cancel()
	loggerFromContext(child).Info("from child")
	if !strings.Contains(buf.String(), "from child") {
		t.Error("logger should survive derived contexts")
	}
}
