package logger

import (
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
		wantError bool
	}{
		{"debug", true, true, true, true},
		{"info", false, true, true, true},
		{"warn", false, false, true, true},
		{"error", false, false, false, true},
		{"unknown", false, true, true, true}, // falls back to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf strings.Builder
			InitWithWriter(tt.level, "json", &buf)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			checks := []struct {
				marker string
				want   bool
			}{
				{"[DEBUG] debug message", tt.wantDebug},
				{"[INFO] info message", tt.wantInfo},
				{"[WARN] warn message", tt.wantWarn},
				{"[ERROR] error message", tt.wantError},
			}
			for _, c := range checks {
				if got := strings.Contains(out, c.marker); got != c.want {
					t.Errorf("Level %q: presence of %q = %v, want %v", tt.level, c.marker, got, c.want)
				}
			}
		})
	}
}

func TestFormatting(t *testing.T) {
	var buf strings.Builder
	InitWithWriter("info", "json", &buf)

	Info("fitted %d segments in %s", 4, "12ms")
	if !strings.Contains(buf.String(), "fitted 4 segments in 12ms") {
		t.Errorf("Unexpected formatted output: %q", buf.String())
	}
}

func TestUninitializedLoggerIsSilent(t *testing.T) {
	saved := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = saved }()

	// Must not panic.
	Info("dropped message")
	Error("dropped message")
}
