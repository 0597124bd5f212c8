package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose int
		want    slog.Level
	}{
		{"", 0, slog.LevelInfo},
		{"", 1, slog.LevelDebug},
		{"", 3, LevelTrace},
		{"WARN", 2, slog.LevelWarn},
		{"trace", 0, LevelTrace},
		{"bogus", 0, slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.name, tt.verbose); got != tt.want {
			t.Errorf("ParseLevel(%q, %d) = %v, want %v", tt.name, tt.verbose, got, tt.want)
		}
	}
}

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelTrace)
	defer SetOutput(&buf, slog.LevelInfo)

	ctx := WithRunID(context.Background(), "0123456789abcdef")
	WarnContext(ctx, "statistic did not settle", "model", "degree", "iterations", 5000, "error", errors.New("boom"))
	Trace("fit iteration", "change", 0.5)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}

	warn := lines[0]
	for _, want := range []string{"[WARN]", "statistic did not settle |", "run=01234567 ", "model=degree", "iterations=5000", `error="boom"`} {
		if !strings.Contains(warn, want) {
			t.Errorf("line %q lacks %q", warn, want)
		}
	}
	if !strings.HasPrefix(lines[1], "[TRACE]") || !strings.Contains(lines[1], "change=0.5") {
		t.Errorf("trace line = %q", lines[1])
	}
}

func TestCompactHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelWarn)
	defer SetOutput(&buf, slog.LevelInfo)

	Info("hidden")
	Debug("hidden")
	Error("shown")

	if got := buf.String(); strings.Contains(got, "hidden") || !strings.Contains(got, "shown") {
		t.Errorf("output = %q", got)
	}
	if Enabled(slog.LevelInfo) {
		t.Errorf("Enabled(info) at warn level")
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx := EnsureRunID(context.Background())
	id := GetRunID(ctx)
	if id == "" {
		t.Fatal("EnsureRunID did not assign a run ID")
	}
	if got := GetRunID(EnsureRunID(ctx)); got != id {
		t.Errorf("EnsureRunID replaced %q with %q", id, got)
	}
}

func TestRunIDMiddleware(t *testing.T) {
	var seen string
	h := RunIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRunID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RunIDHeader, "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "caller-id" || rec.Header().Get(RunIDHeader) != "caller-id" {
		t.Errorf("run ID = %q, header = %q", seen, rec.Header().Get(RunIDHeader))
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(RunIDHeader) == "" || seen == "caller-id" {
		t.Errorf("no fresh run ID assigned")
	}
}
