package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "help", args: []string{"dotjson", "help"}, wantCode: 0, wantStdout: "Usage"},
		{name: "no arguments", args: []string{"dotjson"}, wantCode: 2, wantStderr: "Error:"},
		{name: "unknown command", args: []string{"dotjson", "frobnicate"}, wantCode: 2, wantStderr: "frobnicate"},
		{name: "missing path", args: []string{"dotjson", "get"}, wantCode: 2, wantStderr: "Usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.wantCode {
				t.Fatalf("run() exitCode = %d, want %d (stderr %q)", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "car.json")
	if err := os.WriteFile(path, []byte(`{"engine":{"hp":305}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"dotjson", "get", "-path", "engine.hp", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() exitCode = %d, stderr = %q", code, stderr.String())
	}
	if stdout.String() != "305\n" {
		t.Errorf("stdout = %q, want 305", stdout.String())
	}
}

func TestNewLoggerDropsTime(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(&buf, slog.LevelInfo).Info("stream complete", "documents", 2)

	got := buf.String()
	if strings.Contains(got, "time=") {
		t.Errorf("log line %q carries a timestamp", got)
	}
	if !strings.Contains(got, "documents=2") {
		t.Errorf("log line %q missing attribute", got)
	}
}
