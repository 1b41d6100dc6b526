package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatJSON, slog.LevelInfo, "test")
	logger.Debug("hidden")
	logger.Info("upload stored", "upload_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["msg"] != "upload stored" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["upload_id"] != "abc" {
		t.Errorf("upload_id = %v", entry["upload_id"])
	}
	if entry["app"] != "airsense" {
		t.Errorf("app = %v", entry["app"])
	}
	if entry["version"] != "test" {
		t.Errorf("version = %v", entry["version"])
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatText, slog.LevelWarn, "test")
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "app=airsense") {
		t.Errorf("app attribute missing: %q", out)
	}
}
