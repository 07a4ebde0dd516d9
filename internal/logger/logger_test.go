package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestWithComponent(t *testing.T) {
	entry := WithComponent("market-service")
	if v, ok := entry.Data["component"]; !ok || v != "market-service" {
		t.Fatalf("component field missing: %v", entry.Data)
	}
}

func TestNewLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if l := New(); l.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", l.GetLevel())
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if l := New(); l.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", l.GetLevel())
	}
}

func TestJSONFormatterFieldNames(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	l := New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithField("provider", "coingecko").Info("fetched")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["message"] != "fetched" || line["provider"] != "coingecko" {
		t.Errorf("unexpected fields: %v", line)
	}
	if _, ok := line["timestamp"]; !ok {
		t.Errorf("missing timestamp field: %v", line)
	}
}

func TestLogFileEnablesRotation(t *testing.T) {
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "insight.log"))
	l := New()
	if l.Out == nil {
		t.Fatal("expected an output writer")
	}
}
