package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_UsesJSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(Options{Level: "debug", Writer: &buf, Component: "ngrev"})
	lg.Debug("boot", "k", "v")

	out := strings.TrimSpace(buf.String())
	if !strings.Contains(out, `"level":"DEBUG"`) {
		t.Fatalf("expected DEBUG level, got %s", out)
	}
	if !strings.Contains(out, `"component":"ngrev"`) {
		t.Fatalf("expected component field, got %s", out)
	}
}

func TestNewLogger_MirrorsToPath(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "ngrev.log")
	lg := NewLogger(Options{Writer: &buf, Path: path, Component: "host"})
	lg.Info("started", "port", 4821)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"started"`) {
		t.Fatalf("log file missing record: %s", raw)
	}
	if !strings.Contains(buf.String(), `"msg":"started"`) {
		t.Fatalf("writer missing record: %s", buf.String())
	}
}
