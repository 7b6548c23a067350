package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_LoadOrInit_CreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	cfg, err := store.LoadOrInit()
	if err != nil {
		t.Fatalf("LoadOrInit failed: %v", err)
	}
	if cfg.ListenPort != 4821 {
		t.Fatalf("expected default listen port 4821, got %d", cfg.ListenPort)
	}

	path := filepath.Join(dir, "config.toml")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config.toml to exist: %v", err)
	}
	text := string(b)
	if !strings.Contains(text, "listen_port = 4821") {
		t.Fatalf("expected listen_port in toml, got: %s", text)
	}
	if !strings.Contains(text, "[ui]") {
		t.Fatalf("expected ui table in toml, got: %s", text)
	}
	if !strings.Contains(text, "theme = 'light'") && !strings.Contains(text, "theme = \"light\"") {
		t.Fatalf("expected ui.theme in toml, got: %s", text)
	}
	if !strings.Contains(text, "show_libs = false") {
		t.Fatalf("expected ui.show_libs=false in toml, got: %s", text)
	}
}

func TestStore_SaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	in := Config{
		ListenHost: "0.0.0.0",
		ListenPort: 5110,
		ParserBin:  "/usr/local/bin/ngrev-parser",
		LogLevel:   "debug",
		UI:         UIConfig{Theme: "dark", ShowLibs: true},
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := store.LoadOrInit()
	if err != nil {
		t.Fatalf("LoadOrInit failed: %v", err)
	}
	if out.ListenHost != "0.0.0.0" || out.ListenPort != 5110 {
		t.Fatalf("unexpected listen config: %+v", out)
	}
	if out.ParserBin != "/usr/local/bin/ngrev-parser" {
		t.Fatalf("unexpected parser bin: %s", out.ParserBin)
	}
	if out.UI.Theme != "dark" || !out.UI.ShowLibs {
		t.Fatalf("unexpected ui config: %+v", out.UI)
	}
}

func TestStore_NormalizeRejectsUnknownTheme(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save(Config{UI: UIConfig{Theme: "solarized"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	cfg, err := store.LoadOrInit()
	if err != nil {
		t.Fatalf("LoadOrInit failed: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Fatalf("expected unknown theme to normalize to light, got %s", cfg.UI.Theme)
	}
}
