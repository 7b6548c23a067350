package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chauey/ngrev/internal/config"
	"github.com/chauey/ngrev/internal/db"
	"github.com/chauey/ngrev/internal/historydb"
)

func seedRecents(t *testing.T, dbPath string, paths ...string) {
	t.Helper()
	gdb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db failed: %v", err)
	}
	defer func() { _ = db.Close(gdb) }()
	store, err := historydb.NewStore(gdb)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	for _, p := range paths {
		if err := store.Touch(p, false); err != nil {
			t.Fatalf("touch failed: %v", err)
		}
	}
}

func TestRunRecentsList_PrintsSeededProjects(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ngrev.db")
	seedRecents(t, dbPath, "/a/tsconfig.json", "/b/tsconfig.json")

	var out bytes.Buffer
	cfg := config.Config{DBPath: dbPath}
	if err := runRecentsList(context.Background(), cfg, &out); err != nil {
		t.Fatalf("recents list failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "/a/tsconfig.json") || !strings.Contains(got, "/b/tsconfig.json") {
		t.Fatalf("expected both projects listed, got %q", got)
	}
}

func TestRunRecentsList_EmptyDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ngrev.db")
	var out bytes.Buffer
	if err := runRecentsList(context.Background(), config.Config{DBPath: dbPath}, &out); err != nil {
		t.Fatalf("recents list failed: %v", err)
	}
	if !strings.Contains(out.String(), "no recent projects") {
		t.Fatalf("expected empty notice, got %q", out.String())
	}
}

func TestRunRecentsClear_EmptiesTheList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ngrev.db")
	seedRecents(t, dbPath, "/a/tsconfig.json")

	cfg := config.Config{DBPath: dbPath}
	if err := runRecentsClear(context.Background(), cfg); err != nil {
		t.Fatalf("recents clear failed: %v", err)
	}

	var out bytes.Buffer
	if err := runRecentsList(context.Background(), cfg, &out); err != nil {
		t.Fatalf("recents list failed: %v", err)
	}
	if !strings.Contains(out.String(), "no recent projects") {
		t.Fatalf("expected cleared list, got %q", out.String())
	}
}

func TestShowConfig_RendersTOML(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Config{ListenHost: "127.0.0.1", ListenPort: 4821, LogLevel: "info"}
	if err := showConfig(cfg, &out); err != nil {
		t.Fatalf("show config failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "listen_port = 4821") || !strings.Contains(got, "127.0.0.1") {
		t.Fatalf("unexpected toml output %q", got)
	}
}
