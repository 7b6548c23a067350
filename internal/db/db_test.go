package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesFileAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ngrev.db")
	gdb, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = Close(gdb) }()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected db file to exist: %v", err)
	}
	if !gdb.Migrator().HasTable(&ProjectHistory{}) {
		t.Fatal("expected project_history table")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ngrev.db")
	gdb, err := Open(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := gdb.Create(&ProjectHistory{Tsconfig: "/p/tsconfig.json", OpenCount: 1}).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := Close(gdb); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	gdb, err = Open(path)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer func() { _ = Close(gdb) }()

	var count int64
	if err := gdb.Model(&ProjectHistory{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after reopen, got %d", count)
	}
}
