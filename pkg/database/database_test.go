package database

import (
	"os"
	"path/filepath"
	"testing"

	"timesync-backend/pkg/config"
)

func TestNewConnectionSQLiteCreatesDir(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "nested", "app.db")

	db, err := NewConnection(&config.Config{DBDriver: "sqlite", DatabaseURL: dsn})
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Fatalf("parent dir not created: %v", err)
	}
}

func TestNewConnectionUnsupportedDriver(t *testing.T) {
	if _, err := NewConnection(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestEnsureDirForSQLiteSkipsMemory(t *testing.T) {
	for _, dsn := range []string{":memory:", "file:test?mode=memory&cache=shared", "local.db"} {
		if err := ensureDirForSQLite(dsn); err != nil {
			t.Errorf("ensureDirForSQLite(%q): %v", dsn, err)
		}
	}
}
