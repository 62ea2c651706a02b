package test

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"userapp/internal/adapter/database/sqlite"
)

// FindProjectRoot walks up from this file until it finds go.mod.
func FindProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	log.Fatal("Could not find project root directory")
	return ""
}

// InitTestDB returns a fresh, migrated in-memory database.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(sqlite.Config{Path: sqlite.MemoryDSN()})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// CleanDB removes every user so a suite can share one database across tests.
func CleanDB(t *testing.T, db *sqlite.DB) {
	t.Helper()

	if _, err := db.Exec("DELETE FROM users"); err != nil {
		t.Fatalf("Failed to clean users: %v", err)
	}
}

// SkipUnlessEnv skips the test when the named variable is empty and returns
// its value otherwise.
func SkipUnlessEnv(t *testing.T, name string) string {
	t.Helper()

	value := os.Getenv(name)
	if value == "" {
		t.Skipf("%s is not set", name)
	}

	return value
}
