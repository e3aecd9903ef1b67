package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrations_OrderAndFiltering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_clinical.sql", "CREATE TABLE lab_order ();")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE appointment ();")
	writeFile(t, dir, "notes.txt", "ignore me")
	writeFile(t, dir, "README.sql", "no numeric prefix")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migs))
	}
	if migs[0].Version != 1 || migs[1].Version != 2 {
		t.Errorf("wrong order: %d, %d", migs[0].Version, migs[1].Version)
	}
	if migs[0].Name != "001_core.sql" {
		t.Errorf("name = %q", migs[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
