package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrate_EmptyDSN(t *testing.T) {
	if err := Migrate("", "up"); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestMigrate_InvalidDirection(t *testing.T) {
	for _, dir := range []string{"", "UP", "sideways"} {
		if err := Migrate("postgres://localhost/meetlog", dir); err == nil {
			t.Errorf("direction %q: expected error", dir)
		}
	}
}

func TestMigrationFS_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}
