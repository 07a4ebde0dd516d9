package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "create_analyses" {
		t.Fatalf("unexpected first migration %d %s", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 {
		t.Fatalf("expected second migration version 2, got %d", migrations[1].Version)
	}
	if !strings.Contains(migrations[0].UpSQL, "CREATE TABLE IF NOT EXISTS analyses") || migrations[0].DownSQL == "" {
		t.Fatal("expected analyses table in first migration")
	}
}

func TestLoadMigrationsRejectsBadSets(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "missing down",
			fsys: fstest.MapFS{"migrations/0001_init.up.sql": {Data: []byte("SELECT 1;")}},
			want: "must include both up and down",
		},
		{
			name: "bad filename",
			fsys: fstest.MapFS{"migrations/init.sql": {Data: []byte("SELECT 1;")}},
			want: "invalid migration filename",
		},
		{
			name: "empty file",
			fsys: fstest.MapFS{
				"migrations/0001_init.up.sql":   {Data: []byte("  ")},
				"migrations/0001_init.down.sql": {Data: []byte("SELECT 1;")},
			},
			want: "empty migration file",
		},
		{
			name: "conflicting names",
			fsys: fstest.MapFS{
				"migrations/0001_init.up.sql":    {Data: []byte("SELECT 1;")},
				"migrations/0001_other.down.sql": {Data: []byte("SELECT 1;")},
			},
			want: "conflicting names",
		},
		{
			name: "no files",
			fsys: fstest.MapFS{},
			want: "no migration files",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMigrations(tt.fsys)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseMigrationName(t *testing.T) {
	v, name, dir, err := parseMigrationName("migrations/0002_index_analyses_symbol.down.sql")
	if err != nil || v != 2 || name != "index_analyses_symbol" || dir != "down" {
		t.Fatalf("unexpected parse: %d %q %q %v", v, name, dir, err)
	}
	for _, bad := range []string{"migrations/0001_init.sideways.sql", "migrations/x_init.up.sql", "migrations/0001.up.sql", "migrations/0001_init.up.txt"} {
		if _, _, _, err := parseMigrationName(bad); err == nil {
			t.Errorf("expected %s to be rejected", bad)
		}
	}
}

func TestPendingAndStatus(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatal(err)
	}
	applied := map[int64]bool{1: true}

	left := pending(migrations, applied)
	if len(left) != len(migrations)-1 || left[0].Version != 2 {
		t.Fatalf("unexpected pending set: %+v", left)
	}

	lines := statusLines(migrations, applied)
	if !strings.HasSuffix(lines[0], "applied") || !strings.HasPrefix(lines[0], "0001 create_analyses") {
		t.Fatalf("unexpected status line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "pending") {
		t.Fatalf("unexpected status line %q", lines[1])
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	orig := connectFunc
	connectFunc = func(context.Context) (database, func(), error) {
		t.Fatal("should not connect for invalid arguments")
		return nil, nil, nil
	}
	t.Cleanup(func() { connectFunc = orig })

	for _, args := range [][]string{nil, {"sideways"}, {"down", "0"}, {"down", "two"}} {
		if err := run(context.Background(), args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestRunReportsConnectionErrors(t *testing.T) {
	orig := connectFunc
	connectFunc = func(context.Context) (database, func(), error) {
		return nil, nil, errors.New("DATABASE_URL not set")
	}
	t.Cleanup(func() { connectFunc = orig })

	if err := run(context.Background(), []string{"up"}); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
