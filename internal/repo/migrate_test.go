package repo

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/shaiso/Pathway/internal/repo/migrations"
)

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "up and down",
			content: "-- +migrate Up\nCREATE TABLE a();\n-- +migrate Down\nDROP TABLE a;",
			want:    "CREATE TABLE a();",
		},
		{
			name:    "up only",
			content: "-- +migrate Up\nCREATE TABLE b();",
			want:    "CREATE TABLE b();",
		},
		{
			name:    "no markers",
			content: "CREATE TABLE c();",
			want:    "CREATE TABLE c();",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.TrimSpace(ExtractUpMigration(tt.content))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMigrationFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("")},
		"001_a.sql": {Data: []byte("")},
		"README.md": {Data: []byte("")},
		"sub/x.sql": {Data: []byte("")},
	}

	files, err := MigrationFiles(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || files[0] != "001_a.sql" || files[1] != "002_b.sql" {
		t.Errorf("files = %v", files)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := MigrationFiles(migrations.FS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations")
	}

	content, err := migrations.FS.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read %s: %v", files[0], err)
	}
	up := ExtractUpMigration(string(content))
	for _, table := range []string{"assessments", "assessment_versions", "sessions"} {
		if !strings.Contains(up, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("up migration does not create %s", table)
		}
	}
	if strings.Contains(up, "DROP TABLE") {
		t.Error("up migration must not contain the down section")
	}
}

func TestPageLimit(t *testing.T) {
	if PageLimit(0) != DefaultLimit || PageLimit(-3) != DefaultLimit || PageLimit(7) != 7 {
		t.Errorf("PageLimit: %d %d %d", PageLimit(0), PageLimit(-3), PageLimit(7))
	}
}
