package migrations

import (
	"io/fs"
	"testing"
)

func TestEventsFSContainsMigrations(t *testing.T) {
	entries, err := fs.ReadDir(EventsFS, "events")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one events migration")
	}
}
