package storage

import (
	"path/filepath"
	"testing"

	"github.com/matsen/bibdup/internal/reference"
)

// setupTestDB creates a test database populated with test records
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	records := []reference.Record{
		{Type: "article", Key: "Smith2026-ab", DOI: "10.1234/smith", Line: 1},
		{Type: "book", Key: "Jones2025-cd", Line: 6},
		{Type: "article", Key: "Smith2026-ab", Line: 10},
		{Type: "inproceedings", Key: "Brown2024-ef", DOI: "10.1234/brown", Line: 14},
		{Type: "article", Key: "Jones2025-cd", DOI: "10.1234/smith", Line: 19},
		{Type: "article", Key: "Smith2026-ab", DOI: "10.1234/smith", Line: 23},
	}

	if _, err := db.RebuildFromRecords("refs.bib", records); err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}
	return db
}

func TestOpenDB_EmptyIndex(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	info, err := db.Info()
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info != nil {
		t.Errorf("Info() = %+v, want nil for an empty index", info)
	}
}

func TestRebuildFromRecords(t *testing.T) {
	db := setupTestDB(t)

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 6 {
		t.Errorf("Count() = %d, want 6", count)
	}

	info, err := db.Info()
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info == nil {
		t.Fatal("Info() = nil after rebuild")
	}
	if info.Source != "refs.bib" || info.Records != 6 {
		t.Errorf("Info() = %+v, want source refs.bib with 6 records", info)
	}
}

func TestRebuildFromRecords_ReplacesContent(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.RebuildFromRecords("other.bib", []reference.Record{
		{Type: "misc", Key: "Only", Line: 1},
	})
	if err != nil {
		t.Fatalf("RebuildFromRecords() error = %v", err)
	}
	if n != 1 {
		t.Errorf("RebuildFromRecords() = %d, want 1", n)
	}

	all, err := db.ListAll(0)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 1 || all[0].Key != "Only" {
		t.Errorf("ListAll() = %+v, want only the rebuilt record", all)
	}

	info, err := db.Info()
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Source != "other.bib" {
		t.Errorf("Info().Source = %q, want other.bib", info.Source)
	}
}

func TestGetByKey(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetByKey("Smith2026-ab")
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}

	want := []reference.Record{
		{Type: "article", Key: "Smith2026-ab", DOI: "10.1234/smith", Line: 1},
		{Type: "article", Key: "Smith2026-ab", Line: 10},
		{Type: "article", Key: "Smith2026-ab", DOI: "10.1234/smith", Line: 23},
	}
	if len(got) != len(want) {
		t.Fatalf("GetByKey() returned %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetByKey()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGetByKey_NotFound(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetByKey("nonexistent")
	if err != nil {
		t.Fatalf("GetByKey() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetByKey() = %+v, want no records", got)
	}
}

func TestFindByDOI(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.FindByDOI("10.1234/smith")
	if err != nil {
		t.Fatalf("FindByDOI() error = %v", err)
	}
	// Matches across keys; the index does not apply duplicate policy.
	if len(got) != 3 {
		t.Fatalf("FindByDOI() returned %d records, want 3", len(got))
	}
	if got[1].Key != "Jones2025-cd" {
		t.Errorf("FindByDOI()[1].Key = %q, want Jones2025-cd", got[1].Key)
	}

	none, err := db.FindByDOI("")
	if err != nil {
		t.Fatalf("FindByDOI(\"\") error = %v", err)
	}
	if none != nil {
		t.Errorf("FindByDOI(\"\") = %+v, want nil", none)
	}
}

func TestListAll(t *testing.T) {
	db := setupTestDB(t)

	all, err := db.ListAll(0)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("ListAll() returned %d records, want 6", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Line <= all[i-1].Line {
			t.Errorf("ListAll() not in source order at %d: line %d after %d", i, all[i].Line, all[i-1].Line)
		}
	}

	limited, err := db.ListAll(2)
	if err != nil {
		t.Fatalf("ListAll(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListAll(2) returned %d records, want 2", len(limited))
	}
}

func TestRepeatedKeys(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.RepeatedKeys()
	if err != nil {
		t.Fatalf("RepeatedKeys() error = %v", err)
	}

	want := []KeyCount{
		{Key: "Smith2026-ab", Count: 3},
		{Key: "Jones2025-cd", Count: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("RepeatedKeys() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RepeatedKeys()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
