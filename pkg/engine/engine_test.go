package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestMemStore_InsertGetDelete(t *testing.T) {
	ms := NewMemStore(nil, nil)

	rec, err := ms.Insert(SharedScope, "drives", Record{"name": "Campus Drive"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id := RecordID(rec)
	if id == "" {
		t.Fatal("Insert should assign an id")
	}

	got, err := ms.Get(SharedScope, "drives", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got["name"] != "Campus Drive" {
		t.Errorf("Expected Campus Drive, got %v", got["name"])
	}

	_, err = ms.Get(SharedScope, "drives", "non-existent")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}

	if err := ms.Delete(SharedScope, "drives", id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := ms.Delete(SharedScope, "drives", id); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound after delete, got %v", err)
	}
}

func TestMemStore_InsertKeepsGivenIDAndRejectsDuplicates(t *testing.T) {
	ms := NewMemStore(nil, nil)

	if _, err := ms.Insert(SharedScope, "jobs", Record{"id": "j1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := ms.Insert(SharedScope, "jobs", Record{"id": "j1"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
}

func TestMemStore_ListKeepsOrderAndCopies(t *testing.T) {
	ms := NewMemStore(nil, nil)
	for i := 1; i <= 3; i++ {
		ms.Insert(SharedScope, "jobs", Record{"id": fmt.Sprintf("j%d", i)})
	}

	list, _ := ms.List(SharedScope, "jobs")
	if len(list) != 3 || RecordID(list[0]) != "j1" || RecordID(list[2]) != "j3" {
		t.Fatalf("Unexpected order: %v", list)
	}

	list[0]["title"] = "mutated"
	again, _ := ms.Get(SharedScope, "jobs", "j1")
	if _, ok := again["title"]; ok {
		t.Error("List should return copies")
	}

	empty, err := ms.List(SharedScope, "missing")
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected empty list, got %v, %v", empty, err)
	}
}

func TestMemStore_ReplaceAndPatch(t *testing.T) {
	ms := NewMemStore(nil, nil)
	ms.Insert(SharedScope, "recruiters", Record{"id": "r1", "company": "Acme", "status": "Pending"})

	rec, err := ms.Patch(SharedScope, "recruiters", "r1", Record{"status": "Approved", "id": "hijack"})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if rec["status"] != "Approved" || rec["company"] != "Acme" || RecordID(rec) != "r1" {
		t.Errorf("Patch mismatch: %v", rec)
	}

	rec, err = ms.Replace(SharedScope, "recruiters", "r1", Record{"company": "Globex"})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if RecordID(rec) != "r1" || rec["company"] != "Globex" {
		t.Errorf("Replace mismatch: %v", rec)
	}
	if _, ok := rec["status"]; ok {
		t.Error("Replace should drop fields missing from the new record")
	}

	if _, err := ms.Replace(SharedScope, "recruiters", "nope", Record{}); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestMemStore_ScopesCollections(t *testing.T) {
	ms := NewMemStore(nil, nil)

	ms.Insert("s1", "c1", Record{})
	ms.Insert("s2", "c2", Record{})

	scopes, _ := ms.Scopes()
	if len(scopes) != 2 {
		t.Errorf("Expected 2 scopes, got %d", len(scopes))
	}

	collections, _ := ms.Collections("s1")
	if len(collections) != 1 || collections[0] != "c1" {
		t.Errorf("Expected [c1], got %v", collections)
	}

	if _, err := ms.Collections("nope"); !errors.Is(err, ErrScopeNotFound) {
		t.Errorf("Expected ErrScopeNotFound, got %v", err)
	}
}

func TestMemStore_Find(t *testing.T) {
	ms := NewMemStore(nil, nil)
	ms.Insert("acc-1", "applications", Record{"id": "a1", "jobId": "j1"})

	rec, scope, err := ms.Find("applications", "jobId", "j1")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if RecordID(rec) != "a1" || scope != "acc-1" {
		t.Errorf("Find mismatch: %v, %s", rec, scope)
	}

	if _, _, err := ms.Find("applications", "jobId", "j2"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestPersistence(t *testing.T) {
	tmpDir := t.TempDir()

	p, err := NewPersistence(tmpDir)
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}

	data := map[string][]Record{
		"drives": {{"id": "d1", "name": "Winter"}},
	}

	if err := p.SaveScope(SharedScope, data); err != nil {
		t.Fatalf("SaveScope failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, SharedScope+".json")); os.IsNotExist(err) {
		t.Fatal("Scope file was not created")
	}

	allData, err := p.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(allData) != 1 {
		t.Errorf("Expected 1 scope, got %d", len(allData))
	}

	if allData[SharedScope]["drives"][0]["name"] != "Winter" {
		t.Errorf("Loaded data mismatch: %v", allData[SharedScope])
	}
}

func TestPersistence_RejectsPathScopes(t *testing.T) {
	p, _ := NewPersistence(t.TempDir())
	if err := p.SaveScope("../escape", nil); err == nil {
		t.Error("SaveScope should reject scope names with path elements")
	}
}

func TestPersistence_SkipsCorruptFiles(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "broken.json"), []byte("{"), 0644)

	p, _ := NewPersistence(tmpDir)
	allData, err := p.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(allData) != 0 {
		t.Errorf("Expected corrupt file to be skipped, got %v", allData)
	}
}

func TestMemStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	p, _ := NewPersistence(tmpDir)
	ms := NewMemStore(nil, p)

	if _, err := ms.Insert(SharedScope, "jobs", Record{"id": "j1", "title": "SDE"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	ms.Wait() // Wait for background persistence

	allData, _ := p.LoadAll()
	ms2 := NewMemStore(allData, p)

	rec, err := ms2.Get(SharedScope, "jobs", "j1")
	if err != nil {
		t.Fatalf("Get on new store failed: %v", err)
	}
	if rec["title"] != "SDE" {
		t.Errorf("Expected SDE, got %v", rec["title"])
	}
}

func TestMigrate(t *testing.T) {
	src := NewMemStore(nil, nil)
	src.Insert(SharedScope, "jobs", Record{"id": "j1"})
	src.Insert("acc-1", "applications", Record{"id": "a1"})

	dst := NewMemStore(nil, nil)
	dst.Insert(SharedScope, "jobs", Record{"id": "j1", "stale": true})

	if err := Migrate(src, dst); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	rec, err := dst.Get(SharedScope, "jobs", "j1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := rec["stale"]; ok {
		t.Error("Migrate should overwrite records with the same id")
	}
	if _, err := dst.Get("acc-1", "applications", "a1"); err != nil {
		t.Errorf("Migrate did not copy scope acc-1: %v", err)
	}
}

func TestMemStore_Concurrent(t *testing.T) {
	ms := NewMemStore(nil, nil)
	const (
		numGoroutines = 10
		numOps        = 100
	)
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := fmt.Sprintf("rec-%d-%d", id, j)
				ms.Insert(SharedScope, "c", Record{"id": key, "n": j})
				rec, err := ms.Get(SharedScope, "c", key)
				if err != nil || rec["n"] != j {
					t.Errorf("Concurrent error: expected %d, got %v, err %v", j, rec, err)
				}
			}
		}(i)
	}
	wg.Wait()

	list, _ := ms.List(SharedScope, "c")
	if len(list) != numGoroutines*numOps {
		t.Errorf("Expected %d records, got %d", numGoroutines*numOps, len(list))
	}
}

func TestMemStore_IncrementConcurrent(t *testing.T) {
	ms := NewMemStore(nil, nil)
	ms.Insert(SharedScope, "jobs", Record{"id": "j1", "applications": float64(3)})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ms.Increment(SharedScope, "jobs", "j1", "applications", 1); err != nil {
				t.Errorf("Increment failed: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, _ := ms.Get(SharedScope, "jobs", "j1")
	if rec["applications"] != 53 {
		t.Errorf("Expected 53 applications, got %v", rec["applications"])
	}

	rec, err := ms.Increment(SharedScope, "jobs", "j1", "views", 2)
	if err != nil || rec["views"] != 2 {
		t.Errorf("Increment of a missing field: got %v, err %v", rec["views"], err)
	}
	if _, err := ms.Increment(SharedScope, "jobs", "missing", "views", 1); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}
