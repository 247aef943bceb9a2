package snapshot

import (
	"testing"

	"github.com/boltdb/bolt"

	"github.com/aaswin/cartwheel/graph"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	reqs := []string{"alpha"}
	nodes := []graph.Node{
		{Name: "alpha", Version: "1.0.0", DepKeys: []string{"beta::1.0.0"}},
		{Name: "beta", Version: "1.0.0"},
	}
	explored := []string{"alpha", "beta"}

	if err := s.Save("fp1", reqs, nodes, explored); err != nil {
		t.Fatalf("Save: %v", err)
	}

	gotReqs, gotNodes, gotExplored, ok, err := s.Load("fp1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load reported cache miss after Save")
	}
	if len(gotReqs) != 1 || gotReqs[0] != "alpha" {
		t.Errorf("requirements round-trip mismatch: %v", gotReqs)
	}
	if len(gotNodes) != 2 {
		t.Errorf("nodes round-trip mismatch: %v", gotNodes)
	}
	if len(gotExplored) != 2 {
		t.Errorf("explored round-trip mismatch: %v", gotExplored)
	}
}

func TestLoadMissingFingerprintIsCacheMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, _, _, ok, err := s.Load("nonexistent")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("expected cache miss for unknown fingerprint")
	}
}

func TestLoadCorruptValueIsCacheMissNotError(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte("fpcorrupt"), []byte("not valid json"))
	})
	if err != nil {
		t.Fatalf("seeding corrupt value: %v", err)
	}

	_, _, _, ok, err := s.Load("fpcorrupt")
	if err != nil {
		t.Fatalf("Load returned an error for a corrupt value, want ok=false, err=nil: %v", err)
	}
	if ok {
		t.Error("expected cache miss for a corrupt snapshot value")
	}
}
