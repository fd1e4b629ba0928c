package progress

import (
	"sync"
	"testing"
	"time"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Set("run-1", StatusProcessing, "parsing", 30, "Parsing script...")

	snap, ok := s.Get("run-1")
	if !ok {
		t.Fatal("run-1 should exist")
	}
	if snap.Status != StatusProcessing || snap.Step != "parsing" || snap.Progress != 30 {
		t.Errorf("got %+v", snap)
	}
	if !snap.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v, want %v", snap.Timestamp, fixed)
	}

	if _, ok := s.Get("unknown"); ok {
		t.Error("unknown run should not exist")
	}
}

func TestStoreLatestWriteWins(t *testing.T) {
	s := NewStore()
	s.Set("run-1", StatusProcessing, "parsing", 30, "")
	s.Set("run-1", StatusProcessing, "audio_generation", 50, "")
	s.Set("run-1", StatusComplete, "finished", 100, "done")

	snap, _ := s.Get("run-1")
	if snap.Status != StatusComplete || snap.Progress != 100 {
		t.Errorf("got %+v, want terminal snapshot", snap)
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	s.Set("run-1", StatusProcessing, "parsing", 30, "")
	s.Delete("run-1")
	if _, ok := s.Get("run-1"); ok {
		t.Error("run-1 should be gone")
	}
	// Deleting twice is a no-op.
	s.Delete("run-1")
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		id := string(rune('a' + i))
		go func() {
			defer wg.Done()
			for pct := 0; pct <= 100; pct += 10 {
				s.Set(id, StatusProcessing, "audio_generation", pct, "")
			}
		}()
		go func() {
			defer wg.Done()
			for range 20 {
				s.Get(id)
			}
		}()
	}
	wg.Wait()
	if s.Len() != 8 {
		t.Errorf("Len() = %d, want 8", s.Len())
	}
}
