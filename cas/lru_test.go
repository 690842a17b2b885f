package cas

import (
	"fmt"
	"testing"

	"github.com/needle-lang/needle/lang"
)

func compileN(t *testing.T, n int) *lang.Compiled {
	t.Helper()
	compiled, err := lang.CompileLiteral(fmt.Sprintf("x = %d\nx", n))
	if err != nil {
		t.Fatalf("Failed to compile program %d: %v", n, err)
	}
	return compiled
}

func TestLRUStore_BasicOperation(t *testing.T) {
	underlying := NewMemoryStore()
	cache := NewLRUStore(underlying, 2) // Small cache for testing

	var hashes []Hash
	for i := 0; i < 3; i++ {
		h, err := cache.Put(compileN(t, i))
		if err != nil {
			t.Fatalf("Failed to put program %d: %v", i, err)
		}
		hashes = append(hashes, h)
	}

	for i, h := range hashes {
		got, err := Retrieve[*lang.Compiled](cache, h)
		if err != nil {
			t.Fatalf("Failed to retrieve program %d: %v", i, err)
		}
		if len(got.Bindings) != 1 || got.Bindings[0].Name != "x" {
			t.Errorf("Program %d came back wrong: %#v", i, got.Bindings)
		}
	}

	stats := cache.Stats()
	if stats.Size > stats.MaxSize {
		t.Errorf("Cache size %d exceeds max size %d", stats.Size, stats.MaxSize)
	}
	if stats.Misses != 3 {
		t.Errorf("Expected 3 cold misses, got %d", stats.Misses)
	}

	// The most recent retrieval must be a cache hit.
	if _, err := Retrieve[*lang.Compiled](cache, hashes[2]); err != nil {
		t.Fatalf("Failed to re-retrieve program: %v", err)
	}
	if cache.Stats().Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", cache.Stats().Hits)
	}
}

func TestLRUStore_EvictsOldest(t *testing.T) {
	cache := NewLRUStore(NewMemoryStore(), 2)

	var hashes []Hash
	for i := 0; i < 3; i++ {
		h, err := cache.Put(compileN(t, i))
		if err != nil {
			t.Fatalf("Failed to put program %d: %v", i, err)
		}
		if _, err := Retrieve[*lang.Compiled](cache, h); err != nil {
			t.Fatalf("Failed to retrieve program %d: %v", i, err)
		}
		hashes = append(hashes, h)
	}

	// The first program was evicted, but the store still has it.
	if _, err := Retrieve[*lang.Compiled](cache, hashes[0]); err != nil {
		t.Fatalf("Evicted entry should fall back to the store: %v", err)
	}
	stats := cache.Stats()
	if stats.Size != 2 {
		t.Errorf("Cache should hold 2 entries, got %d", stats.Size)
	}
}

func TestLRUStore_Has(t *testing.T) {
	cache := NewLRUStore(NewMemoryStore(), 10)

	h, err := cache.Put(compileN(t, 42))
	if err != nil {
		t.Fatalf("Failed to put program: %v", err)
	}
	if !cache.Has(h) {
		t.Errorf("Cache should report hash exists")
	}
	if cache.Has(Hash(99999)) {
		t.Errorf("Cache should report non-existent hash doesn't exist")
	}
}
