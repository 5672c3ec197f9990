package id

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func decode(t *testing.T, value string) uuid.UUID {
	t.Helper()
	raw, err := encoding.DecodeString(strings.ToUpper(value))
	if err != nil {
		t.Fatalf("decode %q: %v", value, err)
	}
	parsed, err := uuid.FromBytes(raw)
	if err != nil {
		t.Fatalf("uuid from bytes: %v", err)
	}
	return parsed
}

func TestNewIDIsLowercaseBase32UUID(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(value), value)
	}
	if strings.ToLower(value) != value || strings.Contains(value, "=") {
		t.Fatalf("expected unpadded lowercase id, got %q", value)
	}

	parsed := decode(t, value)
	if parsed.Version() != 4 {
		t.Fatalf("expected version 4, got %d", parsed.Version())
	}
	if parsed.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC 4122 variant, got %s", parsed.Variant())
	}
}

// Episode and audit ids are minted from concurrent episodes.
func TestNewIDUniqueAcrossGoroutines(t *testing.T) {
	const workers, perWorker = 8, 64

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				value, err := NewID()
				if err != nil {
					t.Errorf("new id: %v", err)
					return
				}
				mu.Lock()
				seen[value] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}
