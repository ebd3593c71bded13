package generator_test

import (
	"regexp"
	"sync"
	"testing"

	"github.com/glizzus/mfp-bot/internal/generator"
	"github.com/google/uuid"
)

func TestUUIDV4Generator_Next_Concurrent(t *testing.T) {
	regex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	gen := generator.UUIDV4Generator{}

	var mu sync.Mutex
	seen := make(map[uuid.UUID]struct{})

	total := 100000
	concurrency := 10
	batchSize := total / concurrency

	var wg sync.WaitGroup
	wg.Add(concurrency)

	for range concurrency {
		go func() {
			defer wg.Done()
			for range batchSize {
				id, err := gen.Next()
				if err != nil {
					t.Error("expected no error, got:", err)
					return
				}
				mu.Lock()
				if _, ok := seen[id]; ok {
					mu.Unlock()
					t.Errorf("expected a unique ID, got duplicate: %s", id)
					return
				}
				seen[id] = struct{}{}
				mu.Unlock()

				if !regex.MatchString(id.String()) {
					t.Errorf("expected valid UUID format, got %s", id)
					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestSequenceGenerator(t *testing.T) {
	gen := generator.NewSequenceGenerator("a", "b")

	want := []string{"a", "b", "b"}
	for i, w := range want {
		got, err := gen.Next()
		if err != nil {
			t.Fatalf("Next() #%d returned error: %v", i, err)
		}
		if got != w {
			t.Errorf("Next() #%d = %q; want %q", i, got, w)
		}
	}
}
