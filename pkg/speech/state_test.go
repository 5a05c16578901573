package speech

import (
	"sync"
	"testing"
)

func TestStateCommit(t *testing.T) {
	s := NewState("doc")
	if s.Owner() != "doc" {
		t.Errorf("Expected owner doc, got %q", s.Owner())
	}

	stack := []*Field{structural(RoleDocument, "d")}
	attrs := map[string]string{"bold": "on"}
	indent := "  "
	s.commit(stack, attrs, &indent)

	snap := s.Snapshot()
	if len(snap.Stack) != 1 || snap.FormatAttrs["bold"] != "on" || snap.Indentation != "  " {
		t.Fatalf("Unexpected snapshot %+v", snap)
	}

	t.Run("snapshot is isolated from the caller", func(t *testing.T) {
		attrs["bold"] = "off"
		stack[0] = structural(RoleList, "l")
		if s.Snapshot().FormatAttrs["bold"] != "on" {
			t.Error("Expected committed attributes to be copied")
		}
		if s.Snapshot().Stack[0].Role != RoleDocument {
			t.Error("Expected committed stack to be copied")
		}
	})

	t.Run("nil indentation keeps the previous value", func(t *testing.T) {
		s.commit(nil, nil, nil)
		snap := s.Snapshot()
		if snap.Indentation != "  " {
			t.Errorf("Expected indentation to be kept, got %q", snap.Indentation)
		}
		if snap.FormatAttrs == nil {
			t.Error("Expected a non-nil attribute map")
		}
	})

	t.Run("reset", func(t *testing.T) {
		s.Reset()
		snap := s.Snapshot()
		if len(snap.Stack) != 0 || len(snap.FormatAttrs) != 0 || snap.Indentation != "" {
			t.Errorf("Expected empty snapshot after reset, got %+v", snap)
		}
	})
}

func TestStateConcurrentReaders(t *testing.T) {
	s := NewState("doc")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := s.Snapshot()
				if snap == nil || snap.FormatAttrs == nil {
					t.Error("Expected a complete snapshot")
					return
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.commit([]*Field{structural(RoleDocument, "d")}, map[string]string{"n": "1"}, nil)
	}
	wg.Wait()
}
