package sequencer

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
)

// fakeStore keeps ordering state in memory and records every index
// write so tests can observe the two-phase renumbering.
type fakeStore struct {
	indexes map[int64]int
	hidden  map[int64]bool
	writes  []indexWrite
}

type indexWrite struct {
	sceneID int64
	index   int
}

func newFakeStore(visibleIDs ...int64) *fakeStore {
	s := &fakeStore{
		indexes: make(map[int64]int),
		hidden:  make(map[int64]bool),
	}
	for i, id := range visibleIDs {
		s.indexes[id] = i + 1
	}
	return s
}

func (s *fakeStore) ListVisibleSceneIDs(ctx context.Context, projectID uuid.UUID) ([]int64, error) {
	var ids []int64
	for id := range s.indexes {
		if !s.hidden[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return s.indexes[ids[i]] < s.indexes[ids[j]] })
	return ids, nil
}

func (s *fakeStore) MaxVisibleIndex(ctx context.Context, projectID uuid.UUID) (int, error) {
	max := 0
	for id, idx := range s.indexes {
		if !s.hidden[id] && idx > max {
			max = idx
		}
	}
	return max, nil
}

func (s *fakeStore) SetSceneIndex(ctx context.Context, sceneID int64, index int) error {
	s.indexes[sceneID] = index
	s.writes = append(s.writes, indexWrite{sceneID, index})
	return nil
}

func (s *fakeStore) SetSceneHidden(ctx context.Context, sceneID int64, hidden bool, index int) error {
	s.hidden[sceneID] = hidden
	s.indexes[sceneID] = index
	return nil
}

func (s *fakeStore) visibleOrder() []int64 {
	ids, _ := s.ListVisibleSceneIDs(context.Background(), uuid.Nil)
	return ids
}

func TestHideRenumbersContiguously(t *testing.T) {
	// Ten visible scenes; scene id 42 sits at index 5.
	ids := []int64{11, 12, 13, 14, 42, 16, 17, 18, 19, 20}
	store := newFakeStore(ids...)
	seq := New(store)
	projectID := uuid.New()

	if err := seq.Hide(context.Background(), projectID, 42); err != nil {
		t.Fatalf("hide failed: %v", err)
	}

	if !store.hidden[42] {
		t.Error("scene 42 was not flagged hidden")
	}
	if store.indexes[42] != -42 {
		t.Errorf("hidden scene must park at -id, got %d", store.indexes[42])
	}

	// Remaining scenes are contiguous 1..9 in their original order.
	want := []int64{11, 12, 13, 14, 16, 17, 18, 19, 20}
	got := store.visibleOrder()
	if len(got) != len(want) {
		t.Fatalf("expected %d visible scenes, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i] != id {
			t.Errorf("position %d: expected scene %d, got %d", i+1, id, got[i])
		}
		if store.indexes[id] != i+1 {
			t.Errorf("scene %d: expected index %d, got %d", id, i+1, store.indexes[id])
		}
	}
}

func TestRenumberIsTwoPhase(t *testing.T) {
	store := newFakeStore(1, 2, 3)
	seq := New(store)

	if err := seq.Reorder(context.Background(), uuid.New(), []int64{3, 1, 2}); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	// Phase one must move every scene out of the live range before any
	// final value is assigned, or a transient uniqueness collision with
	// a not-yet-moved row is possible.
	if len(store.writes) != 6 {
		t.Fatalf("expected 6 index writes, got %d", len(store.writes))
	}
	for i, w := range store.writes[:3] {
		if w.index < tempIndexBase {
			t.Errorf("write %d assigned final index %d before the temp phase finished", i, w.index)
		}
	}
	for i, w := range store.writes[3:] {
		if w.index != i+1 {
			t.Errorf("final phase write %d: expected index %d, got %d", i, i+1, w.index)
		}
	}

	want := []int64{3, 1, 2}
	got := store.visibleOrder()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestRestoreAppendsAtEnd(t *testing.T) {
	store := newFakeStore(1, 2, 3)
	seq := New(store)
	projectID := uuid.New()

	if err := seq.Hide(context.Background(), projectID, 2); err != nil {
		t.Fatalf("hide failed: %v", err)
	}
	if err := seq.Restore(context.Background(), projectID, 2); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if store.hidden[2] {
		t.Error("scene 2 is still hidden")
	}
	// Scenes 1 and 3 were renumbered to 1, 2 on hide; the restored
	// scene appends at 3, not back at its old slot.
	if store.indexes[2] != 3 {
		t.Errorf("expected restored scene at index 3, got %d", store.indexes[2])
	}
}

func TestReorderRejectsWrongSet(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		ids  []int64
	}{
		{"missing a scene", []int64{1, 2}},
		{"unknown scene", []int64{1, 2, 99}},
		{"duplicate scene", []int64{1, 2, 2}},
	}

	for _, tc := range cases {
		store := newFakeStore(1, 2, 3)
		seq := New(store)

		if err := seq.Reorder(ctx, uuid.New(), tc.ids); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
		if len(store.writes) != 0 {
			t.Errorf("%s: a rejected reorder must not touch any index", tc.name)
		}
	}
}
