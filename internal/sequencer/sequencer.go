package sequencer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// tempIndexBase puts two-phase temporary values far outside any live
// range. Phase one moves every affected scene to tempIndexBase+position,
// phase two assigns the final 1..N values. A single-phase update under
// the (project, index) uniqueness constraint can transiently collide
// with a not-yet-updated row, so two phases are mandatory here, not an
// optimization.
const tempIndexBase = 10000

// Store is the ordering state the sequencer writes. internal/db
// implements it against the scenes table.
type Store interface {
	// ListVisibleSceneIDs returns visible scene ids ordered by index.
	ListVisibleSceneIDs(ctx context.Context, projectID uuid.UUID) ([]int64, error)
	// MaxVisibleIndex returns 0 when the project has no visible scenes.
	MaxVisibleIndex(ctx context.Context, projectID uuid.UUID) (int, error)
	SetSceneIndex(ctx context.Context, sceneID int64, index int) error
	SetSceneHidden(ctx context.Context, sceneID int64, hidden bool, index int) error
}

// Sequencer maintains the ordering invariant: visible scene indices
// form the contiguous range 1..N, hidden scenes sit at -id. It is the
// only engine component that writes shared ordering state, so all
// operations on one project serialize behind a per-project lock.
type Sequencer struct {
	store Store
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func New(store Store) *Sequencer {
	return &Sequencer{store: store}
}

func (s *Sequencer) projectLock(projectID uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(projectID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Hide parks the scene at -sceneID (unique because ids are unique),
// flags it hidden, and renumbers the remaining visible scenes back to
// a contiguous 1..N. Hiding never deletes: dependent utterances,
// balloons and cues survive an index flip.
func (s *Sequencer) Hide(ctx context.Context, projectID uuid.UUID, sceneID int64) error {
	mu := s.projectLock(projectID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.SetSceneHidden(ctx, sceneID, true, int(-sceneID)); err != nil {
		return fmt.Errorf("failed to hide scene %d: %w", sceneID, err)
	}

	ids, err := s.store.ListVisibleSceneIDs(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list visible scenes: %w", err)
	}
	return s.renumber(ctx, ids)
}

// Restore places the scene back at the end of the visible range.
func (s *Sequencer) Restore(ctx context.Context, projectID uuid.UUID, sceneID int64) error {
	mu := s.projectLock(projectID)
	mu.Lock()
	defer mu.Unlock()

	max, err := s.store.MaxVisibleIndex(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get max visible index: %w", err)
	}

	if err := s.store.SetSceneHidden(ctx, sceneID, false, max+1); err != nil {
		return fmt.Errorf("failed to restore scene %d: %w", sceneID, err)
	}
	return nil
}

// Reorder renumbers the project's visible scenes to the given order.
// orderedIDs must be exactly the current visible set.
func (s *Sequencer) Reorder(ctx context.Context, projectID uuid.UUID, orderedIDs []int64) error {
	mu := s.projectLock(projectID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.store.ListVisibleSceneIDs(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list visible scenes: %w", err)
	}
	if err := sameIDSet(current, orderedIDs); err != nil {
		return err
	}

	return s.renumber(ctx, orderedIDs)
}

// renumber assigns 1..N in two phases: temporary out-of-range values
// first, final values second.
func (s *Sequencer) renumber(ctx context.Context, orderedIDs []int64) error {
	for pos, id := range orderedIDs {
		if err := s.store.SetSceneIndex(ctx, id, tempIndexBase+pos+1); err != nil {
			return fmt.Errorf("failed to assign temp index for scene %d: %w", id, err)
		}
	}
	for pos, id := range orderedIDs {
		if err := s.store.SetSceneIndex(ctx, id, pos+1); err != nil {
			return fmt.Errorf("failed to assign final index for scene %d: %w", id, err)
		}
	}
	return nil
}

func sameIDSet(current, requested []int64) error {
	if len(current) != len(requested) {
		return fmt.Errorf("reorder must include all %d visible scenes, got %d", len(current), len(requested))
	}
	seen := make(map[int64]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}
	for _, id := range requested {
		if !seen[id] {
			return fmt.Errorf("scene %d is not a visible scene of this project (or listed twice)", id)
		}
		delete(seen, id)
	}
	return nil
}
