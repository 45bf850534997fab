package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/storage"
)

var (
	ErrSessionClosed = errors.New("vault session is closed")
	ErrInvalidStatus = errors.New("invalid status")
	ErrStorage       = errors.New("vault storage failure")
	ErrNoOwner       = errors.New("owner id is required")
)

// Store is a per-owner archive on top of a storage backend. Every mutation
// rewrites the owner's whole archive in one Put. It performs no locking:
// callers serialize operations on a session.
type Store struct {
	backend storage.Backend
}

func NewStore(backend storage.Backend) *Store {
	return &Store{backend: backend}
}

// Open loads the owner's archive and starts a session for it
func (s *Store) Open(ctx context.Context, owner models.Owner) (*Session, error) {
	if owner.ID == "" {
		return nil, ErrNoOwner
	}
	items, err := s.load(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	sess := newSession(owner, items)
	slog.Info("Vault session opened", "session_id", sess.id, "owner", owner.ID, "items", len(items))
	return sess, nil
}

// List returns the archive newest first
func (s *Store) List(ctx context.Context, sess *Session) ([]models.VaultItem, error) {
	if sess.closed {
		return nil, ErrSessionClosed
	}
	return sess.Snapshot(), nil
}

// Get selects one item by id
func (s *Store) Get(ctx context.Context, sess *Session, id string) (models.VaultItem, bool, error) {
	if sess.closed {
		return models.VaultItem{}, false, ErrSessionClosed
	}
	for _, item := range sess.items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return models.VaultItem{}, false, nil
}

// Append inserts item at the head and evicts the oldest entries beyond MaxArchiveItems
func (s *Store) Append(ctx context.Context, sess *Session, item models.VaultItem) (models.VaultItem, error) {
	if sess.closed {
		return models.VaultItem{}, ErrSessionClosed
	}
	if item.ID == "" {
		item.ID = NewID(CreatedTime(item))
	}
	item = own(sess, item)

	next := make([]models.VaultItem, 0, len(sess.items)+1)
	next = append(next, item)
	next = append(next, sess.items...)
	next = bound(next)

	if err := s.commit(ctx, sess, next); err != nil {
		return models.VaultItem{}, err
	}
	slog.Info("Archived analysis", "owner", sess.owner.ID, "id", item.ID, "items", len(next))
	return item, nil
}

// UpdateStatus changes only the status of the matching item. An unknown id is a no-op.
func (s *Store) UpdateStatus(ctx context.Context, sess *Session, id string, status models.Status) error {
	if sess.closed {
		return ErrSessionClosed
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	idx := indexOf(sess.items, id)
	if idx < 0 {
		return nil
	}

	next := sess.Snapshot()
	next[idx].Status = status
	return s.commit(ctx, sess, next)
}

// Replace swaps the item with the same id in place, keeping its position. An unknown id is a no-op.
func (s *Store) Replace(ctx context.Context, sess *Session, item models.VaultItem) error {
	if sess.closed {
		return ErrSessionClosed
	}
	idx := indexOf(sess.items, item.ID)
	if idx < 0 {
		return nil
	}

	next := sess.Snapshot()
	next[idx] = own(sess, item)
	return s.commit(ctx, sess, next)
}

// Remove deletes the matching item. An unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, sess *Session, id string) error {
	if sess.closed {
		return ErrSessionClosed
	}
	idx := indexOf(sess.items, id)
	if idx < 0 {
		return nil
	}

	next := make([]models.VaultItem, 0, len(sess.items)-1)
	next = append(next, sess.items[:idx]...)
	next = append(next, sess.items[idx+1:]...)
	return s.commit(ctx, sess, next)
}

// Import merges items into the archive, re-owned by the session owner.
// Items whose id is already archived are skipped. The result is ordered
// newest first and bounded like Append.
func (s *Store) Import(ctx context.Context, sess *Session, items []models.VaultItem) (int, error) {
	if sess.closed {
		return 0, ErrSessionClosed
	}

	next := sess.Snapshot()
	added := 0
	for _, item := range items {
		if item.ID == "" {
			item.ID = NewID(CreatedTime(item))
		} else if indexOf(next, item.ID) >= 0 {
			continue
		}
		next = append(next, own(sess, item))
		added++
	}
	if added == 0 {
		return 0, nil
	}

	sort.SliceStable(next, func(i, j int) bool {
		return next[i].CreatedAt > next[j].CreatedAt
	})
	next = bound(next)

	if err := s.commit(ctx, sess, next); err != nil {
		return 0, err
	}
	return added, nil
}

// Purge deletes the owner's whole archive from the backend
func (s *Store) Purge(ctx context.Context, sess *Session) error {
	if sess.closed {
		return ErrSessionClosed
	}
	if err := s.backend.Delete(ctx, sess.owner.ID); err != nil {
		slog.Error("Failed to delete vault", "owner", sess.owner.ID, "err", err)
		return fmt.Errorf("failed to delete vault: %w: %w", ErrStorage, err)
	}
	slog.Info("Vault purged", "owner", sess.owner.ID, "items", len(sess.items))
	sess.items = []models.VaultItem{}
	return nil
}

// commit writes the full archive and updates the session mirror only on success
func (s *Store) commit(ctx context.Context, sess *Session, items []models.VaultItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode vault: %w", err)
	}
	if err := s.backend.Put(ctx, sess.owner.ID, data); err != nil {
		slog.Error("Failed to write vault", "owner", sess.owner.ID, "err", err)
		return fmt.Errorf("failed to write vault: %w: %w", ErrStorage, err)
	}
	sess.items = items
	return nil
}

func (s *Store) load(ctx context.Context, ownerID string) ([]models.VaultItem, error) {
	data, err := s.backend.Get(ctx, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.VaultItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w: %w", ErrStorage, err)
	}

	var items []models.VaultItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode vault: %w: %w", ErrStorage, err)
	}
	for i := range items {
		items[i].Status = items[i].Status.Normalize()
	}
	return bound(items), nil
}

// own prepares an item for the session's archive in its persisted shape
func own(sess *Session, item models.VaultItem) models.VaultItem {
	item.OwnerID = sess.owner.ID
	item.Status = item.Status.Normalize()
	item.Result = item.Result.Compact()
	return item
}

func bound(items []models.VaultItem) []models.VaultItem {
	if len(items) > models.MaxArchiveItems {
		return items[:models.MaxArchiveItems]
	}
	return items
}

func indexOf(items []models.VaultItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
