package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = models.Owner{ID: "owner-1", Name: "Asha"}

// failingBackend wraps a backend and fails writes on demand
type failingBackend struct {
	storage.Backend
	failPut    bool
	failDelete bool
}

func (f *failingBackend) Delete(ctx context.Context, namespace string) error {
	if f.failDelete {
		return errors.New("permission denied")
	}
	return f.Backend.Delete(ctx, namespace)
}

func (f *failingBackend) Put(ctx context.Context, namespace string, data []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.Backend.Put(ctx, namespace, data)
}

func item(id string, createdAt int64) models.VaultItem {
	return models.VaultItem{ID: id, CreatedAt: createdAt, Title: id, SourceLanguage: "Hindi", TargetLanguage: "English"}
}

func openSession(t *testing.T, backend storage.Backend) (*Store, *Session) {
	t.Helper()
	store := NewStore(backend)
	sess, err := store.Open(context.Background(), owner)
	require.NoError(t, err)
	return store, sess
}

func persisted(t *testing.T, backend storage.Backend, ownerID string) []models.VaultItem {
	t.Helper()
	data, err := backend.Get(context.Background(), ownerID)
	require.NoError(t, err)
	var items []models.VaultItem
	require.NoError(t, json.Unmarshal(data, &items))
	return items
}

func TestAppendNewestFirst(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	store, sess := openSession(t, backend)

	_, err := store.Append(ctx, sess, item("a", 1))
	require.NoError(t, err)
	_, err = store.Append(ctx, sess, item("b", 2))
	require.NoError(t, err)

	items, err := store.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, owner.ID, items[0].OwnerID)
	assert.Equal(t, models.StatusNotVisited, items[0].Status)

	assert.Equal(t, items, persisted(t, backend, owner.ID))
}

func TestAppendBoundsArchive(t *testing.T) {
	ctx := context.Background()
	store, sess := openSession(t, storage.NewMemory())

	var first models.VaultItem
	for i := 0; i < models.MaxArchiveItems; i++ {
		appended, err := store.Append(ctx, sess, item(fmt.Sprintf("item-%02d", i), int64(i)))
		require.NoError(t, err)
		if i == 0 {
			first = appended
		}
	}

	items, err := store.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, items, models.MaxArchiveItems)

	_, err = store.Append(ctx, sess, item("newest", 100))
	require.NoError(t, err)

	items, err = store.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, items, models.MaxArchiveItems)
	assert.Equal(t, "newest", items[0].ID)
	for _, it := range items {
		assert.NotEqual(t, first.ID, it.ID, "Expected oldest item to be evicted")
	}
	for i, it := range items[1:] {
		assert.Equal(t, fmt.Sprintf("item-%02d", models.MaxArchiveItems-1-i), it.ID, "position %d", i+1)
	}
	assert.Equal(t, items, persisted(t, store.backend, owner.ID))
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	store, sess := openSession(t, backend)

	_, err := store.Append(ctx, sess, item("a", 1))
	require.NoError(t, err)
	_, err = store.Append(ctx, sess, item("b", 2))
	require.NoError(t, err)

	before, _ := store.List(ctx, sess)

	require.NoError(t, store.UpdateStatus(ctx, sess, "a", models.StatusCompleted))

	after, _ := store.List(ctx, sess)
	require.Len(t, after, 2)
	assert.Equal(t, models.StatusCompleted, after[1].Status)

	unchanged := after[1]
	unchanged.Status = before[1].Status
	assert.Equal(t, before[1], unchanged, "Expected only the status to change")
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, after, persisted(t, backend, owner.ID))
}

func TestUpdateStatusUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	store, sess := openSession(t, storage.NewMemory())
	_, err := store.Append(ctx, sess, item("a", 1))
	require.NoError(t, err)

	before, _ := store.List(ctx, sess)
	require.NoError(t, store.UpdateStatus(ctx, sess, "missing", models.StatusCompleted))
	after, _ := store.List(ctx, sess)
	assert.Equal(t, before, after)
}

func TestUpdateStatusInvalid(t *testing.T) {
	ctx := context.Background()
	store, sess := openSession(t, storage.NewMemory())
	_, err := store.Append(ctx, sess, item("a", 1))
	require.NoError(t, err)

	err = store.UpdateStatus(ctx, sess, "a", models.Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	store, sess := openSession(t, backend)

	for i, id := range []string{"a", "b", "c"} {
		_, err := store.Append(ctx, sess, item(id, int64(i)))
		require.NoError(t, err)
	}

	require.NoError(t, store.Remove(ctx, sess, "b"))
	items, _ := store.List(ctx, sess)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "a", items[1].ID)

	require.NoError(t, store.Remove(ctx, sess, "missing"))
	items, _ = store.List(ctx, sess)
	assert.Len(t, items, 2)
	assert.Len(t, persisted(t, backend, owner.ID), 2)
}

func TestReplaceKeepsPosition(t *testing.T) {
	ctx := context.Background()
	store, sess := openSession(t, storage.NewMemory())
	for i, id := range []string{"a", "b", "c"} {
		_, err := store.Append(ctx, sess, item(id, int64(i)))
		require.NoError(t, err)
	}

	rerun := item("b", 1)
	rerun.Title = "Rerun"
	rerun.Status = models.StatusInProgress
	require.NoError(t, store.Replace(ctx, sess, rerun))

	items, _ := store.List(ctx, sess)
	assert.Equal(t, "Rerun", items[1].Title)
	assert.Equal(t, models.StatusInProgress, items[1].Status)

	require.NoError(t, store.Replace(ctx, sess, item("missing", 9)))
	items, _ = store.List(ctx, sess)
	assert.Len(t, items, 3)
}

func TestStorageFailureLeavesArchiveUntouched(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{Backend: storage.NewMemory()}
	store, sess := openSession(t, backend)

	_, err := store.Append(ctx, sess, item("a", 1))
	require.NoError(t, err)

	backend.failPut = true
	_, err = store.Append(ctx, sess, item("b", 2))
	assert.ErrorIs(t, err, ErrStorage)

	err = store.UpdateStatus(ctx, sess, "a", models.StatusCompleted)
	assert.ErrorIs(t, err, ErrStorage)

	items, _ := store.List(ctx, sess)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusNotVisited, items[0].Status)
	assert.Len(t, persisted(t, backend, owner.ID), 1)
}

func TestOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	store := NewStore(backend)

	alice, err := store.Open(ctx, models.Owner{ID: "alice"})
	require.NoError(t, err)
	bob, err := store.Open(ctx, models.Owner{ID: "bob"})
	require.NoError(t, err)

	_, err = store.Append(ctx, alice, item("a", 1))
	require.NoError(t, err)

	items, err := store.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, store.Remove(ctx, bob, "a"))
	items, _ = store.List(ctx, alice)
	assert.Len(t, items, 1)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	store, sess := openSession(t, backend)

	_, err := store.Append(ctx, sess, item("a", 1))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID())

	sess.Close()
	_, err = store.List(ctx, sess)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = store.Append(ctx, sess, item("b", 2))
	assert.ErrorIs(t, err, ErrSessionClosed)

	again, err := store.Open(ctx, owner)
	require.NoError(t, err)
	items, err := store.List(ctx, again)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
	assert.NotEqual(t, sess.ID(), again.ID())

	_, err = store.Open(ctx, models.Owner{})
	assert.ErrorIs(t, err, ErrNoOwner)
}

// Two sessions for one owner each write their own mirror, so the last
// writer wins. Concurrent multi-user access to one archive is unsupported.
func TestConcurrentSessionsLastWriterWins(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	store := NewStore(backend)

	first, err := store.Open(ctx, owner)
	require.NoError(t, err)
	second, err := store.Open(ctx, owner)
	require.NoError(t, err)

	_, err = store.Append(ctx, first, item("from-first", 1))
	require.NoError(t, err)
	_, err = store.Append(ctx, second, item("from-second", 2))
	require.NoError(t, err)

	items := persisted(t, backend, owner.ID)
	require.Len(t, items, 1)
	assert.Equal(t, "from-second", items[0].ID)

	reopened, err := store.Open(ctx, owner)
	require.NoError(t, err)
	mirrored, _ := store.List(ctx, reopened)
	assert.Equal(t, items, mirrored)
}

func TestReopenRoundTripsItems(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	store, sess := openSession(t, backend)

	full := item("full", 7)
	full.Status = models.StatusInProgress
	full.SourceImage = models.SourceImage{EncodedBytes: "aW1n", MIMEType: "image/png"}
	full.Result = models.StructuredResult{
		Title:          "Sale Deed",
		SourceText:     "clean",
		RawSourceText:  "raw",
		TranslatedText: "translated",
		Entities:       &models.Entities{Persons: []string{"Ram Lal"}, Locations: []string{}, Dates: []string{}},
		Sections:       []models.Section{},
	}
	appended, err := store.Append(ctx, sess, full)
	require.NoError(t, err)

	empty := item("empty", 3)
	empty.Result = models.StructuredResult{Entities: &models.Entities{Identifiers: []string{}}, Sections: []models.Section{}}
	_, err = store.Import(ctx, sess, []models.VaultItem{empty})
	require.NoError(t, err)

	want, err := store.List(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, appended, want[0])

	reopened, err := store.Open(ctx, owner)
	require.NoError(t, err)
	got, err := store.List(ctx, reopened)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{Backend: storage.NewMemory()}
	store, sess := openSession(t, backend)

	_, err := store.Append(ctx, sess, item("a", 1))
	require.NoError(t, err)

	backend.failDelete = true
	assert.ErrorIs(t, store.Purge(ctx, sess), ErrStorage)
	items, _ := store.List(ctx, sess)
	assert.Len(t, items, 1, "Expected mirror to survive a failed purge")

	backend.failDelete = false
	require.NoError(t, store.Purge(ctx, sess))
	items, _ = store.List(ctx, sess)
	assert.Empty(t, items)
	_, err = backend.Get(ctx, owner.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	reopened, err := store.Open(ctx, owner)
	require.NoError(t, err)
	items, _ = store.List(ctx, reopened)
	assert.Empty(t, items)

	sess.Close()
	assert.ErrorIs(t, store.Purge(ctx, sess), ErrSessionClosed)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store, sess := openSession(t, storage.NewMemory())
	_, err := store.Append(ctx, sess, item("existing", 5))
	require.NoError(t, err)

	foreign := item("older", 1)
	foreign.OwnerID = "someone-else"
	added, err := store.Import(ctx, sess, []models.VaultItem{foreign, item("existing", 5), item("newer", 9)})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	items, _ := store.List(ctx, sess)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"newer", "existing", "older"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, owner.ID, items[2].OwnerID)
}

func TestNewItem(t *testing.T) {
	at := time.Date(2026, time.March, 4, 9, 15, 30, 0, time.Local)

	untitled := NewItem(at, models.StructuredResult{RawFallbackText: "text"}, []byte("img"), "image/png",
		models.LookupSource("ta"), models.LookupTarget("en"))
	assert.Equal(t, "Analysis 09:15:30", untitled.Title)
	assert.Equal(t, "Tamil", untitled.SourceLanguage)
	assert.Equal(t, "English", untitled.TargetLanguage)
	assert.Equal(t, at.UnixMilli(), untitled.CreatedAt)
	assert.Equal(t, models.StatusNotVisited, untitled.Status)

	img, err := DecodeImage(untitled)
	require.NoError(t, err)
	assert.Equal(t, "img", string(img))

	titled := NewItem(at, models.StructuredResult{Title: "Deed"}, nil, "image/jpeg",
		models.LookupSource("hi"), models.LookupTarget("en"))
	assert.Equal(t, "Deed", titled.Title)

	later := NewItem(at.Add(time.Second), models.StructuredResult{}, nil, "", models.LookupSource("hi"), models.LookupTarget("en"))
	assert.Less(t, untitled.ID, later.ID, "Expected ids to sort by creation time")
}
