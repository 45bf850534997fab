package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()

	bolt, err := NewBolt(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)

	sqlite, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "vault.sqlite"))
	require.NoError(t, err)

	all := map[string]Backend{
		"memory": NewMemory(),
		"bolt":   bolt,
		"sqlite": sqlite,
		"s3":     NewS3WithClient(newFakeS3(), "bucket", "vaults"),
	}
	t.Cleanup(func() {
		for _, b := range all {
			_ = b.Close()
		}
	})
	return all
}

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(ctx, "owner-1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Put(ctx, "owner-1", []byte(`[{"id":"a"}]`)))
			require.NoError(t, b.Put(ctx, "owner-2", []byte(`[]`)))

			got, err := b.Get(ctx, "owner-1")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"a"}]`, string(got))

			require.NoError(t, b.Put(ctx, "owner-1", []byte(`[{"id":"b"}]`)))
			got, err = b.Get(ctx, "owner-1")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"b"}]`, string(got))

			other, err := b.Get(ctx, "owner-2")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(other))

			require.NoError(t, b.Delete(ctx, "owner-1"))
			_, err = b.Get(ctx, "owner-1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryBackendCopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	data := []byte("abc")
	require.NoError(t, m.Put(ctx, "ns", data))
	data[0] = 'z'

	got, err := m.Get(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.sqlite")

	first, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "owner", []byte("persisted")))
	require.NoError(t, first.Close())

	second, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Options{Driver: DriverBolt, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &BoltBackend{}, b)
	require.NoError(t, b.Close())

	m, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, m)

	_, err = Open(ctx, Options{Driver: "floppy"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverS3})
	assert.Error(t, err)
}
