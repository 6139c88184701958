package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
)

// setupInMemoryStore creates a private in-memory SQLite store for testing.
func setupInMemoryStore(t *testing.T) driven.AnnotationStore {
	t.Helper()
	store, err := NewStore("")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store.AnnotationStore()
}

func appendAnnotation(t *testing.T, s driven.AnnotationStore, a domain.Annotation) domain.Annotation {
	t.Helper()
	ctx := context.Background()
	id, err := s.NextID(ctx)
	require.NoError(t, err)
	a.ID = id
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	require.NoError(t, s.Append(ctx, a))
	return a
}

func TestNewStore_DefaultsToMemory(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, ":memory:", store.DSN())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.migrate(migrations.FS))

	var versions int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestAnnotationStore_RoundTrip(t *testing.T) {
	s := setupInMemoryStore(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	want := appendAnnotation(t, s, domain.Annotation{
		Type:         domain.AnnotationHighlight,
		Page:         2,
		Position:     domain.Point{X: 10.5, Y: 20},
		Color:        "#FFEB3B",
		Data:         "selected text",
		BoundingRect: &domain.Rect{X: 10.5, Y: 20, Width: 100, Height: 12},
		CreatedAt:    created,
	})

	got, err := s.ByPage(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
	assert.Equal(t, want.Type, got[0].Type)
	assert.Equal(t, want.Position, got[0].Position)
	assert.Equal(t, want.Color, got[0].Color)
	assert.Equal(t, want.Data, got[0].Data)
	require.NotNil(t, got[0].BoundingRect)
	assert.Equal(t, *want.BoundingRect, *got[0].BoundingRect)
	assert.True(t, created.Equal(got[0].CreatedAt))
}

func TestAnnotationStore_PointAnnotationHasNoRect(t *testing.T) {
	s := setupInMemoryStore(t)
	appendAnnotation(t, s, domain.Annotation{Type: domain.AnnotationComment, Page: 1, Data: "note"})

	got, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].BoundingRect)
	assert.Empty(t, got[0].Color)
}

func TestAnnotationStore_DeleteAndUndo(t *testing.T) {
	s := setupInMemoryStore(t)
	ctx := context.Background()

	a := appendAnnotation(t, s, domain.Annotation{Type: domain.AnnotationComment, Page: 1})
	b := appendAnnotation(t, s, domain.Annotation{Type: domain.AnnotationComment, Page: 2})
	c := appendAnnotation(t, s, domain.Annotation{Type: domain.AnnotationComment, Page: 1})

	found, err := s.Delete(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := s.UndoLast(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, c.ID, removed.ID)

	found, err = s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, found)

	removed, err = s.UndoLast(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, removed)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestAnnotationStore_ClearKeepsSequence(t *testing.T) {
	s := setupInMemoryStore(t)
	ctx := context.Background()

	first := appendAnnotation(t, s, domain.Annotation{Type: domain.AnnotationComment, Page: 1})
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	next := appendAnnotation(t, s, domain.Annotation{Type: domain.AnnotationComment, Page: 1})
	assert.Greater(t, next.ID, first.ID)
}

func TestAnnotationStore_DuplicateID(t *testing.T) {
	s := setupInMemoryStore(t)
	a := appendAnnotation(t, s, domain.Annotation{Type: domain.AnnotationComment, Page: 1})

	err := s.Append(context.Background(), a)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnnotationStore_SeparateStoresAreIsolated(t *testing.T) {
	s1 := setupInMemoryStore(t)
	s2 := setupInMemoryStore(t)
	appendAnnotation(t, s1, domain.Annotation{Type: domain.AnnotationComment, Page: 1})

	n, err := s2.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
