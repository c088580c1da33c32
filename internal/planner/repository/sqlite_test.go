package repository

import (
	"context"
	"path/filepath"
	"testing"

	"floorplan-engine/internal/planner/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func sampleProject() models.Project {
	return models.Project{
		ID:   "p1",
		Name: "Flat",
		Walls: []models.Wall{
			{ID: "w1", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 400, Y: 0}, Thickness: 15},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "Hall", Polygon: []models.Point{{X: 0, Y: 0}, {X: 400, Y: 0}, {X: 400, Y: 300}}},
		},
		Doors:   []models.Door{{ID: "d1", Anchor: models.Anchor{WallID: "w1", T: 0.5, Width: 80}, FlipX: true}},
		Windows: []models.Window{{ID: "win1", Anchor: models.Anchor{WallID: "w1", T: 0.2, Width: 90}, Height: 120}},
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := sampleProject()
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestSaveOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := sampleProject()
	require.NoError(t, repo.Save(ctx, p))
	p.Name = "Renamed"
	p.Walls = nil
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Empty(t, got.Walls)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleProject()))
	require.NoError(t, repo.Delete(ctx, "p1"))
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), ErrNotFound)

	_, err := repo.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInitIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Init(context.Background()))
}
