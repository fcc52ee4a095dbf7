package catalog

import (
	"context"
	"testing"

	"github.com/lepinkainen/bibly/internal/datastore"
	domainerrors "github.com/lepinkainen/bibly/internal/errors"
	"github.com/lepinkainen/bibly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()

	env := testutil.NewTestEnv(t)
	ds, err := datastore.Open(env.DBPath("catalog"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	return NewStore(ds.DB(), opts...)
}

func ptr[T any](v T) *T { return &v }

func countRows(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestCreateGenreIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateGenre(ctx, "Mystery")
	require.NoError(t, err)
	second, err := s.CreateGenre(ctx, "Mystery")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM genres WHERE name = ?`, "Mystery"))
}

func TestCreateGenreTrimsAndRejectsBlank(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.CreateGenre(ctx, "  Poetry ")
	require.NoError(t, err)
	assert.Equal(t, "Poetry", g.Name)

	_, err = s.CreateGenre(ctx, "   ")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM genres`))
}

func TestListGenresOrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Travel", "Art", "Science"} {
		_, err := s.CreateGenre(ctx, name)
		require.NoError(t, err)
	}

	genres, err := s.ListGenres(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Art", "Science", "Travel"}, names)
}

func TestCreateBookReadBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateBook(ctx, NewBook{Title: "T"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "T", created.Title)
	assert.Zero(t, created.IsRead)
	assert.Nil(t, created.GenreID)
	assert.Nil(t, created.ISBN)

	read, err := s.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, read)
}

func TestCreateBookAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.CreateGenre(ctx, "Novels")
	require.NoError(t, err)

	created, err := s.CreateBook(ctx, NewBook{
		Title:              "Kokoro",
		GenreID:            &g.ID,
		ISBN:               ptr("9784003101018"),
		Author:             ptr("Natsume Soseki"),
		Publisher:          ptr("Iwanami"),
		Price:              ptr(int64(660)),
		ClassificationCode: ptr("C0193"),
		IsRead:             ptr(int64(1)),
	})
	require.NoError(t, err)
	assert.Equal(t, "9784003101018", *created.ISBN)
	assert.Equal(t, int64(660), *created.Price)
	assert.Equal(t, "C0193", *created.ClassificationCode)
	assert.Equal(t, int64(1), created.IsRead)
	assert.Equal(t, g.ID, *created.GenreID)
}

func TestCreateBookUnknownGenre(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateBook(context.Background(), NewBook{Title: "Orphan", GenreID: ptr(int64(42))})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM books`))
}

func TestTitleValidationPreventsMutation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	existing, err := s.CreateBook(ctx, NewBook{Title: "Original"})
	require.NoError(t, err)

	for _, title := range []string{"", "   "} {
		_, err := s.CreateBook(ctx, NewBook{Title: title})
		require.ErrorIs(t, err, domainerrors.ErrValidation)

		_, err = s.UpdateBook(ctx, UpdateBook{ID: existing.ID, Title: title})
		require.ErrorIs(t, err, domainerrors.ErrValidation)
	}

	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM books`))
	read, err := s.GetBook(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", read.Title)
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.CreateBook(ctx, NewBook{Title: "Draft", Author: ptr("Someone")})
	require.NoError(t, err)

	updated, err := s.UpdateBook(ctx, UpdateBook{ID: b.ID, Title: "Final", IsRead: 1})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, int64(1), updated.IsRead)
	assert.Nil(t, updated.Author)
}

func TestUpdateAndDeleteMissingBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpdateBook(ctx, UpdateBook{ID: 404, Title: "Ghost"})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = s.DeleteBook(ctx, 404)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = s.GetBook(ctx, 404)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.CreateBook(ctx, NewBook{Title: "Gone"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteBook(ctx, b.ID))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestListAndCountBooksByGenre(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fiction, err := s.CreateGenre(ctx, "Fiction")
	require.NoError(t, err)
	poetry, err := s.CreateGenre(ctx, "Poetry")
	require.NoError(t, err)

	for _, nb := range []NewBook{
		{Title: "A", GenreID: &fiction.ID},
		{Title: "B", GenreID: &fiction.ID},
		{Title: "C", GenreID: &poetry.ID},
		{Title: "D"},
	} {
		_, err := s.CreateBook(ctx, nb)
		require.NoError(t, err)
	}

	books, err := s.ListBooksByGenre(ctx, fiction.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "A", books[0].Title)

	count, err := s.CountBooksInGenre(ctx, fiction.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	all, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetGenreNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGenre(context.Background(), 9)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
