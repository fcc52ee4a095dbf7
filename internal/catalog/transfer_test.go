package catalog

import (
	"context"
	"testing"

	domainerrors "github.com/lepinkainen/bibly/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBooksCreatesNamedGenresOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	existing, err := s.CreateGenre(ctx, "Essays")
	require.NoError(t, err)

	books, err := s.ImportBooks(ctx, []ImportRow{
		{Book: NewBook{Title: "Kokoro", Author: ptr("Natsume Soseki")}, Genre: "Novels"},
		{Book: NewBook{Title: "In Praise of Shadows", IsRead: ptr(int64(1))}, Genre: "Essays"},
		{Book: NewBook{Title: "Botchan"}, Genre: " Novels "},
		{Book: NewBook{Title: "Loose leaf"}},
	})
	require.NoError(t, err)
	require.Len(t, books, 4)

	assert.Equal(t, 2, countRows(t, s, `SELECT COUNT(*) FROM genres`))
	require.NotNil(t, books[1].GenreID)
	assert.Equal(t, existing.ID, *books[1].GenreID)
	assert.Equal(t, int64(1), books[1].IsRead)
	require.NotNil(t, books[0].GenreID)
	require.NotNil(t, books[2].GenreID)
	assert.Equal(t, *books[0].GenreID, *books[2].GenreID)
	assert.Nil(t, books[3].GenreID)
}

func TestImportBooksIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ImportBooks(ctx, []ImportRow{
		{Book: NewBook{Title: "Fine"}, Genre: "Shelf"},
		{Book: NewBook{Title: "Dangling", GenreID: ptr(int64(404))}},
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "row 2")

	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM books`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM genres`))
}

func TestImportBooksValidatesBeforeWriting(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ImportBooks(context.Background(), []ImportRow{
		{Book: NewBook{Title: "Ok"}},
		{Book: NewBook{Title: "  "}},
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "row 2")
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM books`))
}

func TestExportBooksNamesGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.CreateGenre(ctx, "Poetry")
	require.NoError(t, err)
	_, err = s.CreateBook(ctx, NewBook{Title: "Haiku", GenreID: &g.ID, Price: ptr(int64(1200))})
	require.NoError(t, err)
	_, err = s.CreateBook(ctx, NewBook{Title: "Unfiled"})
	require.NoError(t, err)

	out, err := s.ExportBooks(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Haiku", out[0].Title)
	assert.Equal(t, "Poetry", out[0].Genre)
	assert.Equal(t, int64(1200), *out[0].Price)
	assert.Equal(t, "Unfiled", out[1].Title)
	assert.Empty(t, out[1].Genre)
}

func TestExportThenImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	g, err := src.CreateGenre(ctx, "History")
	require.NoError(t, err)
	_, err = src.CreateBook(ctx, NewBook{Title: "SPQR", GenreID: &g.ID, ISBN: ptr("9781846683800")})
	require.NoError(t, err)

	exported, err := src.ExportBooks(ctx)
	require.NoError(t, err)

	rows := make([]ImportRow, 0, len(exported))
	for _, e := range exported {
		read := e.IsRead
		rows = append(rows, ImportRow{
			Book: NewBook{Title: e.Title, ISBN: e.ISBN, Author: e.Author, Publisher: e.Publisher,
				Price: e.Price, ClassificationCode: e.ClassificationCode, IsRead: &read},
			Genre: e.Genre,
		})
	}

	dst := newTestStore(t)
	_, err = dst.ImportBooks(ctx, rows)
	require.NoError(t, err)

	again, err := dst.ExportBooks(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "SPQR", again[0].Title)
	assert.Equal(t, "History", again[0].Genre)
	assert.Equal(t, "9781846683800", *again[0].ISBN)
}
