package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "github.com/lepinkainen/bibly/internal/errors"
)

// ExportedBook is a book with its genre named rather than numbered, so an
// export can be imported into another database.
type ExportedBook struct {
	Book  `yaml:",inline"`
	Genre string `json:"genre" yaml:"genre"`
}

// ImportRow is one book to import. A non-blank Genre names the genre to
// file it under, created if missing, and overrides Book.GenreID.
type ImportRow struct {
	Book  NewBook
	Genre string
}

// ExportBooks returns every book ordered by id, with genre names resolved.
func (s *Store) ExportBooks(ctx context.Context) ([]ExportedBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.isbn, b.title, b.author, b.publisher, b.price, b.c_code, b.is_read, b.genre_id,
			COALESCE(g.name, '')
		FROM books b LEFT JOIN genres g ON g.id = b.genre_id
		ORDER BY b.id`)
	if err != nil {
		return nil, domainerrors.Storage("export books", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ExportedBook
	for rows.Next() {
		var e ExportedBook
		if err := rows.Scan(&e.ID, &e.ISBN, &e.Title, &e.Author, &e.Publisher,
			&e.Price, &e.ClassificationCode, &e.IsRead, &e.GenreID, &e.Genre); err != nil {
			return nil, domainerrors.Storage("export books", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Storage("export books", err)
	}
	return out, nil
}

// ImportBooks inserts every row in one transaction and returns the stored
// books. Any invalid row aborts the whole import.
func (s *Store) ImportBooks(ctx context.Context, rows []ImportRow) ([]Book, error) {
	for i, r := range rows {
		if err := s.validator.Validate(r.Book); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domainerrors.Storage("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	genres := make(map[string]int64)
	books := make([]Book, 0, len(rows))
	for i, r := range rows {
		nb := r.Book
		if name := strings.TrimSpace(r.Genre); name != "" {
			id, ok := genres[name]
			if !ok {
				g, err := ensureGenre(ctx, tx, name)
				if err != nil {
					return nil, err
				}
				id = g.ID
				genres[name] = id
			}
			nb.GenreID = &id
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO books (title, genre_id, isbn, author, publisher, price, c_code, is_read)
			VALUES (?, ?, ?, ?, ?, ?, ?, COALESCE(?, 0))`,
			nb.Title, nb.GenreID, nb.ISBN, nb.Author, nb.Publisher, nb.Price, nb.ClassificationCode, nb.IsRead,
		)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, mapWriteError("import book", nb.GenreID, err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, domainerrors.Storage("import book", err)
		}
		b, err := scanBook(tx.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
		if err != nil {
			return nil, domainerrors.Storage("read back book", err)
		}
		books = append(books, b)
	}

	if err := tx.Commit(); err != nil {
		return nil, domainerrors.Storage("commit", err)
	}

	slog.Info("Books imported", "count", len(books), "genres_touched", len(genres))
	return books, nil
}
