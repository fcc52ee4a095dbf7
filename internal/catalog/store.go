package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	domainerrors "github.com/lepinkainen/bibly/internal/errors"
	"github.com/lepinkainen/bibly/internal/validation"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, isbn, title, author, publisher, price, c_code, is_read, genre_id`

// Store is the catalog's single point of access to the database. Every
// method holds the store lock for its whole duration.
type Store struct {
	db            *sql.DB
	mu            sync.Mutex
	validator     *validation.Validator
	fallbackGenre string

	// stepHook runs after each genre deletion step; an error aborts it.
	stepHook func(step deleteStep) error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFallbackGenre sets the genre name that receives the books of a
// deleted genre. Blank names are ignored.
func WithFallbackGenre(name string) StoreOption {
	return func(s *Store) {
		if name = strings.TrimSpace(name); name != "" {
			s.fallbackGenre = name
		}
	}
}

// NewStore wraps an open catalog database.
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:            db,
		validator:     validation.New(),
		fallbackGenre: DefaultFallbackGenre,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FallbackGenre returns the configured fallback genre name.
func (s *Store) FallbackGenre() string {
	return s.fallbackGenre
}

func scanBook(scanner interface{ Scan(dest ...any) error }) (Book, error) {
	var b Book
	err := scanner.Scan(
		&b.ID,
		&b.ISBN,
		&b.Title,
		&b.Author,
		&b.Publisher,
		&b.Price,
		&b.ClassificationCode,
		&b.IsRead,
		&b.GenreID,
	)
	return b, err
}

func (s *Store) queryBooks(ctx context.Context, op, query string, args ...any) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domainerrors.Storage(op, err)
	}
	defer func() { _ = rows.Close() }()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, domainerrors.Storage(op, err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Storage(op, err)
	}
	return books, nil
}

// ListBooks returns every book in id order.
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queryBooks(ctx, "list books", `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

// ListBooksByGenre returns the books filed under genreID.
func (s *Store) ListBooksByGenre(ctx context.Context, genreID int64) ([]Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queryBooks(ctx, "list books by genre",
		`SELECT `+bookColumns+` FROM books WHERE genre_id = ? ORDER BY id`, genreID)
}

// GetBook returns the book with id.
func (s *Store) GetBook(ctx context.Context, id int64) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := scanBook(s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, domainerrors.NotFoundf("book with id %d not found", id)
	}
	if err != nil {
		return Book{}, domainerrors.Storage("get book", err)
	}
	return b, nil
}

// CreateBook inserts nb and returns the stored row.
func (s *Store) CreateBook(ctx context.Context, nb NewBook) (Book, error) {
	if err := s.validator.Validate(nb); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Book{}, domainerrors.Storage("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO books (title, genre_id, isbn, author, publisher, price, c_code, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?, COALESCE(?, 0))`,
		nb.Title, nb.GenreID, nb.ISBN, nb.Author, nb.Publisher, nb.Price, nb.ClassificationCode, nb.IsRead,
	)
	if err != nil {
		return Book{}, mapWriteError("create book", nb.GenreID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Book{}, domainerrors.Storage("create book", err)
	}

	b, err := scanBook(tx.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if err != nil {
		return Book{}, domainerrors.Storage("read back book", err)
	}
	if err := tx.Commit(); err != nil {
		return Book{}, domainerrors.Storage("commit", err)
	}

	slog.Debug("Book created", "id", b.ID, "title", b.Title)
	return b, nil
}

// UpdateBook overwrites the book with ub.ID and returns the stored row.
func (s *Store) UpdateBook(ctx context.Context, ub UpdateBook) (Book, error) {
	if err := s.validator.Validate(ub); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Book{}, domainerrors.Storage("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE books SET
			isbn = ?, title = ?, author = ?, publisher = ?,
			price = ?, c_code = ?, is_read = ?, genre_id = ?
		WHERE id = ?`,
		ub.ISBN, ub.Title, ub.Author, ub.Publisher,
		ub.Price, ub.ClassificationCode, ub.IsRead, ub.GenreID,
		ub.ID,
	)
	if err != nil {
		return Book{}, mapWriteError("update book", ub.GenreID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Book{}, domainerrors.Storage("update book", err)
	} else if n == 0 {
		return Book{}, domainerrors.NotFoundf("book with id %d not found", ub.ID)
	}

	b, err := scanBook(tx.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, ub.ID))
	if err != nil {
		return Book{}, domainerrors.Storage("read back book", err)
	}
	if err := tx.Commit(); err != nil {
		return Book{}, domainerrors.Storage("commit", err)
	}
	return b, nil
}

// DeleteBook removes the book with id.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return domainerrors.Storage("delete book", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Storage("delete book", err)
	}
	if n == 0 {
		return domainerrors.NotFoundf("book with id %d not found", id)
	}
	return nil
}

// CountBooksInGenre returns how many books reference genreID.
func (s *Store) CountBooksInGenre(ctx context.Context, genreID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books WHERE genre_id = ?`, genreID).Scan(&count); err != nil {
		return 0, domainerrors.Storage("count books", err)
	}
	return count, nil
}

// ListGenres returns every genre ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, domainerrors.Storage("list genres", err)
	}
	defer func() { _ = rows.Close() }()

	genres := []Genre{}
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, domainerrors.Storage("list genres", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Storage("list genres", err)
	}
	return genres, nil
}

// GetGenre returns the genre with id.
func (s *Store) GetGenre(ctx context.Context, id int64) (Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var g Genre
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = ?`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Genre{}, domainerrors.NotFoundf("genre with id %d not found", id)
	}
	if err != nil {
		return Genre{}, domainerrors.Storage("get genre", err)
	}
	return g, nil
}

// CreateGenre returns the genre called name, inserting it if needed. The
// name is trimmed; creating an existing name returns the existing row.
func (s *Store) CreateGenre(ctx context.Context, name string) (Genre, error) {
	if err := s.validator.Var("name", name, "notblank"); err != nil {
		return Genre{}, err
	}
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Genre{}, domainerrors.Storage("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	g, err := ensureGenre(ctx, tx, name)
	if err != nil {
		return Genre{}, err
	}
	if err := tx.Commit(); err != nil {
		return Genre{}, domainerrors.Storage("commit", err)
	}
	return g, nil
}

// ensureGenre inserts name unless present and reads the row back.
func ensureGenre(ctx context.Context, tx *sql.Tx, name string) (Genre, error) {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO genres (name) VALUES (?)`, name); err != nil {
		return Genre{}, domainerrors.Storage("create genre", err)
	}
	var g Genre
	if err := tx.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE name = ?`, name).Scan(&g.ID, &g.Name); err != nil {
		return Genre{}, domainerrors.Storage("read back genre", err)
	}
	return g, nil
}

// mapWriteError turns a foreign key failure into a validation error naming
// the genre, and anything else into a storage error.
func mapWriteError(op string, genreID *int64, err error) error {
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		msg := "genre does not exist"
		if genreID != nil {
			msg = fmt.Sprintf("genre with id %d does not exist", *genreID)
		}
		return domainerrors.ValidationWithDetails(msg, map[string]string{"genre_id": "must reference an existing genre"})
	}
	return domainerrors.Storage(op, err)
}
