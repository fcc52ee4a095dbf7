package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/lepinkainen/bibly/internal/errors"
)

// deleteStep is a state of the genre deletion transaction. The only path to
// stepCommitted is through every earlier step in order; any failure moves to
// stepAborted and rolls the transaction back.
type deleteStep int

const (
	stepStart deleteStep = iota
	stepFallbackResolved
	stepBooksReassigned
	stepGenreDeleted
	stepCommitted
	stepAborted
)

func (s deleteStep) String() string {
	switch s {
	case stepStart:
		return "start"
	case stepFallbackResolved:
		return "fallback_resolved"
	case stepBooksReassigned:
		return "books_reassigned"
	case stepGenreDeleted:
		return "genre_deleted"
	case stepCommitted:
		return "committed"
	case stepAborted:
		return "aborted"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// genreDeletion carries one DeleteGenre call through its steps.
type genreDeletion struct {
	tx       *sql.Tx
	genreID  int64
	fallback string
	hook     func(deleteStep) error

	step       deleteStep
	fallbackID int64
	reassigned int64
}

// DeleteGenre removes the genre with id after moving its books to the
// fallback genre, creating that genre if needed. It all happens in one
// transaction: on any failure nothing is changed.
func (s *Store) DeleteGenre(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domainerrors.Storage("begin transaction", err)
	}

	d := &genreDeletion{
		tx:       tx,
		genreID:  id,
		fallback: s.fallbackGenre,
		hook:     s.stepHook,
	}
	if err := d.run(ctx); err != nil {
		d.step = stepAborted
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("Rollback failed", "genre_id", id, "error", rbErr)
		}
		slog.Warn("Genre deletion aborted", "genre_id", id, "error", err)
		return err
	}

	slog.Info("Genre deleted", "genre_id", id, "fallback_id", d.fallbackID, "books_reassigned", d.reassigned)
	return nil
}

func (d *genreDeletion) run(ctx context.Context) error {
	if err := d.checkTarget(ctx); err != nil {
		return err
	}
	if err := d.advance(stepStart); err != nil {
		return err
	}

	fallback, err := ensureGenre(ctx, d.tx, d.fallback)
	if err != nil {
		return err
	}
	d.fallbackID = fallback.ID
	if err := d.advance(stepFallbackResolved); err != nil {
		return err
	}

	res, err := d.tx.ExecContext(ctx, `UPDATE books SET genre_id = ? WHERE genre_id = ?`, d.fallbackID, d.genreID)
	if err != nil {
		return domainerrors.Storage("reassign books", err)
	}
	if d.reassigned, err = res.RowsAffected(); err != nil {
		return domainerrors.Storage("reassign books", err)
	}
	if err := d.advance(stepBooksReassigned); err != nil {
		return err
	}

	res, err = d.tx.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, d.genreID)
	if err != nil {
		return domainerrors.Storage("delete genre", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return domainerrors.Storage("delete genre", err)
	} else if n == 0 {
		return domainerrors.NotFoundf("genre with id %d not found", d.genreID)
	}
	if err := d.advance(stepGenreDeleted); err != nil {
		return err
	}

	if err := d.tx.Commit(); err != nil {
		return domainerrors.Storage("commit", err)
	}
	d.step = stepCommitted
	return nil
}

// checkTarget rejects ids with no genre and the fallback genre itself.
func (d *genreDeletion) checkTarget(ctx context.Context) error {
	var name string
	err := d.tx.QueryRowContext(ctx, `SELECT name FROM genres WHERE id = ?`, d.genreID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return domainerrors.NotFoundf("genre with id %d not found", d.genreID)
	}
	if err != nil {
		return domainerrors.Storage("delete genre", err)
	}
	if name == d.fallback {
		return domainerrors.Validation(fmt.Sprintf("genre %q receives the books of deleted genres and cannot be deleted", name))
	}
	return nil
}

// advance records that step completed and runs the hook.
func (d *genreDeletion) advance(step deleteStep) error {
	d.step = step
	slog.Debug("Genre deletion step", "genre_id", d.genreID, "step", step)
	if d.hook == nil {
		return nil
	}
	if err := d.hook(step); err != nil {
		return domainerrors.Storage("delete genre after "+step.String(), err)
	}
	return nil
}
