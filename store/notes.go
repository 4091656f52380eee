package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"notes-backend/db"
	"notes-backend/models"
)

const noteColumns = "id, title, content, owner_id, created_at, updated_at"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListParams selects a page of notes. Query is matched case-insensitively
// against title or content.
type ListParams struct {
	Query string
	Skip  int
	Limit int
}

func (p ListParams) normalize() ListParams {
	if p.Skip < 0 {
		p.Skip = 0
	}
	switch {
	case p.Limit == 0:
		p.Limit = DefaultLimit
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

// Notes is the note repository. Every statement is filtered by owner, so a
// note owned by someone else is indistinguishable from a missing one.
type Notes struct {
	s *Store
}

// List returns the owner's notes, most recently updated first.
func (n *Notes) List(ctx context.Context, ownerID int64, params ListParams) ([]models.Note, error) {
	params = params.normalize()

	query := "SELECT " + noteColumns + " FROM notes WHERE owner_id = ?"
	args := []any{ownerID}
	if params.Query != "" {
		// Both sides are folded by the database so they always agree.
		pattern := n.s.dialect.Lower("?")
		query += " AND (" + n.s.dialect.Lower("title") + " LIKE " + pattern + " ESCAPE '!' OR " +
			n.s.dialect.Lower("content") + " LIKE " + pattern + " ESCAPE '!')"
		term := "%" + escapeLike(params.Query) + "%"
		args = append(args, term, term)
	}
	query += " ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, params.Limit, params.Skip)

	notes := []models.Note{}
	err := n.s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, n.s.dialect.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			note, err := scanNote(rows)
			if err != nil {
				return err
			}
			notes = append(notes, *note)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (n *Notes) Create(ctx context.Context, ownerID int64, title, content string) (*models.Note, error) {
	now := n.s.stamp()
	note := &models.Note{
		Title:     title,
		Content:   content,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := n.s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := n.s.insertID(ctx, tx,
			"INSERT INTO notes (title, content, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			note.Title, note.Content, note.OwnerID, db.ToMicros(now), db.ToMicros(now))
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		note.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (n *Notes) Get(ctx context.Context, ownerID, noteID int64) (*models.Note, error) {
	var note *models.Note
	err := n.s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		note, err = n.get(ctx, tx, ownerID, noteID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Update applies the non-nil fields of upd. updated_at always moves forward,
// even when no field value changes.
func (n *Notes) Update(ctx context.Context, ownerID, noteID int64, upd models.NoteUpdate) (*models.Note, error) {
	var note *models.Note
	err := n.s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		note, err = n.get(ctx, tx, ownerID, noteID, true)
		if err != nil {
			return err
		}

		if upd.Title != nil {
			note.Title = *upd.Title
		}
		if upd.Content != nil {
			note.Content = *upd.Content
		}
		now := n.s.stamp()
		if !now.After(note.UpdatedAt) {
			now = note.UpdatedAt.Add(time.Microsecond)
		}
		note.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			n.s.dialect.Rebind("UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ? AND owner_id = ?"),
			note.Title, note.Content, db.ToMicros(note.UpdatedAt), noteID, ownerID)
		if err != nil {
			return fmt.Errorf("update note: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (n *Notes) Delete(ctx context.Context, ownerID, noteID int64) error {
	return n.s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, n.s.dialect.Rebind("DELETE FROM notes WHERE id = ? AND owner_id = ?"), noteID, ownerID)
		if err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		if affected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

func (n *Notes) get(ctx context.Context, tx *sql.Tx, ownerID, noteID int64, lock bool) (*models.Note, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE id = ? AND owner_id = ?"
	if lock {
		query += n.s.dialect.ForUpdate()
	}
	return scanNote(tx.QueryRowContext(ctx, n.s.dialect.Rebind(query), noteID, ownerID))
}

func scanNote(row scanner) (*models.Note, error) {
	var note models.Note
	var createdAt, updatedAt int64
	err := row.Scan(&note.ID, &note.Title, &note.Content, &note.OwnerID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}
	note.CreatedAt = db.FromMicros(createdAt)
	note.UpdatedAt = db.FromMicros(updatedAt)
	return &note, nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
