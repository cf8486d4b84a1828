package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
)

type sessionStore struct {
	db  *sql.DB
	now func() time.Time
}

const sessionColumns = `id, user_id, mood, focus, summary, flashcards, file_name, created_at`

func (s *sessionStore) Create(ctx context.Context, session *storage.StudySession) error {
	if err := session.Prepare(s.now()); err != nil {
		return err
	}

	var focus sql.NullInt64
	if session.Focus != nil {
		focus = sql.NullInt64{Int64: int64(*session.Focus), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO study_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		nullString(session.Mood),
		focus,
		nullString(session.Summary),
		nullString(session.Flashcards),
		nullString(session.FileName),
		session.CreatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: session %s already exists", storage.ErrInvalidSession, session.ID)
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *sessionStore) Get(ctx context.Context, id string) (*storage.StudySession, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionStore) ListByUser(ctx context.Context, userID string) ([]storage.StudySession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM study_sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]storage.StudySession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*storage.StudySession, error) {
	var (
		session                             storage.StudySession
		mood, summary, flashcards, fileName sql.NullString
		focus                               sql.NullInt64
		createdAt                           int64
	)
	if err := row.Scan(&session.ID, &session.UserID, &mood, &focus, &summary, &flashcards, &fileName, &createdAt); err != nil {
		return nil, err
	}

	session.Mood = fromNullString(mood)
	session.Summary = fromNullString(summary)
	session.Flashcards = fromNullString(flashcards)
	session.FileName = fromNullString(fileName)
	if focus.Valid {
		f := int(focus.Int64)
		session.Focus = &f
	}
	session.CreatedAt = time.Unix(0, createdAt).UTC()

	return &session, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
