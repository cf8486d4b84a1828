package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
	"github.com/redis/go-redis/v9"
)

type sessionStore struct {
	client *redis.Client
	create *redis.Script
	now    func() time.Time
}

// Create persists a new session and indexes it under its user
func (s *sessionStore) Create(ctx context.Context, session *storage.StudySession) error {
	if err := session.Prepare(s.now()); err != nil {
		return err
	}

	keys := []string{sessionKey(session.ID), userIndexKey(session.UserID)}
	args := append([]interface{}{session.CreatedAt.UnixMilli(), session.ID}, sessionFields(session)...)

	created, err := s.create.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("%w: session %s already exists", storage.ErrInvalidSession, session.ID)
	}
	return nil
}

// Get retrieves a session by ID
func (s *sessionStore) Get(ctx context.Context, id string) (*storage.StudySession, error) {
	data, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	return parseStudySession(data)
}

// ListByUser returns all sessions for a user, newest first
func (s *sessionStore) ListByUser(ctx context.Context, userID string) ([]storage.StudySession, error) {
	ids, err := s.client.ZRevRange(ctx, userIndexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]storage.StudySession, 0, len(ids))
	if len(ids) == 0 {
		return sessions, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, sessionKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	for i, cmd := range cmds {
		session, err := parseStudySession(cmd.Val())
		if err == storage.ErrNotFound {
			// Index entry outlived its hash
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", ids[i], err)
		}
		sessions = append(sessions, *session)
	}

	// Scores only resolve milliseconds; order by the stored timestamp, then ID
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := &sessions[i], &sessions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return sessions, nil
}
