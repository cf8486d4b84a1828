package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
	"go.etcd.io/bbolt"
)

type sessionStore struct {
	db  *bbolt.DB
	now func() time.Time
}

func (s *sessionStore) Create(ctx context.Context, session *storage.StudySession) error {
	if err := session.Prepare(s.now()); err != nil {
		return err
	}
	data, err := marshal(session)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketSessions))
		if b == nil {
			return fmt.Errorf("bucket missing: %s", bucketSessions)
		}
		if b.Get([]byte(session.ID)) != nil {
			return fmt.Errorf("%w: session %s already exists", storage.ErrInvalidSession, session.ID)
		}
		if err := b.Put([]byte(session.ID), data); err != nil {
			return err
		}

		userBucket, err := ensureIndexBucket(tx, bucketIndexByUser, session.UserID)
		if err != nil {
			return err
		}
		return userBucket.Put([]byte(timeKey(session.CreatedAt, session.ID)), []byte(session.ID))
	})
}

func (s *sessionStore) Get(ctx context.Context, id string) (*storage.StudySession, error) {
	return getBucketValue[storage.StudySession](ctx, s.db, bucketSessions, id)
}

func (s *sessionStore) ListByUser(ctx context.Context, userID string) ([]storage.StudySession, error) {
	sessions := make([]storage.StudySession, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		userBucket := indexBucket(tx, bucketIndexByUser, userID)
		if userBucket == nil {
			return nil
		}
		b := tx.Bucket([]byte(bucketSessions))

		c := userBucket.Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			value := b.Get(id)
			if value == nil {
				continue
			}
			var session storage.StudySession
			if err := unmarshal(value, &session); err != nil {
				return err
			}
			sessions = append(sessions, session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
