package redis

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
)

const (
	sessionKeyPrefix   = "zengenius:session:"
	userIndexKeyPrefix = "zengenius:sessions:user:"
)

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userIndexKey(userID string) string {
	return userIndexKeyPrefix + userID
}

// sessionFields flattens a session into HSET field/value pairs.
// Nil optional members are left out so they read back as nil.
func sessionFields(s *storage.StudySession) []interface{} {
	fields := []interface{}{
		"id", s.ID,
		"user_id", s.UserID,
		"created_at", s.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if s.Mood != nil {
		fields = append(fields, "mood", *s.Mood)
	}
	if s.Focus != nil {
		fields = append(fields, "focus", strconv.Itoa(*s.Focus))
	}
	if s.Summary != nil {
		fields = append(fields, "summary", *s.Summary)
	}
	if s.Flashcards != nil {
		fields = append(fields, "flashcards", *s.Flashcards)
	}
	if s.FileName != nil {
		fields = append(fields, "file_name", *s.FileName)
	}
	return fields
}

// parseStudySession converts a Redis hash to StudySession
func parseStudySession(data map[string]string) (*storage.StudySession, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, data["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	session := &storage.StudySession{
		ID:        data["id"],
		UserID:    data["user_id"],
		CreatedAt: createdAt,
	}

	if v, ok := data["focus"]; ok {
		focus, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse focus: %w", err)
		}
		session.Focus = &focus
	}
	session.Mood = optionalField(data, "mood")
	session.Summary = optionalField(data, "summary")
	session.Flashcards = optionalField(data, "flashcards")
	session.FileName = optionalField(data, "file_name")

	return session, nil
}

func optionalField(data map[string]string, name string) *string {
	v, ok := data[name]
	if !ok {
		return nil
	}
	return &v
}
