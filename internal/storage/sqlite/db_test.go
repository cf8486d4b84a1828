package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "nested", "zengenius.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zengenius.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.Sessions().Create(context.Background(), &storage.StudySession{ID: "keep", UserID: "u"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	_ = first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = second.Close() }()

	var versions int
	if err := second.db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&versions); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if versions != len(migrations) {
		t.Fatalf("expected %d migration rows, got %d", len(migrations), versions)
	}
	if _, err := second.Sessions().Get(context.Background(), "keep"); err != nil {
		t.Fatalf("expected session to survive reopen: %v", err)
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, time.October, 14, 21, 5, 0, 123, time.UTC)
	session := &storage.StudySession{
		UserID:     "auth0|xyz",
		Mood:       storage.StringPtr("Okay"),
		Focus:      storage.IntPtr(0),
		Summary:    storage.StringPtr("- summary"),
		Flashcards: storage.StringPtr("Q: a\nA: b"),
		FileName:   storage.StringPtr("lecture.pdf"),
		CreatedAt:  created,
	}
	if err := store.Sessions().Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := store.Sessions().Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %s, got %s", created, got.CreatedAt)
	}
	if got.Focus == nil || *got.Focus != 0 {
		t.Errorf("expected stored zero focus, got %v", got.Focus)
	}
	if _, rated := got.RatedFocus(); rated {
		t.Error("zero focus must read back as unrated")
	}
	if got.MoodLabel() != "Okay" || *got.Summary != "- summary" || *got.FileName != "lecture.pdf" {
		t.Errorf("unexpected session %+v", got)
	}
}

func TestSessionStoreNullColumns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	session := &storage.StudySession{UserID: "u"}
	if err := store.Sessions().Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	got, err := store.Sessions().Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Mood != nil || got.Focus != nil || got.Summary != nil || got.Flashcards != nil || got.FileName != nil {
		t.Errorf("expected nil optional fields, got %+v", got)
	}
}

func TestSessionStoreErrors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Sessions().Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Sessions().Create(ctx, &storage.StudySession{UserID: " "}); !errors.Is(err, storage.ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession for blank user, got %v", err)
	}
	if err := store.Sessions().Create(ctx, &storage.StudySession{ID: "dup", UserID: "u"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.Sessions().Create(ctx, &storage.StudySession{ID: "dup", UserID: "u"}); !errors.Is(err, storage.ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession for duplicate, got %v", err)
	}
}

func TestSessionStoreListByUserNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.October, 10, 8, 0, 0, 0, time.UTC)
	for _, day := range []int{1, 3, 0, 2} {
		s := &storage.StudySession{
			UserID:    "alice",
			Focus:     storage.IntPtr(day + 1),
			CreatedAt: base.AddDate(0, 0, day),
		}
		if err := store.Sessions().Create(ctx, s); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}
	if err := store.Sessions().Create(ctx, &storage.StudySession{UserID: "bob"}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	list, err := store.Sessions().ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(list))
	}
	for i, want := range []int{4, 3, 2, 1} {
		if *list[i].Focus != want {
			t.Errorf("position %d: expected focus %d, got %d", i, want, *list[i].Focus)
		}
	}

	none, err := store.Sessions().ListByUser(ctx, "carol")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty slice, got %#v", none)
	}
}

func TestSessionStoreListByUserSubMillisecondOrder(t *testing.T) {
	sessions := openTestStore(t).Sessions()
	ctx := context.Background()

	base := time.Date(2026, time.October, 1, 8, 0, 0, 0, time.UTC)
	for _, s := range []*storage.StudySession{
		{ID: "a", UserID: "alice", CreatedAt: base.Add(200 * time.Microsecond)},
		{ID: "b", UserID: "alice", CreatedAt: base.Add(100 * time.Microsecond)},
		{ID: "c", UserID: "alice", CreatedAt: base.Add(100 * time.Microsecond)},
	} {
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatalf("Create %s failed: %v", s.ID, err)
		}
	}

	list, err := sessions.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	var ids []string
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	if want := []string{"a", "c", "b"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("expected order %v, got %v", want, ids)
	}
}
